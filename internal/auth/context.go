// ABOUTME: Request context helpers for the authenticated practice lead
// ABOUTME: Provides WithLead/LeadFromContext for passing identity from middleware to handlers

package auth

import (
	"context"

	"github.com/2389/capability-hub/internal/credentials"
)

// leadContextKey is the key type for storing the lead in context.Context.
type leadContextKey struct{}

// WithLead returns a new context with the practice lead attached.
func WithLead(ctx context.Context, lead *credentials.PracticeLead) context.Context {
	return context.WithValue(ctx, leadContextKey{}, lead)
}

// LeadFromContext retrieves the practice lead from the context, returning nil if not present.
func LeadFromContext(ctx context.Context) *credentials.PracticeLead {
	lead, _ := ctx.Value(leadContextKey{}).(*credentials.PracticeLead)
	return lead
}
