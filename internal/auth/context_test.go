// ABOUTME: Unit tests for the practice lead context helpers
// ABOUTME: Tests context propagation and the empty-context case

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/capability-hub/internal/credentials"
)

func TestLeadFromContext_Empty(t *testing.T) {
	assert.Nil(t, LeadFromContext(context.Background()))
}

func TestWithLead_RoundTrip(t *testing.T) {
	lead := &credentials.PracticeLead{
		Username:     "jane",
		Role:         credentials.RolePracticeLead,
		PracticeArea: "Technology",
	}

	ctx := WithLead(context.Background(), lead)
	got := LeadFromContext(ctx)

	assert.Same(t, lead, got)
}

func TestWithLead_Nil(t *testing.T) {
	ctx := WithLead(context.Background(), nil)
	assert.Nil(t, LeadFromContext(ctx))
}
