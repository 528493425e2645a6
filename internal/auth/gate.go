// ABOUTME: Auth gate that turns credentials into sessions and sessions back into practice leads
// ABOUTME: Login, Logout, CurrentUser and RequirePracticeLead are the only auth primitives

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/capability-hub/internal/credentials"
	"github.com/2389/capability-hub/internal/store"
)

// TokenBytes is the amount of randomness in a session token (256 bits).
const TokenBytes = 32

// ErrInvalidCredentials is returned by Login for an unknown user or a wrong
// password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUnauthorized is returned when a request has no session or the session
// does not belong to a practice lead.
var ErrUnauthorized = errors.New("practice lead authentication required")

// Verifier checks a username/password pair. *credentials.Store satisfies it.
type Verifier interface {
	Verify(username, password string) *credentials.PracticeLead
}

// Gate owns the login flow and session lookups.
type Gate struct {
	verifier Verifier
	sessions store.SessionStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewGate creates a Gate over the given credential verifier and session table.
func NewGate(verifier Verifier, sessions store.SessionStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		verifier: verifier,
		sessions: sessions,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}
}

// Login verifies the credentials and, on success, mints and stores a new
// session. The caller is responsible for setting the session cookie.
func (g *Gate) Login(ctx context.Context, username, password string) (*store.Session, error) {
	lead := g.verifier.Verify(username, password)
	if lead == nil {
		g.logger.Info("login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	token, err := generateSecureToken(TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	session := &store.Session{
		Token: token,
		Lead: credentials.PracticeLead{
			Username:     lead.Username,
			Role:         lead.Role,
			PracticeArea: lead.PracticeArea,
		},
		CreatedAt: g.now().UTC(),
	}

	if err := g.sessions.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	g.logger.Info("login successful", "username", lead.Username, "role", lead.Role)
	return session, nil
}

// Logout removes the session if present. It never fails from the caller's
// point of view; backend errors are logged.
func (g *Gate) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := g.sessions.DeleteSession(ctx, token); err != nil {
		g.logger.Error("failed to delete session", "error", err)
	}
}

// CurrentUser returns the practice lead bound to token, or nil when the token
// is empty or unknown. An error is only returned for backend failures.
func (g *Gate) CurrentUser(ctx context.Context, token string) (*credentials.PracticeLead, error) {
	if token == "" {
		return nil, nil
	}

	session, err := g.sessions.GetSession(ctx, token)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	lead := session.Lead
	return &lead, nil
}

// RequirePracticeLead returns the session's lead or ErrUnauthorized if there
// is no session or the role is not practice_lead.
func (g *Gate) RequirePracticeLead(ctx context.Context, token string) (*credentials.PracticeLead, error) {
	lead, err := g.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if !lead.IsPracticeLead() {
		return nil, ErrUnauthorized
	}
	return lead, nil
}

// SessionCount reports the size of the session table.
func (g *Gate) SessionCount(ctx context.Context) (int, error) {
	return g.sessions.CountSessions(ctx)
}

// generateSecureToken returns n random bytes as unpadded URL-safe base64.
func generateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
