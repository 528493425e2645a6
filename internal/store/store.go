// ABOUTME: Session store interface and data types for capability-hub
// ABOUTME: Defines the Session record and the SessionStore contract shared by all backends

package store

import (
	"context"
	"errors"
	"time"

	"github.com/2389/capability-hub/internal/credentials"
)

// ErrSessionNotFound is returned when a session token is not present.
var ErrSessionNotFound = errors.New("session not found")

// Session binds an opaque token to the practice lead who logged in.
// Sessions have no expiry; they live until logout or process restart.
type Session struct {
	Token     string
	Lead      credentials.PracticeLead
	CreatedAt time.Time
}

// SessionStore is the session table. Implementations must be safe for
// concurrent use.
type SessionStore interface {
	// GetSession returns ErrSessionNotFound when the token is absent.
	GetSession(ctx context.Context, token string) (*Session, error)
	PutSession(ctx context.Context, session *Session) error
	// DeleteSession is idempotent; deleting an absent token is not an error.
	DeleteSession(ctx context.Context, token string) error
	CountSessions(ctx context.Context) (int, error)
	Close() error
}
