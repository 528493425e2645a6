// ABOUTME: In-memory SessionStore, the default session backend
// ABOUTME: Process-local map guarded by a RWMutex; contents are lost on restart

package store

import (
	"context"
	"errors"
	"sync"
)

// MemorySessionStore keeps sessions in a process-local map.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// Ensure MemorySessionStore implements SessionStore.
var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory session table.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]Session),
	}
}

// GetSession returns a copy of the stored session.
func (m *MemorySessionStore) GetSession(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// PutSession stores the session, replacing any existing entry for the token.
func (m *MemorySessionStore) PutSession(_ context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return errors.New("session token is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.Token] = *session
	return nil
}

// DeleteSession removes the token if present.
func (m *MemorySessionStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// CountSessions returns the number of active sessions.
func (m *MemorySessionStore) CountSessions(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions), nil
}

// Close is a no-op for the in-memory store.
func (m *MemorySessionStore) Close() error {
	return nil
}
