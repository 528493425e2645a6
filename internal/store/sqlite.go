// ABOUTME: SQLite implementation of SessionStore using modernc.org/sqlite
// ABOUTME: Lets several processes share one session table; schema is created automatically

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSessionStore implements SessionStore using SQLite
type SQLiteSessionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteSessionStore implements SessionStore.
var _ SessionStore = (*SQLiteSessionStore)(nil)

// NewSQLiteSessionStore opens (or creates) the session database at path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteSessionStore(path string) (*SQLiteSessionStore, error) {
	logger := slog.Default().With("component", "session-store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteSessionStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite session store initialized", "path", path)
	return s, nil
}

// createSchema creates the sessions table if it doesn't exist
func (s *SQLiteSessionStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			role TEXT NOT NULL,
			practice_area TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_username ON sessions(username);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetSession retrieves a session by token.
func (s *SQLiteSessionStore) GetSession(ctx context.Context, token string) (*Session, error) {
	query := `
		SELECT token, username, role, practice_area, created_at
		FROM sessions
		WHERE token = ?
	`

	var session Session
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.Lead.Username,
		&session.Lead.Role,
		&session.Lead.PracticeArea,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &session, nil
}

// PutSession inserts or replaces a session. The password hash is never written.
func (s *SQLiteSessionStore) PutSession(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return errors.New("session token is required")
	}

	query := `
		INSERT OR REPLACE INTO sessions (token, username, role, practice_area, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.Token,
		session.Lead.Username,
		session.Lead.Role,
		session.Lead.PracticeArea,
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// DeleteSession removes a session. Deleting an absent token is not an error.
func (s *SQLiteSessionStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CountSessions returns the number of stored sessions.
func (s *SQLiteSessionStore) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteSessionStore) Close() error {
	s.logger.Info("closing SQLite session store")
	return s.db.Close()
}
