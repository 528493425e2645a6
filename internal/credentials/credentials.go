// ABOUTME: Practice lead credential records loaded once at startup
// ABOUTME: Verifies username/password pairs against bcrypt hashes without leaking which part failed

package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// RolePracticeLead is the only role allowed to change capability rosters.
const RolePracticeLead = "practice_lead"

// dummyHash is compared against when no record matches so that unknown
// usernames cost the same bcrypt work as wrong passwords.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ErrMalformedRecord is returned when a record is missing a required field.
var ErrMalformedRecord = errors.New("malformed practice lead record")

// PracticeLead is a credential record. Records are immutable after load.
type PracticeLead struct {
	Username     string `json:"username" yaml:"username"`
	PasswordHash string `json:"password_hash" yaml:"password_hash"`
	Role         string `json:"role" yaml:"role"`
	PracticeArea string `json:"practice_area" yaml:"practice_area"`
}

// IsPracticeLead reports whether the record carries the practice_lead role.
// A nil record is never a practice lead.
func (p *PracticeLead) IsPracticeLead() bool {
	return p != nil && p.Role == RolePracticeLead
}

// Store is a read-only, ordered set of practice lead records.
type Store struct {
	leads  []PracticeLead
	logger *slog.Logger
}

// NewStore wraps already-parsed records. The slice is copied.
func NewStore(leads []PracticeLead) *Store {
	cp := make([]PracticeLead, len(leads))
	copy(cp, leads)
	return &Store{
		leads:  cp,
		logger: slog.Default().With("component", "credentials"),
	}
}

// Load reads practice lead records from path. The file may be a JSON array
// or a YAML sequence. Any read, parse or record error is returned; callers
// treat it as fatal.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading practice leads file: %w", err)
	}

	leads, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	s := NewStore(leads)
	if len(leads) == 0 {
		s.logger.Warn("no practice leads loaded, privileged routes will be unreachable", "path", path)
	}
	s.logger.Info("practice leads loaded", "path", path, "count", len(leads))
	return s, nil
}

// Parse decodes a record set. JSON is a subset of YAML so one decoder serves both.
func Parse(data []byte) ([]PracticeLead, error) {
	var leads []PracticeLead
	if err := yaml.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("parsing practice leads: %w", err)
	}

	for i, lead := range leads {
		if lead.Username == "" {
			return nil, fmt.Errorf("record %d: %w: username is required", i, ErrMalformedRecord)
		}
		if lead.PasswordHash == "" {
			return nil, fmt.Errorf("record %d (%s): %w: password_hash is required", i, lead.Username, ErrMalformedRecord)
		}
	}

	return leads, nil
}

// Verify returns the first record whose username matches and whose hash
// accepts password. The scan stops at the first username match, so a later
// duplicate is never consulted. Returns nil on any failure.
func (s *Store) Verify(username, password string) *PracticeLead {
	for i := range s.leads {
		lead := s.leads[i]
		if lead.Username != username {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(lead.PasswordHash), []byte(password)); err != nil {
			return nil
		}
		return &lead
	}

	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
	return nil
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.leads)
}

// HashPassword produces a bcrypt hash suitable for a record's password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
