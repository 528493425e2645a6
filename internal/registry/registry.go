// ABOUTME: In-memory capability registry, the sole owner and mutator of Capability records
// ABOUTME: Each capability has its own lock so roster changes on one never block another

package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/capability-hub/internal/auth"
	"github.com/2389/capability-hub/internal/credentials"
)

var (
	ErrCapabilityNotFound = errors.New("capability not found")
	ErrAlreadyRegistered  = errors.New("consultant is already registered for this capability")
	ErrNotRegistered      = errors.New("consultant is not registered for this capability")
	ErrDuplicateName      = errors.New("duplicate capability name")
)

type entry struct {
	mu  sync.Mutex
	cap Capability
}

// Registry maps capability names to their records. The set of names is fixed
// at construction, so the map itself needs no lock.
type Registry struct {
	order   []string
	entries map[string]*entry
	logger  *slog.Logger
}

// New seeds a registry from catalog. Names must be unique and non-empty.
// The records are copied.
func New(catalog []Capability) (*Registry, error) {
	r := &Registry{
		order:   make([]string, 0, len(catalog)),
		entries: make(map[string]*entry, len(catalog)),
		logger:  slog.Default().With("component", "registry"),
	}

	for i := range catalog {
		c := catalog[i].Clone()
		if c.Name == "" {
			return nil, fmt.Errorf("capability %d: name is required", i)
		}
		if _, exists := r.entries[c.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, c.Name)
		}
		r.entries[c.Name] = &entry{cap: c}
		r.order = append(r.order, c.Name)
	}

	return r, nil
}

// Len returns the number of capabilities.
func (r *Registry) Len() int {
	return len(r.order)
}

// List returns a deep copy of every capability in seed order.
func (r *Registry) List() Snapshot {
	snap := Snapshot{
		order: make([]string, len(r.order)),
		caps:  make(map[string]Capability, len(r.order)),
	}
	copy(snap.order, r.order)
	for _, name := range r.order {
		e := r.entries[name]
		e.mu.Lock()
		snap.caps[name] = e.cap.Clone()
		e.mu.Unlock()
	}
	return snap
}

// Get returns a copy of one capability.
func (r *Registry) Get(name string) (Capability, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Capability{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cap.Clone(), true
}

// Register adds email to the named capability's roster. The actor must be a
// practice lead; that check happens before the name is looked up.
func (r *Registry) Register(name, email string, actor *credentials.PracticeLead) (string, error) {
	if !actor.IsPracticeLead() {
		return "", auth.ErrUnauthorized
	}

	e, ok := r.entries[name]
	if !ok {
		return "", ErrCapabilityNotFound
	}

	e.mu.Lock()
	added := e.cap.Consultants.Add(email)
	e.mu.Unlock()

	if !added {
		return "", ErrAlreadyRegistered
	}

	r.logger.Info("consultant registered", "capability", name, "email", email, "by", actor.Username)
	return fmt.Sprintf("Registered %s for %s", email, name), nil
}

// Unregister removes email from the named capability's roster.
func (r *Registry) Unregister(name, email string, actor *credentials.PracticeLead) (string, error) {
	if !actor.IsPracticeLead() {
		return "", auth.ErrUnauthorized
	}

	e, ok := r.entries[name]
	if !ok {
		return "", ErrCapabilityNotFound
	}

	e.mu.Lock()
	removed := e.cap.Consultants.Remove(email)
	e.mu.Unlock()

	if !removed {
		return "", ErrNotRegistered
	}

	r.logger.Info("consultant unregistered", "capability", name, "email", email, "by", actor.Username)
	return fmt.Sprintf("Unregistered %s from %s", email, name), nil
}

// Snapshot is a point-in-time copy of the registry. It encodes as a JSON
// object whose keys follow seed order.
type Snapshot struct {
	order []string
	caps  map[string]Capability
}

// Names returns capability names in seed order.
func (s Snapshot) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the named capability from the snapshot.
func (s Snapshot) Get(name string) (Capability, bool) {
	c, ok := s.caps[name]
	return c, ok
}

// Len returns the number of capabilities in the snapshot.
func (s Snapshot) Len() int {
	return len(s.order)
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.caps[name])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
