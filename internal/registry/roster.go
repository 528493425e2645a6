// ABOUTME: Insertion-ordered set of consultant emails
// ABOUTME: Serializes as a plain JSON/YAML list and refuses duplicates on decode

package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateConsultant is returned when a decoded roster lists an email twice.
var ErrDuplicateConsultant = errors.New("duplicate consultant")

// Roster holds consultant emails in the order they were added. An email is
// present at most once. The zero value is an empty roster.
type Roster struct {
	emails []string
	index  map[string]struct{}
}

// NewRoster builds a roster from emails, failing on the first duplicate.
func NewRoster(emails ...string) (Roster, error) {
	var r Roster
	for _, e := range emails {
		if !r.Add(e) {
			return Roster{}, fmt.Errorf("%w: %s", ErrDuplicateConsultant, e)
		}
	}
	return r, nil
}

// Add appends email and reports whether it was absent.
func (r *Roster) Add(email string) bool {
	if r.Contains(email) {
		return false
	}
	if r.index == nil {
		r.index = make(map[string]struct{})
	}
	r.index[email] = struct{}{}
	r.emails = append(r.emails, email)
	return true
}

// Remove deletes email and reports whether it was present. Order of the
// remaining emails is kept.
func (r *Roster) Remove(email string) bool {
	if !r.Contains(email) {
		return false
	}
	delete(r.index, email)
	for i, e := range r.emails {
		if e == email {
			r.emails = append(r.emails[:i:i], r.emails[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether email is on the roster.
func (r *Roster) Contains(email string) bool {
	_, ok := r.index[email]
	return ok
}

// Emails returns a copy of the roster in insertion order.
func (r *Roster) Emails() []string {
	out := make([]string, len(r.emails))
	copy(out, r.emails)
	return out
}

// Len returns the number of consultants.
func (r *Roster) Len() int {
	return len(r.emails)
}

// Clone returns an independent copy.
func (r *Roster) Clone() Roster {
	c := Roster{
		emails: r.Emails(),
		index:  make(map[string]struct{}, len(r.emails)),
	}
	for _, e := range r.emails {
		c.index[e] = struct{}{}
	}
	return c
}

// MarshalJSON encodes the roster as a list; an empty roster is [] not null.
func (r Roster) MarshalJSON() ([]byte, error) {
	if r.emails == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.emails)
}

func (r *Roster) UnmarshalJSON(data []byte) error {
	var emails []string
	if err := json.Unmarshal(data, &emails); err != nil {
		return err
	}
	built, err := NewRoster(emails...)
	if err != nil {
		return err
	}
	*r = built
	return nil
}

func (r *Roster) UnmarshalYAML(value *yaml.Node) error {
	var emails []string
	if err := value.Decode(&emails); err != nil {
		return err
	}
	built, err := NewRoster(emails...)
	if err != nil {
		return err
	}
	*r = built
	return nil
}
