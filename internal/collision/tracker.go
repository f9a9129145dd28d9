// Package collision assigns xxHash64 IDs to trace parameter names and detects
// the rare case of two names hashing to the same ID, so that lookups can fall
// back to comparing names.
package collision

import (
	"errors"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrEmptyName is returned when tracking an empty parameter name.
	ErrEmptyName = errors.New("parameter name is empty")
	// ErrDuplicateName is returned when a name is tracked twice.
	ErrDuplicateName = errors.New("duplicate parameter name")
)

// ID returns the xxHash64 of name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Tracker records the names seen so far and whether any two share an ID.
type Tracker struct {
	names        map[uint64]string
	ordered      []string
	hasCollision bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{names: make(map[uint64]string)}
}

// Track records name and returns its ID.
func (t *Tracker) Track(name string) (uint64, error) {
	return t.TrackWithID(name, ID(name))
}

// TrackWithID records name under a precomputed id.
func (t *Tracker) TrackWithID(name string, id uint64) (uint64, error) {
	if name == "" {
		return 0, ErrEmptyName
	}

	if existing, ok := t.names[id]; ok {
		if existing == name {
			return 0, ErrDuplicateName
		}
		t.hasCollision = true
	} else {
		t.names[id] = name
	}
	t.ordered = append(t.ordered, name)

	return id, nil
}

// HasCollision reports whether two distinct names share an ID.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in insertion order.
func (t *Tracker) Names() []string {
	return t.ordered
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.ordered)
}
