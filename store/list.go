package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/philtim/cityclock/cities"
)

var (
	// ErrDuplicate is returned when a city is already on the list.
	ErrDuplicate = errors.New("this city has already been added")
	// ErrNotFound is returned when no entry matches an id.
	ErrNotFound = errors.New("clock not found")
)

// List is the ordered clock list. It is not safe for concurrent use.
type List struct {
	entries []Entry
}

// NewList creates a list holding a copy of entries.
func NewList(entries []Entry) *List {
	return &List{entries: slices.Clone(entries)}
}

// Reset replaces the contents with a copy of entries, e.g. to undo a change
// that could not be saved.
func (l *List) Reset(entries []Entry) {
	l.entries = slices.Clone(entries)
}

// Entries returns a copy of the entries in display order.
func (l *List) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Has reports whether adding e would be rejected as a duplicate.
func (l *List) Has(e Entry) bool {
	return slices.ContainsFunc(l.entries, e.duplicates)
}

// Add appends e to the end of the list.
func (l *List) Add(e Entry) error {
	if strings.TrimSpace(e.City) == "" {
		return fmt.Errorf("clock has no city")
	}
	if strings.TrimSpace(e.Timezone) == "" {
		return fmt.Errorf("clock '%s' has no timezone", e.City)
	}
	if l.Has(e) {
		return fmt.Errorf("%s: %w", e.Name(), ErrDuplicate)
	}
	l.entries = append(l.entries, e)
	return nil
}

// Remove deletes the entries with the given ids. Nothing is removed if any
// id is unknown.
func (l *List) Remove(ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if l.index(id) < 0 {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		drop[id] = true
	}
	l.entries = slices.DeleteFunc(l.entries, func(e Entry) bool { return drop[e.ID] })
	return nil
}

// Move shifts the entry with id by delta positions, clamped to the ends of
// the list. Negative deltas move towards the front.
func (l *List) Move(id string, delta int) error {
	from := l.index(id)
	if from < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	to := max(0, min(len(l.entries)-1, from+delta))
	if to == from {
		return nil
	}
	e := l.entries[from]
	l.entries = slices.Delete(l.entries, from, from+1)
	l.entries = slices.Insert(l.entries, to, e)
	return nil
}

// Find looks an entry up by id, label or city name, in that order.
func (l *List) Find(query string) (Entry, bool) {
	query = strings.TrimSpace(query)
	if i := l.index(query); i >= 0 {
		return l.entries[i], true
	}
	for _, e := range l.entries {
		if strings.EqualFold(e.Label, query) {
			return e, true
		}
	}
	for _, e := range l.entries {
		if strings.EqualFold(e.City, query) {
			return e, true
		}
	}
	return Entry{}, false
}

// Refresh updates the snapshot of every entry whose city id the resolver
// knows. Entries with unknown ids keep their stored snapshot. It returns
// the number of entries refreshed.
func (l *List) Refresh(r *cities.Resolver) int {
	n := 0
	for i := range l.entries {
		e := &l.entries[i]
		if e.CityID == "" {
			continue
		}
		opt, ok := r.ByID(e.CityID)
		if !ok {
			continue
		}
		e.apply(opt)
		n++
	}
	return n
}

func (l *List) index(id string) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID == id })
}
