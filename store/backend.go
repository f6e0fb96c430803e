package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Backend persists the clock list.
type Backend interface {
	// Load returns the saved entries in display order. A store that has
	// never been saved returns no entries and no error.
	Load(ctx context.Context) ([]Entry, error)
	// Save replaces the saved entries.
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

// Open returns the named backend storing at path.
func Open(backend, path string) (Backend, error) {
	switch backend {
	case BackendYAML, "":
		return NewYAMLStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
