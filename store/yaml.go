package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of the YAML store.
type file struct {
	Clocks []Entry `yaml:"clocks"`
}

// YAMLStore keeps the list in a YAML file.
type YAMLStore struct {
	path string
}

// NewYAMLStore creates a store for the file at path. The file is created on
// the first Save.
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// Load reads the clock list.
func (s *YAMLStore) Load(_ context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read clock file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse clock file: %w", err)
	}
	return f.Clocks, nil
}

// Save writes the clock list atomically
func (s *YAMLStore) Save(_ context.Context, entries []Entry) error {
	data, err := yaml.Marshal(file{Clocks: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal clocks: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create clock directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	tempFile, err := os.CreateTemp(dir, "clocks-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open.
func (s *YAMLStore) Close() error {
	return nil
}
