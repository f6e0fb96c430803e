package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/philtim/cityclock/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	assert.Equal(t, SourceBundled, cfg.Dataset.Source)
	assert.Equal(t, BackendYAML, cfg.Storage.Backend)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, filepath.Join(dir, "nested", "clocks.yaml"), cfg.StoragePath())
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, 10, cfg.Search.Suggestions)
	assert.Equal(t, 0, cfg.Search.MinPopulation)
	assert.True(t, cfg.Display.ShowUTC)
	assert.False(t, cfg.Display.SortByOffset)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "storage:\n  backend: sqlite\nsearch:\n  min_population: 500000\ndisplay:\n  sort_by_offset: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "clocks.db"), cfg.StoragePath())
	assert.Equal(t, 500000, cfg.Search.MinPopulation)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.True(t, cfg.Display.SortByOffset)
	assert.True(t, cfg.Display.ShowUTC)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDataset, SourceGeoNames)
	t.Setenv(EnvStorage, BackendSQLite)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, SourceGeoNames, cfg.Dataset.Source)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "search: [", "failed to parse config"},
		{"bad source", "dataset:\n  source: s3\n", "dataset.source"},
		{"bad backend", "storage:\n  backend: redis\n", "storage.backend"},
		{"zero limit", "search:\n  limit: 0\n", "search.limit"},
		{"negative population", "search:\n  min_population: -1\n", "search.min_population"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"bad format", "log_format: xml\n", "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Search.Suggestions = 5
	cfg.Storage.Path = filepath.Join(t.TempDir(), "mine.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Search.Suggestions)
	assert.Equal(t, cfg.Storage.Path, loaded.StoragePath())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Storage.Backend = "memory"
	require.Error(t, cfg.Save(path))
	assert.NoFileExists(t, path)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/.cache/x", expandHome("~/.cache/x"))
	assert.Equal(t, "/tmp/x", expandHome("/tmp/x"))
	assert.Equal(t, "", expandHome(""))
}

func TestLogPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, appName+".log", filepath.Base(cfg.LogPath()))
	cfg.LogFile = "/var/log/cc.log"
	assert.Equal(t, "/var/log/cc.log", cfg.LogPath())
}

func TestBackendsOpenInStore(t *testing.T) {
	for _, backend := range []string{BackendYAML, BackendSQLite} {
		b, err := store.Open(backend, filepath.Join(t.TempDir(), "clocks"))
		require.NoError(t, err, backend)
		require.NoError(t, b.Close())
	}
}
