package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philtim/cityclock/store"
	"gopkg.in/yaml.v3"
)

// Dataset sources.
const (
	SourceBundled  = "bundled"
	SourceGeoNames = "geonames"
)

// Storage backends, as understood by store.Open.
const (
	BackendYAML   = store.BackendYAML
	BackendSQLite = store.BackendSQLite
)

// Environment overrides, applied after the file is read.
const (
	EnvLogLevel = "CITYCLOCK_LOG_LEVEL"
	EnvDataset  = "CITYCLOCK_DATASET"
	EnvStorage  = "CITYCLOCK_STORAGE"
)

const appName = "cityclock"

// DatasetConfig selects where city records come from
type DatasetConfig struct {
	Source      string `yaml:"source"`
	GeoNamesURL string `yaml:"geonames_url"`
	CacheDir    string `yaml:"cache_dir"`
}

// StorageConfig selects where the clock list is kept
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path defaults to clocks.yaml or clocks.db next to the config file.
	Path string `yaml:"path,omitempty"`
}

// SearchConfig tunes city lookups
type SearchConfig struct {
	Limit         int `yaml:"limit"`
	Suggestions   int `yaml:"suggestions"`
	MinPopulation int `yaml:"min_population"`
}

// DisplayConfig tunes the clock grid
type DisplayConfig struct {
	SortByOffset bool `yaml:"sort_by_offset"`
	ShowUTC      bool `yaml:"show_utc"`
}

// Config is the settings file, ~/.config/cityclock/config.yaml by default
type Config struct {
	Dataset   DatasetConfig `yaml:"dataset"`
	Storage   StorageConfig `yaml:"storage"`
	Search    SearchConfig  `yaml:"search"`
	Display   DisplayConfig `yaml:"display"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
	LogFile   string        `yaml:"log_file,omitempty"`

	// dir holds the directory of the file the config was loaded from.
	dir string
}

// DefaultConfig returns the settings written on first run
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Source:      SourceBundled,
			GeoNamesURL: "http://download.geonames.org/export/dump/cities15000.zip",
			CacheDir:    filepath.Join(homeDir(), ".cache", appName),
		},
		Storage: StorageConfig{Backend: BackendYAML},
		Search: SearchConfig{
			Limit:       10,
			Suggestions: 10,
		},
		Display:   DisplayConfig{ShowUTC: true},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultConfigPath returns ~/.config/cityclock/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", appName, "config.yaml")
}

// Load reads the configuration from path, or DefaultConfigPath when path is
// empty. If the file doesn't exist, it creates a default one.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	// First run writes the defaults so users have a file to edit.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := DefaultConfig().Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.Dataset.CacheDir = expandHome(cfg.Dataset.CacheDir)
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.dir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataset)); v != "" {
		c.Dataset.Source = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorage)); v != "" {
		c.Storage.Backend = v
	}
}

// Validate checks that every setting has a usable value
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceBundled:
	case SourceGeoNames:
		if c.Dataset.GeoNamesURL == "" {
			return fmt.Errorf("dataset.geonames_url is required for source %q", SourceGeoNames)
		}
		if c.Dataset.CacheDir == "" {
			return fmt.Errorf("dataset.cache_dir is required for source %q", SourceGeoNames)
		}
	default:
		return fmt.Errorf("dataset.source must be %q or %q, got %q", SourceBundled, SourceGeoNames, c.Dataset.Source)
	}

	switch c.Storage.Backend {
	case BackendYAML, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendYAML, BackendSQLite, c.Storage.Backend)
	}

	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.Suggestions <= 0 {
		return fmt.Errorf("search.suggestions must be positive, got %d", c.Search.Suggestions)
	}
	if c.Search.MinPopulation < 0 {
		return fmt.Errorf("search.min_population must not be negative, got %d", c.Search.MinPopulation)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}

	return nil
}

// LogPath returns the file the TUI logs to.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(homeDir(), ".cache", appName, appName+".log")
}

// Save writes the configuration to path atomically
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Readers never see a half-written file.
	tempFile, err := os.CreateTemp(configDir, appName+"-*.yaml.tmp")
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
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// StoragePath returns storage.path, or clocks.yaml / clocks.db next to the
// config file when it is unset.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	dir := c.dir
	if dir == "" {
		dir = filepath.Dir(DefaultConfigPath())
	}
	if c.Storage.Backend == BackendSQLite {
		return filepath.Join(dir, "clocks.db")
	}
	return filepath.Join(dir, "clocks.yaml")
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}
