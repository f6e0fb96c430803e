package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/philtim/cityclock/cities"
	"github.com/philtim/cityclock/config"
	"github.com/philtim/cityclock/geonames"
	"github.com/philtim/cityclock/observability"
	"github.com/philtim/cityclock/store"
)

// wallClock is the time source for every command. Tests replace it.
var wallClock clockwork.Clock = clockwork.NewRealClock()

func loadConfig() (*config.Config, string, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, path, nil
}

// cliLogger logs to stderr for one-shot commands.
func cliLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return observability.NewLogger(cfg.LogLevel, cfg.LogFormat, w)
}

func bundledResolver(logger *slog.Logger) (*cities.Resolver, error) {
	start := time.Now()
	records, err := cities.Bundled()
	if err != nil {
		return nil, fmt.Errorf("load bundled cities: %w", err)
	}
	r := cities.NewResolver(cities.BuildIndex(records))
	logger.Debug("bundled cities loaded", "records", len(records), "options", r.Len(), "duration", time.Since(start))
	return r, nil
}

func geoNamesDatabase(cfg *config.Config, logger *slog.Logger) *geonames.Database {
	if cfg.Dataset.Source != config.SourceGeoNames {
		return nil
	}
	return geonames.NewDatabase(cfg.Dataset.GeoNamesURL, cfg.Dataset.CacheDir, logger)
}

// loadResolver returns the resolver for the configured dataset. A GeoNames
// failure falls back to the bundled cities.
func loadResolver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cities.Resolver, error) {
	bundled, err := bundledResolver(logger)
	if err != nil {
		return nil, err
	}
	geo := geoNamesDatabase(cfg, logger)
	if geo == nil {
		return bundled, nil
	}
	if err := geo.Load(ctx); err != nil {
		logger.Warn("geonames unavailable, using bundled cities", "error", err)
		return bundled, nil
	}
	return geo.Resolver(), nil
}

// openList opens the configured store and loads the clock list, refreshing
// snapshots of cities the resolver knows.
func openList(ctx context.Context, cfg *config.Config, r *cities.Resolver, logger *slog.Logger) (store.Backend, *store.List, error) {
	backend, err := store.Open(cfg.Storage.Backend, cfg.StoragePath())
	if err != nil {
		return nil, nil, err
	}

	entries, err := backend.Load(ctx)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	list := store.NewList(entries)
	if n := list.Refresh(r); n > 0 {
		logger.Debug("refreshed clock snapshots", "count", n)
		if err := backend.Save(ctx, list.Entries()); err != nil {
			logger.Warn("failed to save refreshed clocks", "error", err)
		}
	}
	logger.Debug("clocks loaded", "backend", cfg.Storage.Backend, "path", cfg.StoragePath(), "count", list.Len())
	return backend, list, nil
}
