// Package config defines process configuration and its loading.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers an optional YAML file and CARDWATCH_ env vars on top.
// - Validation errors wrap ErrInvalidConfig; provider errors wrap ErrLoadConfig.
package config

import (
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okian/cardwatch/internal/domain/compliance"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the event store: sqlite or memory.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the scraper database file.
	SQLitePath string `koanf:"sqlite_path"`

	// FixturePath is a YAML league snapshot. It fills the memory store and
	// seeds an empty SQLite database.
	FixturePath string `koanf:"fixture_path"`

	// ReconcilePolicy is strict, printable or legacy.
	ReconcilePolicy string `koanf:"reconcile_policy"`

	// MaxRankingLimit caps the limit query parameter on ranking endpoints.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// RankingConcurrency bounds per-player reconciliations run in parallel
	// while building the player ranking.
	RankingConcurrency int `koanf:"ranking_concurrency"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		StoreDriver:        DriverSQLite,
		SQLitePath:         "cards.db",
		ReconcilePolicy:    "strict",
		MaxRankingLimit:    500,
		RankingConcurrency: runtime.NumCPU() * 2,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.Wrap(ErrInvalidConfig, "addr must not be empty")
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.Wrap(ErrInvalidConfig, "sqlite driver requires sqlite_path")
		}
	case DriverMemory:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown store_driver %q", c.StoreDriver)
	}
	if _, err := compliance.ParsePolicy(c.ReconcilePolicy); err != nil {
		return errors.Mark(errors.Wrap(err, "reconcile_policy"), ErrInvalidConfig)
	}
	if c.MaxRankingLimit <= 0 {
		return errors.Wrap(ErrInvalidConfig, "max_ranking_limit must be positive")
	}
	if c.RankingConcurrency <= 0 {
		return errors.Wrap(ErrInvalidConfig, "ranking_concurrency must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown log_format %q", c.LogFormat)
	}
	return nil
}
