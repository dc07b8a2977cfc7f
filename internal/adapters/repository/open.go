package repository

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/okian/cardwatch/pkg/logger"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// OpenConfig selects and locates a store.
type OpenConfig struct {
	Driver      string
	SQLitePath  string
	FixturePath string // seeds an empty SQLite database, or fills the memory store
}

// Open builds the configured store. A fixture is loaded into the memory store,
// and into a SQLite database only when it holds no games yet.
func Open(ctx context.Context, cfg OpenConfig, opts ...Option) (Store, error) {
	o := newOptions(opts)
	switch cfg.Driver {
	case DriverMemory:
		if cfg.FixturePath == "" {
			return NewMemoryStore(opts...), nil
		}
		return NewMemoryStoreFromFile(cfg.FixturePath, opts...)
	case DriverSQLite:
		s, err := NewSQLiteStore(ctx, cfg.SQLitePath, opts...)
		if err != nil {
			return nil, err
		}
		if cfg.FixturePath == "" {
			return s, nil
		}
		if err := seedIfEmpty(ctx, s, cfg.FixturePath, o.log); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", cfg.Driver)
	}
}

func seedIfEmpty(ctx context.Context, s *SQLiteStore, path string, log logger.Logger) error {
	st, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	if st.Games > 0 {
		log.Info(ctx, "database already populated, fixture skipped", logger.Int("games", st.Games))
		return nil
	}
	fx, err := LoadFixture(path)
	if err != nil {
		return err
	}
	if err := s.Seed(ctx, fx); err != nil {
		return err
	}
	log.Info(ctx, "seeded database from fixture",
		logger.String("fixture", path),
		logger.Int("games", len(fx.Games)),
		logger.Int("cards", len(fx.Cards)),
	)
	return nil
}
