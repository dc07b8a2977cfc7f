package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/cardwatch/internal/adapters/http/api"
	"github.com/okian/cardwatch/internal/adapters/http/swagger"
	"github.com/okian/cardwatch/internal/adapters/repository"
	app "github.com/okian/cardwatch/internal/app"
	"github.com/okian/cardwatch/internal/config"
	"github.com/okian/cardwatch/internal/domain/compliance"
	"github.com/okian/cardwatch/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not configured yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "cardwatch stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	srv, closeStore, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn(ctx, "store close failed", logger.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Mark(errors.Wrap(err, "listen"), api.ErrServe)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newServer opens the configured store and wires the service and routes.
// The returned func closes the store.
func newServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.Server, func() error, error) {
	policy, err := compliance.ParsePolicy(cfg.ReconcilePolicy)
	if err != nil {
		return nil, nil, err
	}

	store, err := repository.Open(ctx, repository.OpenConfig{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		FixturePath: cfg.FixturePath,
	}, repository.WithLogger(log.Named("store")))
	if err != nil {
		return nil, nil, errors.Wrap(err, "open store")
	}
	log.Info(ctx, "store opened",
		logger.String("driver", cfg.StoreDriver),
		logger.String("policy", policy.Name),
	)

	svc := app.New(store,
		app.WithLogger(log.Named("service")),
		app.WithPolicy(policy),
		app.WithRankingConcurrency(cfg.RankingConcurrency),
		app.WithMaxRankingLimit(cfg.MaxRankingLimit),
	)

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc, api.WithLogger(log.Named("http"))).Register(mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}, store.Close, nil
}
