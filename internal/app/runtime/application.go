// Package runtime wires configuration, storage, and the HTTP server into a
// runnable process.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	app "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/httpapi"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/ledger"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage/postgres"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/config"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	httpServer *http.Server
	db         *sql.DB
}

// NewApplication constructs a runnable application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	}).WithField("service", "tipping-platform")

	stores, db, err := buildStores(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	core := app.New(buildParams(cfg), stores, ledger.NewMemoryLedger(), log)

	handler := httpapi.NewHandler(core, httpapi.Config{
		AuthSecret:        []byte(cfg.Auth.Secret),
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{
		cfg:        cfg,
		log:        log,
		app:        core,
		httpServer: srv,
		db:         db,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Infof("HTTP server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}

	return nil
}

func buildParams(cfg *config.Config) tipping.Params {
	params := tipping.DefaultParams()
	params.Owner = cfg.Platform.Owner
	if cfg.Platform.FeeBasisPoints > 0 {
		params.FeeBasisPoints = cfg.Platform.FeeBasisPoints
	}
	if cfg.Platform.MaxTipAmount > 0 {
		params.MaxTipAmount = cfg.Platform.MaxTipAmount
	}
	if cfg.Platform.RewardThreshold > 0 {
		params.RewardThreshold = cfg.Platform.RewardThreshold
	}
	if cfg.Platform.RewardRate > 0 {
		params.RewardRate = cfg.Platform.RewardRate
	}
	return params
}

// buildStores selects postgres when a DSN is configured and falls back to the
// shared in-memory store otherwise.
func buildStores(cfg *config.Config, log *logger.Logger) (app.Stores, *sql.DB, error) {
	if cfg.Database.DSN == "" {
		log.Warn("no database DSN configured, using in-memory stores")
		return app.Stores{}, nil, nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return app.Stores{}, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.Apply(ctx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("apply migrations: %w", err)
	}

	store := postgres.New(db)
	return app.Stores{Stats: store, Identities: store, Tips: store}, db, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
