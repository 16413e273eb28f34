package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/api"
	"github.com/Harshitk-cp/wumpus/internal/buildconfig"
	"github.com/Harshitk-cp/wumpus/internal/config"
	"github.com/Harshitk-cp/wumpus/internal/store"
	"github.com/Harshitk-cp/wumpus/internal/store/kv"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if level, err := zap.ParseAtomicLevel(config.LogLevel()); err == nil {
		cfg.Level = level
	}
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	backend, closeBackend := openBackend(ctx, logger)
	defer closeBackend()

	app := api.NewApp(backend, logger)
	app.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	app.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openBackend connects the configured store and returns a function that
// releases it.
func openBackend(ctx context.Context, logger *zap.Logger) (api.Backend, func()) {
	switch backend := config.StoreBackend(); backend {
	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			logger.Fatal("DATABASE_URL is required")
		}

		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		logger.Info("connected to database")

		if err := store.Migrate(ctx, pool, config.MigrationsPath(), logger); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}

		return api.Backend{
			Tenants:  store.NewTenantStore(pool),
			Sessions: store.NewSessionStore(pool),
			Ping:     pool.Ping,
		}, pool.Close

	case "badger":
		cfg := kv.Config{Path: config.BadgerPath(), Logger: logger}
		if cfg.Path == "" {
			cfg.InMemory = true
			logger.Warn("BADGER_PATH not set, sessions will not survive a restart")
		}
		db, err := kv.Open(cfg)
		if err != nil {
			logger.Fatal("failed to open badger", zap.Error(err))
		}
		logger.Info("opened badger store", zap.String("path", cfg.Path))

		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close badger", zap.Error(err))
			}
		}
		return api.Backend{
			Tenants:  kv.NewTenantStore(db),
			Sessions: kv.NewSessionStore(db),
		}, closeDB

	default:
		logger.Fatal("unknown STORE_BACKEND", zap.String("backend", backend))
		return api.Backend{}, func() {}
	}
}
