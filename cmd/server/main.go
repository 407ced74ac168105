package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achworks/achd/internal/api"
	"github.com/achworks/achd/internal/buildconfig"
	"github.com/achworks/achd/internal/config"
	"github.com/achworks/achd/internal/domain"
	"github.com/achworks/achd/internal/metrics"
	"github.com/achworks/achd/internal/service"
	"github.com/achworks/achd/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(config.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	ws, closeStore, err := openStore(ctx, config.StoreBackend(), logger)
	if err != nil {
		logger.Fatal("failed to open workspace store", zap.String("backend", config.StoreBackend()), zap.Error(err))
	}
	defer closeStore()

	prom := metrics.New()
	svc := service.NewWorkspaceService(ws, prom, logger)
	if err := svc.Load(ctx); err != nil {
		logger.Fatal("failed to load workspace", zap.Error(err))
	}

	checkpointer := service.NewCheckpointer(svc, logger)
	checkpointer.SetInterval(config.CheckpointInterval())
	checkpointer.Start()

	app := api.NewApp(svc, prom, logger, api.Options{
		RateLimitRPS:      config.RateLimitRPS(),
		RateLimitBurst:    config.RateLimitBurst(),
		AgentCookieSecure: config.AgentCookieSecure(),
	})

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
			zap.String("commit", buildconfig.Commit()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	checkpointer.Stop(shutdownCtx)

	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// openStore picks the workspace backend. The returned func releases it.
func openStore(ctx context.Context, backend string, logger *zap.Logger) (domain.WorkspaceStore, func(), error) {
	switch backend {
	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		pg := store.NewPostgresWorkspaceStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("connected to database")
		return pg, pool.Close, nil

	case "sqlite":
		lite, err := store.NewSQLiteWorkspaceStore(config.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("opened sqlite workspace", zap.String("path", lite.Path()))
		return lite, func() { _ = lite.Close() }, nil

	case "memory":
		logger.Warn("using in-memory workspace store, sessions will not survive a restart")
		return store.NewMemoryWorkspaceStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}
}
