package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nextpv/bd-academy/internal/content"
	"github.com/nextpv/bd-academy/internal/edits"
	"github.com/nextpv/bd-academy/internal/identity"
	"github.com/nextpv/bd-academy/internal/platform/config"
	"github.com/nextpv/bd-academy/internal/platform/kv"
	"github.com/nextpv/bd-academy/internal/progress"
	"github.com/nextpv/bd-academy/internal/report"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	catalog, err := content.NewCatalog(cfg.ContentPath)
	if err != nil {
		slog.Error("failed to load content", "path", cfg.ContentPath, "error", err)
		os.Exit(1)
	}

	sessionCount := catalog.SessionCount()
	if sessionCount == 0 {
		sessionCount = progress.DefaultSessionCount
	}

	resolver := identity.NewResolver(cfg.Admin.Email)
	identities := identity.NewService(ctx, resolver, store)
	tracker := progress.NewTracker(store, progress.WithSessionCount(sessionCount))
	overrides := edits.NewStore(ctx, store)
	reports := report.NewWriter(catalog, tracker)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newServer(identities, tracker, catalog, overrides, reports).routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "backend", cfg.Storage.Backend, "sessions", sessionCount)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore builds the kv backend selected by config. The returned cleanup
// closes pooled backends; it is a no-op for memory and file.
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return kv.NewMemoryStore(), noop, nil
	case config.BackendFile:
		store, err := kv.NewFileStore(cfg.Storage.FilePath)
		return store, noop, err
	case config.BackendRedis:
		store, err := kv.NewRedisStore(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { store.Close() }, nil
	case config.BackendPostgres:
		store, err := kv.NewPostgresStore(ctx, cfg.Storage.PostgresURL, cfg.Storage.MaxConns, cfg.Storage.MinConns)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { store.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
