package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/reportkit/internal/config"
	"github.com/JonMunkholm/reportkit/internal/core"
	"github.com/JonMunkholm/reportkit/internal/datatable"
	"github.com/JonMunkholm/reportkit/internal/logging"
	"github.com/JonMunkholm/reportkit/internal/store"
	"github.com/JonMunkholm/reportkit/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"export_max_concurrent", cfg.Export.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"require_xsrf", cfg.Security.RequireXSRF,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	reports, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open report store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service, err := core.NewService(reports, cfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("cell formats registered", "types", strings.Join(datatable.FormatTypes(), ","))

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active exports to complete (with timeout)
		exportStatus := service.ExportLimiterStatus()
		if exportStatus.Active > 0 {
			slog.Info("waiting for exports to complete", "active", exportStatus.Active)
			if err := service.WaitForExports(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			} else {
				slog.Info("all exports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore connects the configured report store. The returned func releases
// its connections.
func openStore(ctx context.Context, cfg *config.Config) (core.ReportStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		slog.Warn("using in-memory report store; scheduled reports are lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	case config.StorePostgres:
		pool, err := store.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		// Log which database we connected to
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil

	case config.StoreRedis:
		client, err := store.OpenRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to redis", "addr", client.Options().Addr, "prefix", cfg.Redis.KeyPrefix)
		return store.NewRedisStore(client, cfg.Redis.KeyPrefix), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown report store %q", cfg.Store.Backend)
	}
}
