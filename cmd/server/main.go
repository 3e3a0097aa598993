package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/CustomerUpload/internal/config"
	"github.com/JonMunkholm/CustomerUpload/internal/core"
	"github.com/JonMunkholm/CustomerUpload/internal/database"
	"github.com/JonMunkholm/CustomerUpload/internal/logging"
	"github.com/JonMunkholm/CustomerUpload/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"upload_batch_size", cfg.Upload.BatchSize,
		"ingest_timezone", cfg.Ingest.Timezone,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	// The table must exist before the first request is accepted.
	provisionCtx, cancelProvision := context.WithTimeout(ctx, cfg.Database.ProvisionTimeout)
	err = database.Provision(provisionCtx, pool)
	cancelProvision()
	if err != nil {
		slog.Error("failed to provision schema", "error", err)
		pool.Close()
		os.Exit(1)
	}
	slog.Info("schema ready", "table", database.CustomerTable)

	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	repo := database.NewCustomerRepository(pool, cfg.Upload.BatchSize)
	service := core.NewService(repo, limiter, core.ServiceOptions{
		Location:         cfg.Ingest.Location(),
		StrictTimestamps: cfg.Ingest.StrictTimestamps,
		Timeout:          cfg.Upload.Timeout,
	})

	server := web.NewServer(service, pool, limiter, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := limiter.Wait(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		pool.Close()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
