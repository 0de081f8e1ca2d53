package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"pdf2image/internal/config"
	"pdf2image/internal/http/server"
	"pdf2image/internal/infra/logging"
	"pdf2image/internal/infra/usage"
	"pdf2image/internal/storage"
	"pdf2image/internal/tokens"
)

func main() {
	cfg := config.Load()

	logging.Init(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)

	store, err := storage.NewS3Store(cfg.Storage)
	if err != nil {
		logging.Error("Failed to init storage client", "error", err)
		os.Exit(1)
	}

	var counters *usage.Counters
	if cfg.Cache.UsageEnabled {
		counters = usage.New(cfg.Cache.RedisHost, cfg.Cache.UsageDB)
	}

	idleConnsClosed := make(chan struct{})

	var tokenCache *tokens.Cache
	if cfg.Auth.Enabled {
		tokenCache = tokens.NewCache()
		repo, err := tokens.NewPostgresRepository(cfg.Auth.Postgres)
		if err != nil {
			logging.Error("Failed to connect token store", "error", err)
		} else {
			reloader := tokens.NewReloader(repo, tokenCache, cfg.Auth.ReloadInterval.Std())
			if err := reloader.LoadOnce(context.Background()); err != nil {
				logging.Error("Failed to load API tokens", "error", err)
			}
			go reloader.Run(idleConnsClosed, func(err error) {
				logging.Error("Failed to reload API tokens", "error", err)
			})
		}
	}

	app := server.New(server.Deps{
		Config: cfg,
		Store:  store,
		Usage:  counters,
		Tokens: tokenCache,
	})

	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed
}

// startServer starts the Fiber app and listens for shutdown signals
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			logging.Error("Server error", "error", err)
		}
	}()

	// Listen for OS termination signals
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	<-sigint

	logging.Warn("Shutdown signal received, closing server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	logging.Info("Server stopped cleanly")
}
