package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giannis84/character-favourites/internal"
	"github.com/giannis84/character-favourites/internal/auth"
	"github.com/giannis84/character-favourites/internal/catalog"
	"github.com/giannis84/character-favourites/internal/config"
	"github.com/giannis84/character-favourites/internal/database"
	"github.com/giannis84/character-favourites/internal/favourites"
	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/giannis84/character-favourites/internal/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger := logging.NewLogger(logging.Options{})
		logger.Error("failed to load configuration", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}

	// Initialize shared dependencies
	logger := logging.NewLogger(cfg.LoggingOptions())
	logger.Info("configuration loaded",
		slog.String("api_addr", cfg.APIAddr()),
		slog.String("health_addr", cfg.HealthAddr()),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	// Open the favourites storage backend
	repo, closeRepo, err := database.Open(cfg.StorageConfig())
	if err != nil {
		logger.Error("failed to open favourites storage", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	defer closeRepo()

	store := favourites.Load(context.Background(), repo, favourites.Options{
		Key:    cfg.StorageKey,
		Logger: logger,
	})

	users, err := auth.LoadDirectory(cfg.UsersFile)
	if err != nil {
		logger.Error("failed to load users", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	logger.Info("users loaded", slog.Int("count", users.Len()))

	source := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)

	// Create health check and API http services
	healthService := internal.NewService(internal.ServiceConfig{
		Addr:   cfg.HealthAddr(),
		Logger: logger,
		Routes: routes.RegisterHealthRoutes(repo),
	})
	apiService := internal.NewService(internal.ServiceConfig{
		Addr:               cfg.APIAddr(),
		Logger:             logger,
		Routes:             routes.RegisterAPIRoutes(store, source, users, cfg.AuthConfig(), cfg.RateLimitConfig()),
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		IdleTimeout:        cfg.IdleTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Start http service threads
	go func() {
		if err := healthService.ListenAndServeWrapper("health check api"); err != nil && err != http.ErrServerClosed {
			logger.Error("health check service failed", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	}()
	go func() {
		if err := apiService.ListenAndServeWrapper("favourites api"); err != nil && err != http.ErrServerClosed {
			logger.Error("favourites service failed", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	// Shutdown http service threads gracefully
	logger.Info("shutting down service", slog.String("signal", receivedSignal.String()))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiService.HTTPServer.Shutdown(ctx); err != nil {
		logger.Error("API service shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	if err := healthService.HTTPServer.Shutdown(ctx); err != nil {
		logger.Error("health service shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	logger.Info("exiting...")
}
