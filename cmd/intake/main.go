package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/onboardhq/intake/internal/config"
	"github.com/onboardhq/intake/internal/dbclient"
	"github.com/onboardhq/intake/internal/handlers"
	"github.com/onboardhq/intake/internal/logging"
	"github.com/onboardhq/intake/internal/mirror"
	"github.com/onboardhq/intake/internal/ratelimit"
	"github.com/onboardhq/intake/internal/server"
	"github.com/onboardhq/intake/internal/service"
	"github.com/onboardhq/intake/internal/storageclient"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("intake"))
	logging.SetDefault(logger)

	slog.Info("Starting intake service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}
	slog.Info("Data store configured",
		slog.String("database_url", cfg.Database.URL),
		slog.String("storage_bucket", cfg.Storage.Bucket),
		slog.Bool("storage_public", cfg.Storage.Public),
	)

	// Initialize rate limiter
	var rateLimiter ratelimit.RateLimiter
	if cfg.Redis.Enabled && cfg.Ingestion.RateLimitEnabled {
		log.Printf("Initializing Redis rate limiter: %s", cfg.Redis.URL)
		limiter, err := ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL,
			cfg.Ingestion.RateLimitRequests,
			cfg.Ingestion.RateLimitWindow,
		)
		if err != nil {
			log.Printf("WARNING: Failed to initialize Redis rate limiter: %v", err)
			log.Println("Continuing without rate limiting")
			rateLimiter = &ratelimit.NoOpRateLimiter{}
		} else {
			rateLimiter = limiter
			log.Printf("Rate limiting enabled: %d requests per %s", cfg.Ingestion.RateLimitRequests, cfg.Ingestion.RateLimitWindow)
		}
	} else {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
		log.Println("Rate limiting disabled")
	}
	defer rateLimiter.Close()

	// Initialize downstream clients
	store := dbclient.New(cfg.Database.URL, cfg.Database.ServiceKey, cfg.Database.Timeout)

	storageClient := storageclient.New(storageclient.Config{
		BaseURL:    cfg.Database.URL,
		ServiceKey: cfg.Database.ServiceKey,
		Bucket:     cfg.Storage.Bucket,
		Public:     cfg.Storage.Public,
		Timeout:    cfg.Database.Timeout,
	})

	assetMirror := mirror.New(storageClient, cfg.Storage.FetchTimeout, logger)

	// Initialize intake service and HTTP surface
	intakeService := service.NewIntakeService(store, assetMirror, logger)
	handler := handlers.NewIntakeHandler(intakeService, rateLimiter, logger, cfg.Ingestion.MaxBodySize)
	router := server.NewRouter(handler)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Intake service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
