// Package main provides the entrypoint for the OpsDeck background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdeck/opsdeck/internal/catalog"
	"github.com/opsdeck/opsdeck/internal/database"
	"github.com/opsdeck/opsdeck/internal/health"
	"github.com/opsdeck/opsdeck/internal/proxy"
	"github.com/opsdeck/opsdeck/internal/resilience"
	"github.com/opsdeck/opsdeck/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "opsdeck-worker"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting OpsDeck worker")

	// Get configuration from environment
	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Initialize catalog service
	catalogService := catalog.NewService(catalog.ServiceConfig{
		Repository: catalog.NewPostgresRepository(pool),
		Logger:     log,
	})

	// Initialize proxy gateway and health service
	gatewayURL := os.Getenv("PROXY_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = "http://localhost:8090"
		log.Warn().Msg("PROXY_GATEWAY_URL not set - using local default")
	}

	gatewayCfg := resilience.DefaultClientConfig(proxy.GatewayName)
	gatewayCfg.Timeout = 30 * time.Second
	gatewayCfg.MaxRetries = 0
	gatewayHTTP := resilience.NewClient(gatewayCfg)

	gateway := proxy.NewClient(proxy.ClientConfig{
		BaseURL:    gatewayURL,
		HTTPClient: gatewayHTTP,
		Logger:     log,
	})

	healthService := health.NewService(health.ServiceConfig{
		Gateway: gateway,
		Logger:  log,
	})

	// Initialize the sweep job
	sweepConfig := worker.DefaultSweepConfig()
	if v := os.Getenv("SWEEP_CONCURRENCY"); v != "" {
		if n, parseErr := strconv.Atoi(v); parseErr == nil && n > 0 {
			sweepConfig.Concurrency = n
		}
	}

	sweepJob := worker.NewSweepJob(worker.SweepJobConfig{
		Config:         sweepConfig,
		Logger:         log,
		CatalogService: catalogService,
		HealthService:  healthService,
	})

	// Create HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start the Pub/Sub handler when configured, otherwise fall back to a
	// local sweep ticker for development.
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			SweepJob:         sweepJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
		log.Info().Str("subscription", subscription).Msg("worker processing pubsub messages")
	} else {
		log.Warn().Msg("pubsub not configured - running local sweep ticker")

		interval := 5 * time.Minute
		if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
			if d, parseErr := time.ParseDuration(v); parseErr == nil {
				interval = d
			}
		}

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := sweepJob.Run(ctx); err != nil {
						log.Error().Err(err).Msg("sweep failed")
					}
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
