// Package main provides the entrypoint for the OpsDeck API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/api/middleware"
	"github.com/opsdeck/opsdeck/internal/catalog"
	"github.com/opsdeck/opsdeck/internal/database"
	"github.com/opsdeck/opsdeck/internal/health"
	"github.com/opsdeck/opsdeck/internal/jenkins"
	"github.com/opsdeck/opsdeck/internal/proxy"
	"github.com/opsdeck/opsdeck/internal/resilience"
	"github.com/opsdeck/opsdeck/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "opsdeck-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting OpsDeck API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	upstreamMetrics, err := middleware.NewUpstreamMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize upstream metrics")
		os.Exit(1)
	}

	probeMetrics, err := health.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize probe metrics")
		os.Exit(1)
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize catalog repository and service
	catalogRepo := catalog.NewPostgresRepository(pool)
	catalogService := catalog.NewService(catalog.ServiceConfig{
		Repository: catalogRepo,
		Logger:     log,
		CacheTTL:   30 * time.Second,
	})
	log.Info().Msg("catalog service initialized")

	// Initialize proxy gateway client. Probes already carry fallback
	// semantics, so the transport does not retry.
	gatewayURL := os.Getenv("PROXY_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = "http://localhost:8090"
		log.Warn().Msg("PROXY_GATEWAY_URL not set - using local default")
	}

	gatewayCfg := resilience.DefaultClientConfig(proxy.GatewayName)
	gatewayCfg.Timeout = 30 * time.Second
	gatewayCfg.MaxRetries = 0
	gatewayCfg.Registry = resilience.GlobalRegistry
	gatewayHTTP := resilience.NewClient(gatewayCfg)

	gateway := proxy.NewClient(proxy.ClientConfig{
		BaseURL:    gatewayURL,
		HTTPClient: gatewayHTTP,
		Logger:     log,
	})

	healthService := health.NewService(health.ServiceConfig{
		Gateway: gateway,
		Logger:  log,
		Metrics: probeMetrics,
	})
	log.Info().Str("gateway_url", gatewayURL).Msg("health service initialized")

	// Initialize Jenkins client (may be unconfigured in dev)
	jenkinsURL := os.Getenv("JENKINS_URL")
	if jenkinsURL == "" {
		log.Warn().Msg("JENKINS_URL not set - build endpoints will fail")
	}

	jenkinsCfg := resilience.DefaultClientConfig(jenkins.UpstreamName)
	jenkinsCfg.Registry = resilience.GlobalRegistry
	jenkinsHTTP := resilience.NewClient(jenkinsCfg)

	jenkinsClient := jenkins.NewClient(jenkins.ClientConfig{
		BaseURL:    jenkinsURL,
		Username:   os.Getenv("JENKINS_USER"),
		APIToken:   os.Getenv("JENKINS_API_TOKEN"),
		HTTPClient: jenkinsHTTP,
		Logger:     log,
	})
	log.Info().Msg("jenkins client initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		UpstreamMetrics: upstreamMetrics,
		DB:              pool,
		Registry:        resilience.GlobalRegistry,
		CatalogService:  catalogService,
		HealthService:   healthService,
		JenkinsClient:   jenkinsClient,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
