// Package api provides the HTTP API for OpsDeck.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/opsdeck/opsdeck/internal/api/handler"
	"github.com/opsdeck/opsdeck/internal/api/middleware"
	"github.com/opsdeck/opsdeck/internal/catalog"
	"github.com/opsdeck/opsdeck/internal/health"
	"github.com/opsdeck/opsdeck/internal/jenkins"
	"github.com/opsdeck/opsdeck/internal/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	UpstreamMetrics *middleware.UpstreamMetrics
	DB              *pgxpool.Pool
	Registry        *resilience.Registry
	CatalogService  *catalog.Service
	HealthService   *health.Service
	JenkinsClient   *jenkins.Client
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "opsdeck-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Registry)
	componentsHandler := handler.NewComponentsHandler(cfg.CatalogService)
	landscapesHandler := handler.NewLandscapesHandler(cfg.CatalogService)
	healthHandler := handler.NewHealthHandler(cfg.CatalogService, cfg.HealthService)
	buildsHandler := handler.NewBuildsHandler(cfg.CatalogService, cfg.JenkinsClient, cfg.UpstreamMetrics)

	// Create rate limit middleware for different endpoint categories
	buildRateLimit := middleware.RateLimitByIP(middleware.BuildRateLimit)       // 10 req/min
	sweepRateLimit := middleware.RateLimitByIP(middleware.SweepRateLimit)       // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Component catalog
		r.Route("/components", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", componentsHandler.ListComponents)
			r.Post("/", componentsHandler.CreateComponent)
			r.Route("/{componentId}", func(r chi.Router) {
				r.Get("/", componentsHandler.GetComponent)
				r.Put("/", componentsHandler.UpdateComponent)
				r.Delete("/", componentsHandler.DeleteComponent)

				// Build operations fan out to Jenkins - stricter limits
				r.Route("/builds", func(r chi.Router) {
					r.With(buildRateLimit).Post("/", buildsHandler.TriggerBuild)
					r.Get("/last", buildsHandler.LastBuild)
				})
			})
		})

		// Landscapes and health probing
		r.Route("/landscapes", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", landscapesHandler.ListLandscapes)
			r.Route("/{landscapeName}", func(r chi.Router) {
				r.Get("/", landscapesHandler.GetLandscape)
				r.Put("/", landscapesHandler.UpsertLandscape)
				r.Delete("/", landscapesHandler.DeleteLandscape)

				// One probe per component per call - strict rate limiting
				r.With(sweepRateLimit).Get("/health", healthHandler.LandscapeHealth)

				r.Route("/components/{componentId}", func(r chi.Router) {
					r.Get("/health", healthHandler.ComponentHealth)
					r.Get("/system-info", healthHandler.SystemInfo)
				})
			})
		})
	})

	return r
}
