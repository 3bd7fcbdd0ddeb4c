package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the catalog service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL is how long the component list is cached in memory.
	// The health sweep reads the list once per batch; a short TTL keeps
	// sweeps cheap without serving stale rosters for long.
	CacheTTL time.Duration
}

// Service provides catalog access with a short-lived in-memory cache.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration

	mu          sync.RWMutex
	cached      []*Component
	cacheExpiry time.Time
}

// NewService creates a new catalog service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Second
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: cacheTTL,
	}
}

// ListComponents returns all components, served from cache when fresh.
func (s *Service) ListComponents(ctx context.Context) ([]*Component, error) {
	s.mu.RLock()
	if s.cached != nil && time.Now().Before(s.cacheExpiry) {
		components := s.cached
		s.mu.RUnlock()
		return components, nil
	}
	s.mu.RUnlock()

	components, err := s.repo.ListComponents(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = components
	s.cacheExpiry = time.Now().Add(s.cacheTTL)
	s.mu.Unlock()

	return components, nil
}

// GetComponent retrieves a component by ID.
func (s *Service) GetComponent(ctx context.Context, id string) (*Component, error) {
	return s.repo.GetComponent(ctx, id)
}

// CreateComponent creates a component, assigning an ID and timestamps.
func (s *Service) CreateComponent(ctx context.Context, component *Component) error {
	now := time.Now()
	component.ID = "cmp_" + uuid.New().String()[:22]
	component.Name = strings.TrimSpace(component.Name)
	component.CreatedAt = now
	component.UpdatedAt = now

	if err := s.repo.CreateComponent(ctx, component); err != nil {
		return err
	}

	s.invalidate()
	s.logger.Info().
		Str("component_id", component.ID).
		Str("name", component.Name).
		Msg("component created")
	return nil
}

// UpdateComponent updates a component and bumps its updated timestamp.
func (s *Service) UpdateComponent(ctx context.Context, component *Component) error {
	component.UpdatedAt = time.Now()
	if err := s.repo.UpdateComponent(ctx, component); err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// DeleteComponent deletes a component by ID.
func (s *Service) DeleteComponent(ctx context.Context, id string) error {
	if err := s.repo.DeleteComponent(ctx, id); err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// ListLandscapes returns all landscapes.
func (s *Service) ListLandscapes(ctx context.Context) ([]*Landscape, error) {
	return s.repo.ListLandscapes(ctx)
}

// GetLandscape retrieves a landscape by name.
func (s *Service) GetLandscape(ctx context.Context, name string) (*Landscape, error) {
	return s.repo.GetLandscape(ctx, name)
}

// UpsertLandscape creates or updates a landscape.
func (s *Service) UpsertLandscape(ctx context.Context, landscape *Landscape) error {
	now := time.Now()
	if landscape.CreatedAt.IsZero() {
		landscape.CreatedAt = now
	}
	landscape.UpdatedAt = now

	return s.repo.UpsertLandscape(ctx, landscape)
}

// DeleteLandscape deletes a landscape by name.
func (s *Service) DeleteLandscape(ctx context.Context, name string) error {
	return s.repo.DeleteLandscape(ctx, name)
}

// InvalidateCache clears the component cache.
func (s *Service) InvalidateCache() {
	s.invalidate()
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
