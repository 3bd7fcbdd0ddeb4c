package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository.
// Used for tests and local development without a database.
type MemoryRepository struct {
	mu         sync.RWMutex
	components map[string]*Component
	landscapes map[string]*Landscape
}

// NewMemoryRepository creates a new in-memory catalog repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		components: make(map[string]*Component),
		landscapes: make(map[string]*Landscape),
	}
}

// ListComponents returns all components ordered by name.
func (r *MemoryRepository) ListComponents(_ context.Context) ([]*Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	components := make([]*Component, 0, len(r.components))
	for _, c := range r.components {
		copied := *c
		components = append(components, &copied)
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i].Name < components[j].Name
	})
	return components, nil
}

// GetComponent retrieves a component by ID.
func (r *MemoryRepository) GetComponent(_ context.Context, id string) (*Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.components[id]
	if !ok {
		return nil, ErrComponentNotFound
	}
	copied := *c
	return &copied, nil
}

// CreateComponent creates a new component.
func (r *MemoryRepository) CreateComponent(_ context.Context, component *Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.components {
		if existing.Name == component.Name {
			return ErrDuplicateName
		}
	}

	copied := *component
	r.components[component.ID] = &copied
	return nil
}

// UpdateComponent updates an existing component.
func (r *MemoryRepository) UpdateComponent(_ context.Context, component *Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.components[component.ID]; !ok {
		return ErrComponentNotFound
	}

	copied := *component
	r.components[component.ID] = &copied
	return nil
}

// DeleteComponent deletes a component by ID.
func (r *MemoryRepository) DeleteComponent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.components, id)
	return nil
}

// ListLandscapes returns all landscapes ordered by name.
func (r *MemoryRepository) ListLandscapes(_ context.Context) ([]*Landscape, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	landscapes := make([]*Landscape, 0, len(r.landscapes))
	for _, l := range r.landscapes {
		copied := *l
		landscapes = append(landscapes, &copied)
	}

	sort.Slice(landscapes, func(i, j int) bool {
		return landscapes[i].Name < landscapes[j].Name
	})
	return landscapes, nil
}

// GetLandscape retrieves a landscape by name.
func (r *MemoryRepository) GetLandscape(_ context.Context, name string) (*Landscape, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.landscapes[name]
	if !ok {
		return nil, ErrLandscapeNotFound
	}
	copied := *l
	return &copied, nil
}

// UpsertLandscape creates or updates a landscape keyed by name.
func (r *MemoryRepository) UpsertLandscape(_ context.Context, landscape *Landscape) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *landscape
	r.landscapes[landscape.Name] = &copied
	return nil
}

// DeleteLandscape deletes a landscape by name.
func (r *MemoryRepository) DeleteLandscape(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.landscapes, name)
	return nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
