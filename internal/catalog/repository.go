package catalog

import "context"

// Repository defines persistence operations for the catalog.
type Repository interface {
	// ListComponents returns all components ordered by name.
	ListComponents(ctx context.Context) ([]*Component, error)

	// GetComponent retrieves a component by ID.
	// Returns ErrComponentNotFound if it does not exist.
	GetComponent(ctx context.Context, id string) (*Component, error)

	// CreateComponent creates a new component.
	CreateComponent(ctx context.Context, component *Component) error

	// UpdateComponent updates an existing component.
	// Returns ErrComponentNotFound if it does not exist.
	UpdateComponent(ctx context.Context, component *Component) error

	// DeleteComponent deletes a component by ID.
	DeleteComponent(ctx context.Context, id string) error

	// ListLandscapes returns all landscapes ordered by name.
	ListLandscapes(ctx context.Context) ([]*Landscape, error)

	// GetLandscape retrieves a landscape by name.
	// Returns ErrLandscapeNotFound if it does not exist.
	GetLandscape(ctx context.Context, name string) (*Landscape, error)

	// UpsertLandscape creates or updates a landscape keyed by name.
	UpsertLandscape(ctx context.Context, landscape *Landscape) error

	// DeleteLandscape deletes a landscape by name.
	DeleteLandscape(ctx context.Context, name string) error
}
