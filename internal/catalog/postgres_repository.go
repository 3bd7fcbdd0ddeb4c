package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListComponents returns all components ordered by name.
func (r *PostgresRepository) ListComponents(ctx context.Context) ([]*Component, error) {
	query := `
		SELECT id, name, team, metadata, created_at, updated_at
		FROM components
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []*Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.Name, &c.Team, &c.Metadata, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		components = append(components, &c)
	}

	return components, rows.Err()
}

// GetComponent retrieves a component by ID.
func (r *PostgresRepository) GetComponent(ctx context.Context, id string) (*Component, error) {
	query := `
		SELECT id, name, team, metadata, created_at, updated_at
		FROM components
		WHERE id = $1
	`

	var c Component
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Team, &c.Metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrComponentNotFound
		}
		return nil, err
	}

	return &c, nil
}

// CreateComponent creates a new component.
func (r *PostgresRepository) CreateComponent(ctx context.Context, component *Component) error {
	query := `
		INSERT INTO components (id, name, team, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		component.ID,
		component.Name,
		component.Team,
		component.Metadata,
		component.CreatedAt,
		component.UpdatedAt,
	)
	return err
}

// UpdateComponent updates an existing component.
func (r *PostgresRepository) UpdateComponent(ctx context.Context, component *Component) error {
	query := `
		UPDATE components SET
			name = $2,
			team = $3,
			metadata = $4,
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		component.ID,
		component.Name,
		component.Team,
		component.Metadata,
		component.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrComponentNotFound
	}

	return nil
}

// DeleteComponent deletes a component by ID.
func (r *PostgresRepository) DeleteComponent(ctx context.Context, id string) error {
	query := `DELETE FROM components WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// ListLandscapes returns all landscapes ordered by name.
func (r *PostgresRepository) ListLandscapes(ctx context.Context) ([]*Landscape, error) {
	query := `
		SELECT name, route, created_at, updated_at
		FROM landscapes
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var landscapes []*Landscape
	for rows.Next() {
		var l Landscape
		if err := rows.Scan(&l.Name, &l.Route, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		landscapes = append(landscapes, &l)
	}

	return landscapes, rows.Err()
}

// GetLandscape retrieves a landscape by name.
func (r *PostgresRepository) GetLandscape(ctx context.Context, name string) (*Landscape, error) {
	query := `
		SELECT name, route, created_at, updated_at
		FROM landscapes
		WHERE name = $1
	`

	var l Landscape
	err := r.pool.QueryRow(ctx, query, name).Scan(&l.Name, &l.Route, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLandscapeNotFound
		}
		return nil, err
	}

	return &l, nil
}

// UpsertLandscape creates or updates a landscape keyed by name.
func (r *PostgresRepository) UpsertLandscape(ctx context.Context, landscape *Landscape) error {
	query := `
		INSERT INTO landscapes (name, route, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			route = EXCLUDED.route,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		landscape.Name,
		landscape.Route,
		landscape.CreatedAt,
		landscape.UpdatedAt,
	)
	return err
}

// DeleteLandscape deletes a landscape by name.
func (r *PostgresRepository) DeleteLandscape(ctx context.Context, name string) error {
	query := `DELETE FROM landscapes WHERE name = $1`
	_, err := r.pool.Exec(ctx, query, name)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
