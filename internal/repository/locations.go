package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// LocationRepository handles persistence for venues.
type LocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository constructs a LocationRepository.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

func scanLocation(row pgx.Row) (*model.Location, error) {
	var lr locationRow
	if err := row.Scan(lr.dest()...); err != nil {
		return nil, err
	}
	return lr.toModel(), nil
}

// Create inserts a location with the given id.
func (r *LocationRepository) Create(ctx context.Context, id string, in model.LocationInput) (*model.Location, error) {
	const query = `
INSERT INTO locations AS l (id, name, address, city, description, image_url, rating, features, map_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + locationColumns

	l, err := scanLocation(conn(ctx, r.pool).QueryRow(ctx, query,
		id, in.Name, in.Address, in.City, in.Description, in.ImageURL, in.Rating, features(in.Features), in.MapURL,
	))
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return l, nil
}

// Update replaces every editable field of a location.
func (r *LocationRepository) Update(ctx context.Context, id string, in model.LocationInput) (*model.Location, error) {
	const query = `
UPDATE locations AS l
SET name = $2, address = $3, city = $4, description = $5, image_url = $6,
    rating = $7, features = $8, map_url = $9, updated_at = NOW()
WHERE l.id = $1
RETURNING ` + locationColumns

	l, err := scanLocation(conn(ctx, r.pool).QueryRow(ctx, query,
		id, in.Name, in.Address, in.City, in.Description, in.ImageURL, in.Rating, features(in.Features), in.MapURL,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: location %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("update location: %w", err)
	}
	return l, nil
}

// GetByID returns a single location or model.ErrNotFound.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*model.Location, error) {
	const query = `SELECT ` + locationColumns + ` FROM locations l WHERE l.id = $1`
	l, err := scanLocation(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: location %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// GetByIDs returns the locations with the given ids keyed by id.
func (r *LocationRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.Location, error) {
	out := make(map[string]model.Location, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const query = `SELECT ` + locationColumns + ` FROM locations l WHERE l.id = ANY($1)`
	locs, err := r.list(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range locs {
		out[l.ID] = l
	}
	return out, nil
}

// List returns every location ordered by city and name.
func (r *LocationRepository) List(ctx context.Context) ([]model.Location, error) {
	const query = `SELECT ` + locationColumns + ` FROM locations l ORDER BY l.city, l.name`
	return r.list(ctx, query)
}

func (r *LocationRepository) list(ctx context.Context, query string, args ...any) ([]model.Location, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locs := []model.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locs = append(locs, *l)
	}
	return locs, rows.Err()
}

func features(f []string) []string {
	if f == nil {
		return []string{}
	}
	return f
}
