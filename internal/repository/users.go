package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &role, &u.Country, &u.Language, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.ParseRole(role)
	return &u, nil
}

// Ensure creates the user on first sign-in. An existing row keeps its role
// and profile; only a changed email is refreshed.
func (r *UserRepository) Ensure(ctx context.Context, u model.User) (*model.User, error) {
	const query = `
INSERT INTO users AS u (id, email, display_name, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET email = EXCLUDED.email,
    updated_at = CASE WHEN u.email = EXCLUDED.email THEN u.updated_at ELSE NOW() END
RETURNING ` + userColumns

	role := u.Role
	if role == "" {
		role = model.RoleUser
	}
	out, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, u.ID, u.Email, u.DisplayName, string(role)))
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return out, nil
}

// GetByID returns a single user or model.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByIDs returns the users with the given ids keyed by id. Unknown ids are
// absent from the map.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.User, error) {
	out := make(map[string]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const query = `SELECT ` + userColumns + ` FROM users u WHERE u.id = ANY($1)`
	rows, err := conn(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = *u
	}
	return out, rows.Err()
}

// UpdateProfile overwrites the member-editable profile fields. Empty input
// fields keep their stored value.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, in model.ProfileInput) (*model.User, error) {
	const query = `
UPDATE users AS u
SET display_name = COALESCE(NULLIF($2, ''), u.display_name),
    country      = COALESCE(NULLIF($3, ''), u.country),
    language     = COALESCE(NULLIF($4, ''), u.language),
    updated_at   = NOW()
WHERE u.id = $1
RETURNING ` + userColumns

	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, id, in.DisplayName, in.Country, in.Language))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// UpdateRole changes a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	const query = `
UPDATE users AS u SET role = $2, updated_at = NOW()
WHERE u.id = $1
RETURNING ` + userColumns

	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, id, string(role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	return u, nil
}
