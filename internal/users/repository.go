// Package users manages the user accounts that authenticate against the
// system. All operations here are ADMIN-gated at the routing layer.
package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/summit-delegates/backend/internal/models"
)

// ErrEmailTaken means the unique email constraint rejected an insert or
// update.
var ErrEmailTaken = errors.New("email already in use")

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by ID, or (nil, nil) when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns a user by email, or (nil, nil) when none exists.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, email))
}

// HasRole reports whether any user with the given role exists.
func (r *Repository) HasRole(ctx context.Context, role models.Role) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, q, role).Scan(&exists)
	return exists, err
}

// List returns all users without password hashes.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, name, role, created_at FROM users ORDER BY name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Create inserts a new user. A duplicate email yields ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	u, err := r.scanOne(r.pool.QueryRow(ctx, q, email, passwordHash, name, string(role)))
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return u, err
}

// UpdateParams holds optional fields for a partial user update.
type UpdateParams struct {
	Email        *string
	PasswordHash *string
	Name         *string
	Role         *models.Role
}

// Update applies a partial update and returns the updated user, or
// (nil, nil) when no user exists.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.User, error) {
	const q = `UPDATE users SET
		email = COALESCE($1, email),
		password_hash = COALESCE($2, password_hash),
		name = COALESCE($3, name),
		role = COALESCE($4, role),
		updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns
	var role *string
	if p.Role != nil {
		s := string(*p.Role)
		role = &s
	}
	u, err := r.scanOne(r.pool.QueryRow(ctx, q, p.Email, p.PasswordHash, p.Name, role, id))
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	return u, err
}

// Delete removes a user; attendance rows cascade. Returns false when no
// user existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) scanOne(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
