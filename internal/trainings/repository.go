// Package trainings manages the training sessions of the event.
package trainings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/summit-delegates/backend/internal/models"
)

const trainingColumns = `id, name, COALESCE(title, ''), COALESCE(description, ''),
	trainer, location, time, date, starts_at, ends_at, created_at, updated_at`

// Repository handles training persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a trainings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new training.
func (r *Repository) Create(ctx context.Context, t *models.Training) error {
	const q = `INSERT INTO trainings (name, title, description, trainer, location, time, date, starts_at, ends_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Name, t.Title, t.Description, t.Trainer, t.Location, t.Time, t.Date, t.StartsAt, t.EndsAt).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a training by ID, or (nil, nil) when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	const q = `SELECT ` + trainingColumns + ` FROM trainings WHERE id = $1`
	var t models.Training
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Title, &t.Description,
		&t.Trainer, &t.Location, &t.Time, &t.Date, &t.StartsAt, &t.EndsAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all trainings ordered by schedule.
func (r *Repository) List(ctx context.Context) ([]models.Training, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+trainingColumns+` FROM trainings ORDER BY date, time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Training
	for rows.Next() {
		var t models.Training
		if err := rows.Scan(&t.ID, &t.Name, &t.Title, &t.Description,
			&t.Trainer, &t.Location, &t.Time, &t.Date, &t.StartsAt, &t.EndsAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// UpdateParams holds optional fields for a partial training update.
type UpdateParams struct {
	Name        *string
	Title       *string
	Description *string
	Trainer     *string
	Location    *string
	Time        *string
	Date        *string
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// Update applies a partial update and returns the updated training, or
// (nil, nil) when no training exists.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Training, error) {
	const q = `UPDATE trainings SET
		name = COALESCE($1, name),
		title = COALESCE($2, title),
		description = COALESCE($3, description),
		trainer = COALESCE($4, trainer),
		location = COALESCE($5, location),
		time = COALESCE($6, time),
		date = COALESCE($7, date),
		starts_at = COALESCE($8, starts_at),
		ends_at = COALESCE($9, ends_at),
		updated_at = NOW()
		WHERE id = $10
		RETURNING ` + trainingColumns
	var t models.Training
	err := r.pool.QueryRow(ctx, q, p.Name, p.Title, p.Description, p.Trainer, p.Location, p.Time, p.Date, p.StartsAt, p.EndsAt, id).
		Scan(&t.ID, &t.Name, &t.Title, &t.Description,
			&t.Trainer, &t.Location, &t.Time, &t.Date, &t.StartsAt, &t.EndsAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a training; attendance and assignment rows cascade.
// Returns false when no training existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
