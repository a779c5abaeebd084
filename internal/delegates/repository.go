// Package delegates manages event delegate records, their training
// assignments and banquet seating.
package delegates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/summit-delegates/backend/internal/models"
)

const delegateColumns = `id, full_name, local_organization, organization_type,
	email, phone_number, table_number, seat_number, created_at, updated_at`

// ListParams filter and paginate the delegate list.
type ListParams struct {
	Page              int
	Limit             int
	Search            string
	LocalOrganization string
}

// Repository handles delegate persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a delegates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of delegates with their assigned trainings and the
// total match count. Search matches name, email and local organization.
func (r *Repository) List(ctx context.Context, p ListParams) ([]models.Delegate, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}

	where := ""
	var args []interface{}
	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		where = fmt.Sprintf(` WHERE (full_name ILIKE $%d OR email ILIKE $%d OR local_organization ILIKE $%d)`,
			len(args), len(args), len(args))
	}
	if p.LocalOrganization != "" {
		args = append(args, p.LocalOrganization)
		if where == "" {
			where = fmt.Sprintf(` WHERE local_organization = $%d`, len(args))
		} else {
			where += fmt.Sprintf(` AND local_organization = $%d`, len(args))
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM delegates`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.Limit
	args = append(args, p.Limit, offset)
	q := fmt.Sprintf(`SELECT `+delegateColumns+` FROM delegates`+where+` ORDER BY full_name LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Delegate
	for rows.Next() {
		var d models.Delegate
		if err := scanDelegate(rows, &d); err != nil {
			return nil, 0, err
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachTrainings(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// GetByID returns a delegate with assigned trainings, or (nil, nil) when
// none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delegate, error) {
	const q = `SELECT ` + delegateColumns + ` FROM delegates WHERE id = $1`
	var d models.Delegate
	err := scanDelegate(r.pool.QueryRow(ctx, q, id), &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []models.Delegate{d}
	if err := r.attachTrainings(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Create inserts a new delegate.
func (r *Repository) Create(ctx context.Context, d *models.Delegate) error {
	const q = `INSERT INTO delegates (full_name, local_organization, organization_type, email, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, d.FullName, d.LocalOrganization, string(d.OrganizationType), d.Email, d.PhoneNumber).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// UpdateParams holds optional fields for a partial delegate update.
type UpdateParams struct {
	FullName          *string
	LocalOrganization *string
	OrganizationType  *models.OrganizationType
	Email             *string
	PhoneNumber       *string
}

// Update applies a partial update and returns the updated delegate, or
// (nil, nil) when no delegate exists.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Delegate, error) {
	const q = `UPDATE delegates SET
		full_name = COALESCE($1, full_name),
		local_organization = COALESCE($2, local_organization),
		organization_type = COALESCE($3, organization_type),
		email = COALESCE($4, email),
		phone_number = COALESCE($5, phone_number),
		updated_at = NOW()
		WHERE id = $6
		RETURNING ` + delegateColumns
	var orgType *string
	if p.OrganizationType != nil {
		s := string(*p.OrganizationType)
		orgType = &s
	}
	var d models.Delegate
	err := scanDelegate(r.pool.QueryRow(ctx, q, p.FullName, p.LocalOrganization, orgType, p.Email, p.PhoneNumber, id), &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes a delegate; assignment rows cascade. Returns false when
// no delegate existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM delegates WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReplaceTrainings replaces the delegate's assigned training set. Unknown
// training IDs are dropped silently, matching the lookup-by-ids semantics
// of assignment.
func (r *Repository) ReplaceTrainings(ctx context.Context, delegateID uuid.UUID, trainingIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM delegate_trainings WHERE delegate_id = $1`, delegateID); err != nil {
		return err
	}
	if len(trainingIDs) > 0 {
		const q = `INSERT INTO delegate_trainings (delegate_id, training_id)
			SELECT $1, id FROM trainings WHERE id = ANY($2)
			ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, q, delegateID, trainingIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetBanquetSeating assigns a banquet table and seat. Returns the updated
// delegate, or (nil, nil) when none exists.
func (r *Repository) SetBanquetSeating(ctx context.Context, id uuid.UUID, tableNumber, seatNumber int) (*models.Delegate, error) {
	const q = `UPDATE delegates SET table_number = $1, seat_number = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + delegateColumns
	var d models.Delegate
	err := scanDelegate(r.pool.QueryRow(ctx, q, tableNumber, seatNumber, id), &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateBatch inserts delegates in one round trip and returns the count.
func (r *Repository) CreateBatch(ctx context.Context, list []models.Delegate) (int, error) {
	batch := &pgx.Batch{}
	const q = `INSERT INTO delegates (full_name, local_organization, organization_type, email, phone_number)
		VALUES ($1, $2, $3, $4, $5)`
	for _, d := range list {
		batch.Queue(q, d.FullName, d.LocalOrganization, string(d.OrganizationType), d.Email, d.PhoneNumber)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range list {
		if _, err := results.Exec(); err != nil {
			return 0, err
		}
	}
	return len(list), nil
}

// ReplaceAll clears all delegates and their assignments, then inserts the
// given set. Used by the seed binary.
func (r *Repository) ReplaceAll(ctx context.Context, list []models.Delegate) (int, error) {
	if _, err := r.pool.Exec(ctx, `TRUNCATE TABLE delegate_trainings, delegates`); err != nil {
		return 0, err
	}
	return r.CreateBatch(ctx, list)
}

func (r *Repository) attachTrainings(ctx context.Context, list []models.Delegate) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(list))
	index := make(map[uuid.UUID]*models.Delegate, len(list))
	for i := range list {
		ids[i] = list[i].ID
		index[list[i].ID] = &list[i]
	}
	const q = `SELECT dt.delegate_id, t.id, t.name, COALESCE(t.title, ''), COALESCE(t.description, ''),
		t.trainer, t.location, t.time, t.date, t.starts_at, t.ends_at, t.created_at, t.updated_at
		FROM delegate_trainings dt
		JOIN trainings t ON t.id = dt.training_id
		WHERE dt.delegate_id = ANY($1)
		ORDER BY t.date, t.time`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var delegateID uuid.UUID
		var t models.Training
		if err := rows.Scan(&delegateID, &t.ID, &t.Name, &t.Title, &t.Description,
			&t.Trainer, &t.Location, &t.Time, &t.Date, &t.StartsAt, &t.EndsAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		if d, ok := index[delegateID]; ok {
			d.Trainings = append(d.Trainings, t)
		}
	}
	return rows.Err()
}

func scanDelegate(row pgx.Row, d *models.Delegate) error {
	return row.Scan(&d.ID, &d.FullName, &d.LocalOrganization, &d.OrganizationType,
		&d.Email, &d.PhoneNumber, &d.TableNumber, &d.SeatNumber, &d.CreatedAt, &d.UpdatedAt)
}
