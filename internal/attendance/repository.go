package attendance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/summit-delegates/backend/internal/models"
)

const attendanceColumns = `id, user_id, training_id, checked_in, check_in_at, created_at, updated_at`

// Repository implements Store on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByTrainingAndUser returns the attendance row for the pair, or
// (nil, nil) when none exists.
func (r *Repository) GetByTrainingAndUser(ctx context.Context, trainingID, userID uuid.UUID) (*models.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendances WHERE training_id = $1 AND user_id = $2`
	var a models.Attendance
	err := r.pool.QueryRow(ctx, q, trainingID, userID).
		Scan(&a.ID, &a.UserID, &a.TrainingID, &a.CheckedIn, &a.CheckInAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateCheckedIn inserts a checked-in row for the pair. A concurrent
// writer that got there first trips the (user_id, training_id) unique
// constraint, which is reported as ErrAlreadyCheckedIn.
func (r *Repository) CreateCheckedIn(ctx context.Context, trainingID, userID uuid.UUID) (*models.Attendance, error) {
	const q = `INSERT INTO attendances (user_id, training_id, checked_in, check_in_at)
		VALUES ($1, $2, TRUE, NOW())
		RETURNING ` + attendanceColumns
	var a models.Attendance
	err := r.pool.QueryRow(ctx, q, userID, trainingID).
		Scan(&a.ID, &a.UserID, &a.TrainingID, &a.CheckedIn, &a.CheckInAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return &a, nil
}

// MarkCheckedIn transitions an existing row to checked-in. The
// checked_in = FALSE guard means a raced second writer updates zero rows
// and gets ErrAlreadyCheckedIn.
func (r *Repository) MarkCheckedIn(ctx context.Context, id uuid.UUID) (*models.Attendance, error) {
	const q = `UPDATE attendances
		SET checked_in = TRUE, check_in_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND checked_in = FALSE
		RETURNING ` + attendanceColumns
	var a models.Attendance
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&a.ID, &a.UserID, &a.TrainingID, &a.CheckedIn, &a.CheckInAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyCheckedIn
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountByTraining returns total and checked-in attendance counts for a
// training.
func (r *Repository) CountByTraining(ctx context.Context, trainingID uuid.UUID) (total, checkedIn int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE checked_in) FROM attendances WHERE training_id = $1`
	err = r.pool.QueryRow(ctx, q, trainingID).Scan(&total, &checkedIn)
	return total, checkedIn, err
}

// ListByTraining returns attendance rows for a training with restricted
// user projections.
func (r *Repository) ListByTraining(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingAttendee, error) {
	const q = `SELECT a.id, a.user_id, a.training_id, a.checked_in, a.check_in_at, a.created_at, a.updated_at,
		u.id, u.name, u.email, u.role
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.training_id = $1
		ORDER BY a.created_at`
	rows, err := r.pool.Query(ctx, q, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TrainingAttendee
	for rows.Next() {
		var ta models.TrainingAttendee
		if err := rows.Scan(&ta.ID, &ta.UserID, &ta.TrainingID, &ta.CheckedIn, &ta.CheckInAt, &ta.CreatedAt, &ta.UpdatedAt,
			&ta.User.ID, &ta.User.Name, &ta.User.Email, &ta.User.Role); err != nil {
			return nil, err
		}
		list = append(list, ta)
	}
	return list, rows.Err()
}

// ListByUser returns attendance rows for a user with restricted training
// projections.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserAttendance, error) {
	const q = `SELECT a.id, a.user_id, a.training_id, a.checked_in, a.check_in_at, a.created_at, a.updated_at,
		t.id, t.name, t.date, t.time, t.location
		FROM attendances a
		JOIN trainings t ON t.id = a.training_id
		WHERE a.user_id = $1
		ORDER BY a.created_at`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserAttendance
	for rows.Next() {
		var ua models.UserAttendance
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.TrainingID, &ua.CheckedIn, &ua.CheckInAt, &ua.CreatedAt, &ua.UpdatedAt,
			&ua.Training.ID, &ua.Training.Name, &ua.Training.Date, &ua.Training.Time, &ua.Training.Location); err != nil {
			return nil, err
		}
		list = append(list, ua)
	}
	return list, rows.Err()
}
