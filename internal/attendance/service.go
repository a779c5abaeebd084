// Package attendance implements the check-in state machine and derived
// per-training statistics.
//
// State per (user, training) pair: no row, row with checked_in=false, or
// row with checked_in=true. Check-in moves the first two states to the
// third; a third attempt on a checked-in row is an error, not a silent
// no-op, so duplicate scans surface to the client.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/summit-delegates/backend/internal/models"
)

var (
	// ErrTrainingNotFound means the training does not exist.
	ErrTrainingNotFound = errors.New("training not found")
	// ErrUserNotFound means the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyCheckedIn means the (user, training) pair is already
	// checked in; the row is left untouched.
	ErrAlreadyCheckedIn = errors.New("already checked in")
	// ErrUnavailable wraps storage failures; callers may retry.
	ErrUnavailable = errors.New("attendance storage unavailable")
)

// TrainingStore looks up trainings; (nil, nil) when absent.
type TrainingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Training, error)
}

// UserStore looks up users; (nil, nil) when absent.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Store persists attendance rows. GetByTrainingAndUser returns (nil, nil)
// when no row exists. CreateCheckedIn and MarkCheckedIn return
// ErrAlreadyCheckedIn when they lose a race: the unique constraint on
// (user_id, training_id) for creates, the checked_in=false guard for
// updates.
type Store interface {
	GetByTrainingAndUser(ctx context.Context, trainingID, userID uuid.UUID) (*models.Attendance, error)
	CreateCheckedIn(ctx context.Context, trainingID, userID uuid.UUID) (*models.Attendance, error)
	MarkCheckedIn(ctx context.Context, id uuid.UUID) (*models.Attendance, error)
	CountByTraining(ctx context.Context, trainingID uuid.UUID) (total, checkedIn int, err error)
	ListByTraining(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingAttendee, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserAttendance, error)
}

// Service performs the check-in transition and computes statistics.
// Callers must already be authorized.
type Service struct {
	store     Store
	trainings TrainingStore
	users     UserStore
}

// NewService creates an attendance service.
func NewService(store Store, trainings TrainingStore, users UserStore) *Service {
	return &Service{store: store, trainings: trainings, users: users}
}

// CheckIn records that the user is present at the training. The returned
// bool reports whether a new attendance row was created (as opposed to an
// existing registration transitioning to checked-in). Existence checks run
// before the row lookup so callers get a precise error. The write is
// all-or-nothing; on any failure no partial mutation remains.
func (s *Service) CheckIn(ctx context.Context, trainingID, userID uuid.UUID) (*models.Attendance, bool, error) {
	training, err := s.trainings.GetByID(ctx, trainingID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if training == nil {
		return nil, false, ErrTrainingNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if user == nil {
		return nil, false, ErrUserNotFound
	}

	existing, err := s.store.GetByTrainingAndUser(ctx, trainingID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if existing != nil {
		if existing.CheckedIn {
			return nil, false, ErrAlreadyCheckedIn
		}
		updated, err := s.store.MarkCheckedIn(ctx, existing.ID)
		if err != nil {
			if errors.Is(err, ErrAlreadyCheckedIn) {
				return nil, false, err
			}
			return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return updated, false, nil
	}

	created, err := s.store.CreateCheckedIn(ctx, trainingID, userID)
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return created, true, nil
}

// Stats returns the derived attendance view for a training, recomputed
// from the rows on every call. A training with no rows yields a zero rate,
// not an error.
func (s *Service) Stats(ctx context.Context, trainingID uuid.UUID) (*models.TrainingStats, error) {
	total, checkedIn, err := s.store.CountByTraining(ctx, trainingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	stats := &models.TrainingStats{
		TotalAttendees:     total,
		CheckedInAttendees: checkedIn,
	}
	if total > 0 {
		stats.CheckInRate = float64(checkedIn) / float64(total) * 100
	}
	return stats, nil
}

// TrainingAttendance returns the attendance rows for a training joined
// with restricted user summaries.
func (s *Service) TrainingAttendance(ctx context.Context, trainingID uuid.UUID) ([]models.TrainingAttendee, error) {
	list, err := s.store.ListByTraining(ctx, trainingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return list, nil
}

// UserAttendance returns the attendance rows for a user joined with
// restricted training summaries.
func (s *Service) UserAttendance(ctx context.Context, userID uuid.UUID) ([]models.UserAttendance, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return list, nil
}
