package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/summit-delegates/backend/internal/models"
)

type fakeTrainingStore struct {
	trainings map[uuid.UUID]*models.Training
	err       error
}

func (f *fakeTrainingStore) GetByID(_ context.Context, id uuid.UUID) (*models.Training, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trainings[id], nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

type pairKey struct {
	trainingID uuid.UUID
	userID     uuid.UUID
}

// fakeStore mirrors the repository contract: the pair set acts as the
// unique constraint, and MarkCheckedIn honors the checked_in=false guard.
type fakeStore struct {
	mu   sync.Mutex
	rows map[pairKey]*models.Attendance
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[pairKey]*models.Attendance)}
}

func (f *fakeStore) GetByTrainingAndUser(_ context.Context, trainingID, userID uuid.UUID) (*models.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.rows[pairKey{trainingID, userID}]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateCheckedIn(_ context.Context, trainingID, userID uuid.UUID) (*models.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := pairKey{trainingID, userID}
	if _, ok := f.rows[key]; ok {
		return nil, ErrAlreadyCheckedIn
	}
	now := time.Now()
	a := &models.Attendance{
		ID:         uuid.New(),
		UserID:     userID,
		TrainingID: trainingID,
		CheckedIn:  true,
		CheckInAt:  &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.rows[key] = a
	copied := *a
	return &copied, nil
}

func (f *fakeStore) MarkCheckedIn(_ context.Context, id uuid.UUID) (*models.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.rows {
		if a.ID == id {
			if a.CheckedIn {
				return nil, ErrAlreadyCheckedIn
			}
			now := time.Now()
			a.CheckedIn = true
			a.CheckInAt = &now
			a.UpdatedAt = now
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrAlreadyCheckedIn
}

func (f *fakeStore) CountByTraining(_ context.Context, trainingID uuid.UUID) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	total, checkedIn := 0, 0
	for key, a := range f.rows {
		if key.trainingID != trainingID {
			continue
		}
		total++
		if a.CheckedIn {
			checkedIn++
		}
	}
	return total, checkedIn, nil
}

func (f *fakeStore) ListByTraining(_ context.Context, trainingID uuid.UUID) ([]models.TrainingAttendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var list []models.TrainingAttendee
	for key, a := range f.rows {
		if key.trainingID == trainingID {
			list = append(list, models.TrainingAttendee{Attendance: *a})
		}
	}
	return list, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.UserAttendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var list []models.UserAttendance
	for key, a := range f.rows {
		if key.userID == userID {
			list = append(list, models.UserAttendance{Attendance: *a})
		}
	}
	return list, nil
}

func newTestService(store *fakeStore) (*Service, uuid.UUID, uuid.UUID) {
	training := &models.Training{ID: uuid.New(), Name: "Safety 101"}
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleDelegate}
	svc := NewService(store,
		&fakeTrainingStore{trainings: map[uuid.UUID]*models.Training{training.ID: training}},
		&fakeUserStore{users: map[uuid.UUID]*models.User{user.ID: user}},
	)
	return svc, training.ID, user.ID
}

func TestCheckInCreatesRow(t *testing.T) {
	store := newFakeStore()
	svc, trainingID, userID := newTestService(store)

	record, created, err := svc.CheckIn(context.Background(), trainingID, userID)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if !created {
		t.Fatal("expected a newly created row")
	}
	if !record.CheckedIn {
		t.Fatal("expected checked_in true")
	}
	if record.CheckInAt == nil {
		t.Fatal("expected check_in_at to be set")
	}
}

func TestCheckInTwiceFails(t *testing.T) {
	store := newFakeStore()
	svc, trainingID, userID := newTestService(store)

	first, _, err := svc.CheckIn(context.Background(), trainingID, userID)
	if err != nil {
		t.Fatalf("first check in: %v", err)
	}
	_, _, err = svc.CheckIn(context.Background(), trainingID, userID)
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}

	// The row must be untouched by the failed attempt.
	row, err := store.GetByTrainingAndUser(context.Background(), trainingID, userID)
	if err != nil {
		t.Fatalf("get row: %v", err)
	}
	if row == nil || !row.CheckInAt.Equal(*first.CheckInAt) {
		t.Fatal("expected row unchanged after duplicate check-in")
	}
}

func TestCheckInTransitionsExistingRow(t *testing.T) {
	store := newFakeStore()
	svc, trainingID, userID := newTestService(store)

	// Pre-register an unchecked row, as a bulk registration would.
	store.rows[pairKey{trainingID, userID}] = &models.Attendance{
		ID:         uuid.New(),
		UserID:     userID,
		TrainingID: trainingID,
	}

	record, created, err := svc.CheckIn(context.Background(), trainingID, userID)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if created {
		t.Fatal("expected transition of the existing row, not a create")
	}
	if !record.CheckedIn || record.CheckInAt == nil {
		t.Fatal("expected row transitioned to checked in")
	}
}

func TestCheckInUnknownTraining(t *testing.T) {
	store := newFakeStore()
	svc, _, userID := newTestService(store)

	_, _, err := svc.CheckIn(context.Background(), uuid.New(), userID)
	if !errors.Is(err, ErrTrainingNotFound) {
		t.Fatalf("expected ErrTrainingNotFound, got %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatal("expected no row created for unknown training")
	}
}

func TestCheckInUnknownUser(t *testing.T) {
	store := newFakeStore()
	svc, trainingID, _ := newTestService(store)

	_, _, err := svc.CheckIn(context.Background(), trainingID, uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatal("expected no row created for unknown user")
	}
}

func TestCheckInStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection reset")
	svc, trainingID, userID := newTestService(store)

	_, _, err := svc.CheckIn(context.Background(), trainingID, userID)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestConcurrentCheckInSingleWinner(t *testing.T) {
	store := newFakeStore()
	svc, trainingID, userID := newTestService(store)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.CheckIn(context.Background(), trainingID, userID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyCheckedIn):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful check-in, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected one attendance row, got %d", len(store.rows))
	}
}

func TestStats(t *testing.T) {
	store := newFakeStore()
	svc, trainingID, userID := newTestService(store)

	t.Run("no rows yields zero rate", func(t *testing.T) {
		stats, err := svc.Stats(context.Background(), trainingID)
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.TotalAttendees != 0 || stats.CheckedInAttendees != 0 || stats.CheckInRate != 0 {
			t.Fatalf("expected zero stats, got %+v", stats)
		}
	})

	t.Run("counts and rate after check-in", func(t *testing.T) {
		if _, _, err := svc.CheckIn(context.Background(), trainingID, userID); err != nil {
			t.Fatalf("check in: %v", err)
		}
		// Three more registered but not checked in.
		for i := 0; i < 3; i++ {
			id := uuid.New()
			store.rows[pairKey{trainingID, id}] = &models.Attendance{ID: uuid.New(), UserID: id, TrainingID: trainingID}
		}

		stats, err := svc.Stats(context.Background(), trainingID)
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.TotalAttendees != 4 {
			t.Fatalf("expected 4 total attendees, got %d", stats.TotalAttendees)
		}
		if stats.CheckedInAttendees != 1 {
			t.Fatalf("expected 1 checked in, got %d", stats.CheckedInAttendees)
		}
		if stats.CheckInRate != 25 {
			t.Fatalf("expected rate 25, got %v", stats.CheckInRate)
		}
	})
}

func TestStatsStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("timeout")
	svc, trainingID, _ := newTestService(store)

	_, err := svc.Stats(context.Background(), trainingID)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
