package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance records whether and when a user checked into a training.
// At most one row exists per (user, training) pair; CheckInAt is set iff
// CheckedIn is true. Rows are created lazily on first check-in.
type Attendance struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TrainingID uuid.UUID  `json:"training_id"`
	CheckedIn  bool       `json:"checked_in"`
	CheckInAt  *time.Time `json:"check_in_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserSummary is the restricted user projection embedded in attendance
// reads. Never carries the password hash.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// TrainingSummary is the restricted training projection embedded in
// attendance reads.
type TrainingSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Location string    `json:"location"`
}

// TrainingAttendee is an attendance row joined with its user summary.
type TrainingAttendee struct {
	Attendance
	User UserSummary `json:"user"`
}

// UserAttendance is an attendance row joined with its training summary.
type UserAttendance struct {
	Attendance
	Training TrainingSummary `json:"training"`
}

// TrainingStats is the derived per-training attendance view, recomputed on
// every call.
type TrainingStats struct {
	TotalAttendees     int     `json:"total_attendees"`
	CheckedInAttendees int     `json:"checked_in_attendees"`
	CheckInRate        float64 `json:"check_in_rate"`
}
