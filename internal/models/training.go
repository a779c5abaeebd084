package models

import (
	"time"

	"github.com/google/uuid"
)

// Training is a single session of the event that delegates attend.
// Date and Time are the display schedule; StartsAt/EndsAt are optional
// precise instants.
type Training struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Trainer     string     `json:"trainer"`
	Location    string     `json:"location"`
	Time        string     `json:"time"`
	Date        string     `json:"date"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
