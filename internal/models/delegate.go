package models

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationType classifies the delegate's local organization.
type OrganizationType string

const (
	OrgTypeCity          OrganizationType = "CITY"
	OrgTypeState         OrganizationType = "STATE"
	OrgTypeNational      OrganizationType = "NATIONAL"
	OrgTypeInternational OrganizationType = "INTERNATIONAL"
)

// ValidOrganizationType reports whether s names a known organization type.
func ValidOrganizationType(s string) bool {
	switch OrganizationType(s) {
	case OrgTypeCity, OrgTypeState, OrgTypeNational, OrgTypeInternational:
		return true
	}
	return false
}

// Delegate is an event attendee record. Trainings holds the sessions the
// delegate is assigned (expected) to attend; actual presence is tracked
// separately as Attendance.
type Delegate struct {
	ID                uuid.UUID        `json:"id"`
	FullName          string           `json:"full_name"`
	LocalOrganization string           `json:"local_organization"`
	OrganizationType  OrganizationType `json:"organization_type"`
	Email             string           `json:"email"`
	PhoneNumber       string           `json:"phone_number"`
	TableNumber       *int             `json:"table_number,omitempty"`
	SeatNumber        *int             `json:"seat_number,omitempty"`
	Trainings         []Training       `json:"trainings,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
