package booking

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusBlocked   AppointmentStatus = "blocked"
)

// Tenant is one company account, the root isolation boundary for everything else.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Professional struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Active       bool
	WorkingHours WeeklySchedule // nil means the default window applies every day
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Offering is a bookable catalog entry with a fixed duration and price.
type Offering struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Name            string
	Description     *string
	PriceCents      int64
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Customer struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	FullName  string
	Email     *string
	Phone     *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment reserves [StartTime, EndTime) for one professional.
// CustomerID and OfferingID are nil for professional-initiated blocked time.
type Appointment struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	ProfessionalID uuid.UUID
	CustomerID     *uuid.UUID
	OfferingID     *uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	Status         AppointmentStatus
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Occupies reports whether the appointment still holds its time window.
// Canceled rows stay around for history but free the slot.
func (a Appointment) Occupies() bool {
	return a.Status != StatusCanceled
}
