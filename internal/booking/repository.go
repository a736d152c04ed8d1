package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrOfferingNotFound     = errors.New("offering not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error)

	GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error)
	GetOfferingByID(ctx context.Context, id uuid.UUID) (*Offering, error)

	GetCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetCustomerByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Customer, error)

	// For overlap checks: every appointment, canceled included, whose start
	// falls within [dayStart, dayEnd) for the professional.
	ListAppointmentsForProfessional(ctx context.Context, professionalID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error)

	// CreateGuestAppointment inserts the customer (when it has no ID yet) and
	// the appointment in one transaction.
	CreateGuestAppointment(ctx context.Context, cust Customer, appt Appointment) (*Customer, *Appointment, error)

	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error)
}
