package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/bookline/bookline/internal/redis"
)

var (
	ErrTenantMismatch    = errors.New("entity belongs to a different tenant")
	ErrSlotUnavailable   = errors.New("professional is not available for the selected time")
	ErrBookingContended  = errors.New("professional is currently being booked, please retry")
	ErrInvalidTimeRange  = errors.New("end time must be after start time")
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrGuestEmailMissing = errors.New("guest email is required")
)

// Service orchestrates bookings: it validates requests against the tenant,
// consults the availability engine, and owns every write. The availability
// check and the insert run inside a per-professional lock; without it two
// concurrent requests could both observe a free window and both insert.
type Service struct {
	repo   Repository
	locker redisclient.Locker
	avail  *Availability
}

func NewService(repo Repository, locker redisclient.Locker) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		avail:  NewAvailability(repo.ListAppointmentsForProfessional),
	}
}

// Availability exposes the read-only engine for callers that only need
// free/busy answers.
func (s *Service) Availability() *Availability {
	return s.avail
}

type CreateAppointmentInput struct {
	ProfessionalID uuid.UUID
	OfferingID     uuid.UUID
	CustomerID     *uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	Notes          *string
}

// CreateAppointment books [StartTime, EndTime) with a professional on behalf
// of an already-known customer, or with no customer at all. Every referenced
// entity must belong to tenantID.
func (s *Service) CreateAppointment(ctx context.Context, tenantID uuid.UUID, in CreateAppointmentInput) (*Appointment, error) {
	if !in.StartTime.Before(in.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	prof, err := s.loadProfessional(ctx, tenantID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadOffering(ctx, tenantID, in.OfferingID); err != nil {
		return nil, err
	}

	var created *Appointment
	err = s.locked(ctx, prof.ID, func(ctx context.Context) error {
		free, err := s.avail.IsAvailable(ctx, prof.ID, in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		if !free {
			return ErrSlotUnavailable
		}

		if in.CustomerID != nil {
			if _, err := s.repo.GetCustomerByID(ctx, *in.CustomerID); err != nil {
				return err
			}
		}

		offeringID := in.OfferingID
		created, err = s.repo.CreateAppointment(ctx, Appointment{
			TenantID:       tenantID,
			ProfessionalID: prof.ID,
			CustomerID:     in.CustomerID,
			OfferingID:     &offeringID,
			StartTime:      in.StartTime,
			EndTime:        in.EndTime,
			Status:         StatusScheduled,
			Notes:          in.Notes,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

type GuestBookingInput struct {
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	ProfessionalID uuid.UUID
	OfferingID     uuid.UUID
	StartTime      time.Time
}

// CreateGuestAppointment books for an unauthenticated visitor. The end time
// is derived from the offering's duration, and the customer is resolved or
// created by (email, tenant): email is the natural key for guest identity
// within a tenant, so a returning guest never produces a duplicate row.
func (s *Service) CreateGuestAppointment(ctx context.Context, tenantID uuid.UUID, in GuestBookingInput) (*Appointment, error) {
	email := strings.TrimSpace(in.CustomerEmail)
	if email == "" {
		return nil, ErrGuestEmailMissing
	}

	prof, err := s.loadProfessional(ctx, tenantID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	offering, err := s.loadOffering(ctx, tenantID, in.OfferingID)
	if err != nil {
		return nil, err
	}

	start := in.StartTime
	end := start.Add(time.Duration(offering.DurationMinutes) * time.Minute)

	var created *Appointment
	err = s.locked(ctx, prof.ID, func(ctx context.Context) error {
		free, err := s.avail.IsAvailable(ctx, prof.ID, start, end)
		if err != nil {
			return err
		}
		if !free {
			return ErrSlotUnavailable
		}

		appt := Appointment{
			TenantID:       tenantID,
			ProfessionalID: prof.ID,
			OfferingID:     &offering.ID,
			StartTime:      start,
			EndTime:        end,
			Status:         StatusScheduled,
		}

		cust, err := s.repo.GetCustomerByEmail(ctx, tenantID, email)
		switch {
		case err == nil:
			appt.CustomerID = &cust.ID
			created, err = s.repo.CreateAppointment(ctx, appt)
			if err != nil {
				return fmt.Errorf("create guest appointment: %w", err)
			}
		case errors.Is(err, ErrCustomerNotFound):
			newCust := Customer{
				TenantID: tenantID,
				FullName: in.CustomerName,
				Email:    &email,
			}
			if phone := strings.TrimSpace(in.CustomerPhone); phone != "" {
				newCust.Phone = &phone
			}
			_, created, err = s.repo.CreateGuestAppointment(ctx, newCust, appt)
			if err != nil {
				return fmt.Errorf("create guest customer and appointment: %w", err)
			}
		default:
			return fmt.Errorf("look up guest customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

type BlockTimeInput struct {
	ProfessionalID uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	Notes          *string
}

// BlockTime reserves a window as professional-initiated unavailability.
// A blocked row has no customer and no offering, but holds its window
// against bookings exactly like a scheduled appointment.
func (s *Service) BlockTime(ctx context.Context, tenantID uuid.UUID, in BlockTimeInput) (*Appointment, error) {
	if !in.StartTime.Before(in.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	prof, err := s.loadProfessional(ctx, tenantID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	var created *Appointment
	err = s.locked(ctx, prof.ID, func(ctx context.Context) error {
		free, err := s.avail.IsAvailable(ctx, prof.ID, in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		if !free {
			return ErrSlotUnavailable
		}

		created, err = s.repo.CreateAppointment(ctx, Appointment{
			TenantID:       tenantID,
			ProfessionalID: prof.ID,
			StartTime:      in.StartTime,
			EndTime:        in.EndTime,
			Status:         StatusBlocked,
			Notes:          in.Notes,
		})
		if err != nil {
			return fmt.Errorf("create blocked time: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// CancelAppointment releases the appointment's window. Canceling an
// already-canceled appointment is a no-op success.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.UpdateAppointmentStatus(ctx, id, StatusCanceled); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return err
		}
		return fmt.Errorf("cancel appointment: %w", err)
	}
	return nil
}

// AvailableSlots lists free slot start times for a professional on date.
// When offeringID is set, the slot duration comes from the offering;
// otherwise fallbackDuration (minutes) is used.
func (s *Service) AvailableSlots(ctx context.Context, tenantID, professionalID uuid.UUID, date time.Time, offeringID *uuid.UUID, fallbackDuration int) ([]string, error) {
	prof, err := s.loadProfessional(ctx, tenantID, professionalID)
	if err != nil {
		return nil, err
	}

	duration := fallbackDuration
	if offeringID != nil {
		offering, err := s.loadOffering(ctx, tenantID, *offeringID)
		if err != nil {
			return nil, err
		}
		duration = offering.DurationMinutes
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	return s.avail.Slots(ctx, prof.ID, date, duration, prof.WorkingHours)
}

// TenantBySlug resolves a tenant for the public booking pages.
func (s *Service) TenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.repo.GetTenantBySlug(ctx, slug)
}

func (s *Service) loadProfessional(ctx context.Context, tenantID, id uuid.UUID) (*Professional, error) {
	prof, err := s.repo.GetProfessionalByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProfessionalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load professional: %w", err)
	}
	if prof.TenantID != tenantID {
		return nil, ErrTenantMismatch
	}
	return prof, nil
}

func (s *Service) loadOffering(ctx context.Context, tenantID, id uuid.UUID) (*Offering, error) {
	offering, err := s.repo.GetOfferingByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOfferingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load offering: %w", err)
	}
	if offering.TenantID != tenantID {
		return nil, ErrTenantMismatch
	}
	return offering, nil
}

func (s *Service) locked(ctx context.Context, professionalID uuid.UUID, fn func(ctx context.Context) error) error {
	err := s.locker.WithProfessionalLock(ctx, professionalID, fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrBookingContended
	}
	return err
}
