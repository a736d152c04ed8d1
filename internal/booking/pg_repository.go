package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// exclusionViolation is the Postgres error code raised by the
// no-overlapping-appointments EXCLUDE constraint. The booking lock already
// serializes writers, so hitting it means a booking raced past a lock expiry;
// it maps to the same unavailable answer the in-memory check gives.
const exclusionViolation = "23P01"

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	return &t, nil
}

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	var workingHours []byte

	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.Active,
		&workingHours,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}

	if len(workingHours) > 0 {
		if err := json.Unmarshal(workingHours, &p.WorkingHours); err != nil {
			return nil, fmt.Errorf("parse working hours for professional %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func scanOffering(row pgx.Row) (*Offering, error) {
	var o Offering
	var description *string

	err := row.Scan(
		&o.ID,
		&o.TenantID,
		&o.Name,
		&description,
		&o.PriceCents,
		&o.DurationMinutes,
		&o.Active,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}

	o.Description = description
	return &o, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var email, phone, notes *string

	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.FullName,
		&email,
		&phone,
		&notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	c.Email = email
	c.Phone = phone
	c.Notes = notes
	return &c, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var customerID, offeringID *uuid.UUID
	var notes *string

	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.ProfessionalID,
		&customerID,
		&offeringID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.CustomerID = customerID
	a.OfferingID = offeringID
	a.Notes = notes
	return &a, nil
}

const appointmentColumns = `id, tenant_id, professional_id, customer_id, offering_id, start_time, end_time, status, notes, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`, slug)
	return scanTenant(row)
}

func (r *PgRepository) GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, active, working_hours, created_at, updated_at
		FROM professionals
		WHERE id = $1
	`, id)
	return scanProfessional(row)
}

func (r *PgRepository) GetOfferingByID(ctx context.Context, id uuid.UUID) (*Offering, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, price_cents, duration_minutes, active, created_at, updated_at
		FROM offerings
		WHERE id = $1
	`, id)
	return scanOffering(row)
}

func (r *PgRepository) GetCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, full_name, email, phone, notes, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id)
	return scanCustomer(row)
}

func (r *PgRepository) GetCustomerByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, full_name, email, phone, notes, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND lower(email) = lower($2)
	`, tenantID, email)
	return scanCustomer(row)
}

func (r *PgRepository) ListAppointmentsForProfessional(ctx context.Context, professionalID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE professional_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, tenant_id, professional_id, customer_id, offering_id, start_time, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.TenantID, appt.ProfessionalID, appt.CustomerID, appt.OfferingID,
		appt.StartTime, appt.EndTime, appt.Status, appt.Notes)

	created, err := scanAppointment(row)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	return created, nil
}

// CreateGuestAppointment inserts a new customer and their appointment in one
// transaction, so a failed appointment insert never leaves an orphan customer.
func (r *PgRepository) CreateGuestAppointment(ctx context.Context, cust Customer, appt Appointment) (*Customer, *Appointment, error) {
	if cust.ID == uuid.Nil {
		cust.ID = uuid.New()
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.CustomerID = &cust.ID

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin guest booking: %w", err)
	}
	defer tx.Rollback(ctx)

	custRow := tx.QueryRow(ctx, `
		INSERT INTO customers (id, tenant_id, full_name, email, phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id, tenant_id, full_name, email, phone, notes, created_at, updated_at
	`, cust.ID, cust.TenantID, cust.FullName, cust.Email, cust.Phone, cust.Notes)

	createdCust, err := scanCustomer(custRow)
	if err != nil {
		return nil, nil, fmt.Errorf("insert guest customer: %w", err)
	}

	apptRow := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, tenant_id, professional_id, customer_id, offering_id, start_time, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.TenantID, appt.ProfessionalID, appt.CustomerID, appt.OfferingID,
		appt.StartTime, appt.EndTime, appt.Status, appt.Notes)

	createdAppt, err := scanAppointment(apptRow)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, nil, ErrSlotUnavailable
		}
		return nil, nil, fmt.Errorf("insert guest appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit guest booking: %w", err)
	}

	return createdCust, createdAppt, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, to)

	return scanAppointment(row)
}
