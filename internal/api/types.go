package api

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps cross the wire as timezone-naive local date-times,
// "2006-01-02T15:04:05", minute precision expected.
const timeLayout = "2006-01-02T15:04:05"

type CreateAppointmentRequest struct {
	ProfessionalID string  `json:"professional_id"`
	OfferingID     string  `json:"offering_id"`
	CustomerID     *string `json:"customer_id,omitempty"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Notes          *string `json:"notes,omitempty"`
}

type GuestBookingRequest struct {
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone,omitempty"`
	ProfessionalID string `json:"professional_id"`
	OfferingID     string `json:"offering_id"`
	StartTime      string `json:"start_time"`
}

type BlockTimeRequest struct {
	ProfessionalID string  `json:"professional_id"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Notes          *string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	TenantID       uuid.UUID  `json:"tenant_id"`
	ProfessionalID uuid.UUID  `json:"professional_id"`
	CustomerID     *uuid.UUID `json:"customer_id,omitempty"`
	OfferingID     *uuid.UUID `json:"offering_id,omitempty"`
	StartTime      string     `json:"start_time"`
	EndTime        string     `json:"end_time"`
	Status         string     `json:"status"`
	Notes          *string    `json:"notes,omitempty"`
}

type TenantResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type SlotsResponse struct {
	ProfessionalID uuid.UUID `json:"professional_id"`
	Date           string    `json:"date"`
	Slots          []string  `json:"slots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
