package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookline/bookline/internal/booking"
)

func createAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}

		offeringID, err := uuid.Parse(req.OfferingID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_offering_id", "offering_id must be a valid UUID")
			return
		}

		var customerID *uuid.UUID
		if req.CustomerID != nil {
			id, err := uuid.Parse(*req.CustomerID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_customer_id", "customer_id must be a valid UUID")
				return
			}
			customerID = &id
		}

		start, err := parseTime(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be YYYY-MM-DDTHH:MM:SS")
			return
		}
		end, err := parseTime(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", "end_time must be YYYY-MM-DDTHH:MM:SS")
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), tenantID, booking.CreateAppointmentInput{
			ProfessionalID: professionalID,
			OfferingID:     offeringID,
			CustomerID:     customerID,
			StartTime:      start,
			EndTime:        end,
			Notes:          req.Notes,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func guestAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_tenant_id", "tenant id must be a valid UUID")
			return
		}

		var req GuestBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}

		offeringID, err := uuid.Parse(req.OfferingID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_offering_id", "offering_id must be a valid UUID")
			return
		}

		start, err := parseTime(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be YYYY-MM-DDTHH:MM:SS")
			return
		}

		appt, err := svc.CreateGuestAppointment(r.Context(), tenantID, booking.GuestBookingInput{
			CustomerName:   req.CustomerName,
			CustomerEmail:  req.CustomerEmail,
			CustomerPhone:  req.CustomerPhone,
			ProfessionalID: professionalID,
			OfferingID:     offeringID,
			StartTime:      start,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func blockTimeHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}

		var req BlockTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}

		start, err := parseTime(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be YYYY-MM-DDTHH:MM:SS")
			return
		}
		end, err := parseTime(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", "end_time must be YYYY-MM-DDTHH:MM:SS")
			return
		}

		appt, err := svc.BlockTime(r.Context(), tenantID, booking.BlockTimeInput{
			ProfessionalID: professionalID,
			StartTime:      start,
			EndTime:        end,
			Notes:          req.Notes,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := svc.CancelAppointment(r.Context(), id); err != nil {
			handleBookingError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func availableSlotsHandler(svc *booking.Service, defaultDuration int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := tenantFromRequest(w, r)
		if !ok {
			return
		}
		serveSlots(w, r, svc, tenantID, defaultDuration, false)
	}
}

func publicSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_tenant_id", "tenant id must be a valid UUID")
			return
		}
		serveSlots(w, r, svc, tenantID, 0, true)
	}
}

// serveSlots handles both the authenticated and the public slot listing.
// The public variant requires an offering so the duration can never be
// caller-chosen.
func serveSlots(w http.ResponseWriter, r *http.Request, svc *booking.Service, tenantID uuid.UUID, defaultDuration int, offeringRequired bool) {
	q := r.URL.Query()

	professionalID, err := uuid.Parse(q.Get("professional_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
		return
	}

	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	var offeringID *uuid.UUID
	if raw := q.Get("offering_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_offering_id", "offering_id must be a valid UUID")
			return
		}
		offeringID = &id
	} else if offeringRequired {
		writeError(w, http.StatusBadRequest, "missing_offering_id", "offering_id is required")
		return
	}

	duration := defaultDuration
	if raw := q.Get("duration"); raw != "" {
		d, err := parseDurationMinutes(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be a positive integer of minutes")
			return
		}
		duration = d
	}

	slots, err := svc.AvailableSlots(r.Context(), tenantID, professionalID, date, offeringID, duration)
	if err != nil {
		handleBookingError(w, err)
		return
	}
	if slots == nil {
		slots = []string{}
	}

	writeJSON(w, http.StatusOK, SlotsResponse{
		ProfessionalID: professionalID,
		Date:           date.Format("2006-01-02"),
		Slots:          slots,
	})
}

func tenantBySlugHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := svc.TenantBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TenantResponse{
			ID:   tenant.ID,
			Name: tenant.Name,
			Slug: tenant.Slug,
		})
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrTenantNotFound),
		errors.Is(err, booking.ErrProfessionalNotFound),
		errors.Is(err, booking.ErrOfferingNotFound),
		errors.Is(err, booking.ErrCustomerNotFound),
		errors.Is(err, booking.ErrAppointmentNotFound),
		errors.Is(err, booking.ErrTenantMismatch):
		// Tenant mismatches look identical to missing rows from the outside.
		writeError(w, http.StatusNotFound, "not_found", "resource not found or inaccessible")
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "selected time is no longer available")
	case errors.Is(err, booking.ErrBookingContended):
		writeError(w, http.StatusConflict, "booking_contended", "professional is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrInvalidTimeRange),
		errors.Is(err, booking.ErrInvalidDuration),
		errors.Is(err, booking.ErrGuestEmailMissing):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func toAppointmentResponse(appt *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             appt.ID,
		TenantID:       appt.TenantID,
		ProfessionalID: appt.ProfessionalID,
		CustomerID:     appt.CustomerID,
		OfferingID:     appt.OfferingID,
		StartTime:      formatTime(appt.StartTime),
		EndTime:        formatTime(appt.EndTime),
		Status:         string(appt.Status),
		Notes:          appt.Notes,
	}
}
