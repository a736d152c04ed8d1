package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentsOnDay fetches a professional's appointments whose start time
// falls within [dayStart, dayEnd). The engine filters canceled rows itself.
type AppointmentsOnDay func(ctx context.Context, professionalID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error)

// Availability decides free/busy state of a professional's calendar and
// enumerates bookable slots. It is stateless and safe for concurrent use;
// the only side effect is the read performed by fetch.
//
// Checks are scoped to the calendar day of the candidate start, so an
// appointment spanning local midnight would not be seen by a check on the
// following day. Appointments are assumed never to span midnight.
type Availability struct {
	fetch AppointmentsOnDay
}

func NewAvailability(fetch AppointmentsOnDay) *Availability {
	return &Availability{fetch: fetch}
}

// overlaps reports whether half-open intervals [s1,e1) and [s2,e2) intersect.
// Back-to-back windows, where one ends exactly when the other begins, do not.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// IsAvailable reports whether [start, end) is free of non-canceled
// appointments for the professional.
func (a *Availability) IsAvailable(ctx context.Context, professionalID uuid.UUID, start, end time.Time) (bool, error) {
	dayStart, dayEnd := dayBounds(start)

	appts, err := a.fetch(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return false, fmt.Errorf("list appointments: %w", err)
	}

	return freeAmong(appts, start, end), nil
}

func freeAmong(appts []Appointment, start, end time.Time) bool {
	for _, appt := range appts {
		if !appt.Occupies() {
			continue
		}
		if overlaps(start, end, appt.StartTime, appt.EndTime) {
			return false
		}
	}
	return true
}

// Slots enumerates free slot start times ("15:04") on the given date,
// stepping through the working window in durationMinutes increments. The
// grid is non-overlapping by construction: slot starts are offset by the
// full duration, and a slot is emitted only when its end fits inside the
// window. Returns nil for a non-positive duration or a degenerate window.
//
// The appointment snapshot is fetched once for the whole day; every grid
// cell is evaluated against it with the same predicate IsAvailable uses.
func (a *Availability) Slots(ctx context.Context, professionalID uuid.UUID, date time.Time, durationMinutes int, schedule WeeklySchedule) ([]string, error) {
	if durationMinutes <= 0 {
		return nil, nil
	}

	open, close, ok := schedule.WindowFor(date)
	if !ok || !open.Before(close) {
		return nil, nil
	}

	dayStart, dayEnd := dayBounds(open)
	appts, err := a.fetch(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	duration := time.Duration(durationMinutes) * time.Minute

	var slots []string
	for t := open; !t.Add(duration).After(close); t = t.Add(duration) {
		if freeAmong(appts, t, t.Add(duration)) {
			slots = append(slots, t.Format("15:04"))
		}
	}
	return slots, nil
}
