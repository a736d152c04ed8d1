package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func fixedFetch(appts []Appointment) AppointmentsOnDay {
	return func(ctx context.Context, professionalID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error) {
		var out []Appointment
		for _, a := range appts {
			if a.ProfessionalID != professionalID {
				continue
			}
			if a.StartTime.Before(dayStart) || !a.StartTime.Before(dayEnd) {
				continue
			}
			out = append(out, a)
		}
		return out, nil
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"contained", at(10, 0), at(11, 0), at(10, 15), at(10, 45), true},
		{"partial front", at(9, 30), at(10, 30), at(10, 0), at(11, 0), true},
		{"partial back", at(10, 30), at(11, 30), at(10, 0), at(11, 0), true},
		{"back to back before", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"back to back after", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Fatalf("overlaps(%v,%v,%v,%v) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
			// The predicate is symmetric in its two intervals.
			if got := overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Fatalf("overlaps is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestIsAvailable_EmptyCalendar(t *testing.T) {
	profID := uuid.New()
	avail := NewAvailability(fixedFetch(nil))

	free, err := avail.IsAvailable(context.Background(), profID, at(10, 0), at(11, 0))
	if err != nil {
		t.Fatalf("IsAvailable error: %v", err)
	}
	if !free {
		t.Fatal("expected empty calendar to be available")
	}
}

func TestIsAvailable_ConflictAndCanceled(t *testing.T) {
	profID := uuid.New()
	otherID := uuid.New()

	appts := []Appointment{
		{ID: uuid.New(), ProfessionalID: profID, StartTime: at(10, 0), EndTime: at(11, 0), Status: StatusScheduled},
		{ID: uuid.New(), ProfessionalID: profID, StartTime: at(14, 0), EndTime: at(15, 0), Status: StatusCanceled},
		{ID: uuid.New(), ProfessionalID: otherID, StartTime: at(12, 0), EndTime: at(13, 0), Status: StatusScheduled},
	}
	avail := NewAvailability(fixedFetch(appts))
	ctx := context.Background()

	free, err := avail.IsAvailable(ctx, profID, at(10, 30), at(10, 45))
	if err != nil {
		t.Fatalf("IsAvailable error: %v", err)
	}
	if free {
		t.Fatal("expected conflict with scheduled appointment")
	}

	// Canceled rows free the slot.
	free, err = avail.IsAvailable(ctx, profID, at(14, 0), at(15, 0))
	if err != nil {
		t.Fatalf("IsAvailable error: %v", err)
	}
	if !free {
		t.Fatal("expected canceled appointment to free its window")
	}

	// Another professional's bookings never conflict.
	free, err = avail.IsAvailable(ctx, profID, at(12, 0), at(13, 0))
	if err != nil {
		t.Fatalf("IsAvailable error: %v", err)
	}
	if !free {
		t.Fatal("expected other professional's appointment to be ignored")
	}
}

func TestIsAvailable_BackToBack(t *testing.T) {
	profID := uuid.New()
	appts := []Appointment{
		{ID: uuid.New(), ProfessionalID: profID, StartTime: at(10, 0), EndTime: at(10, 30), Status: StatusScheduled},
	}
	avail := NewAvailability(fixedFetch(appts))

	free, err := avail.IsAvailable(context.Background(), profID, at(10, 30), at(11, 0))
	if err != nil {
		t.Fatalf("IsAvailable error: %v", err)
	}
	if !free {
		t.Fatal("back-to-back window must not conflict")
	}
}

func TestIsAvailable_BlockedTimeConflicts(t *testing.T) {
	profID := uuid.New()
	appts := []Appointment{
		{ID: uuid.New(), ProfessionalID: profID, StartTime: at(13, 0), EndTime: at(14, 0), Status: StatusBlocked},
	}
	avail := NewAvailability(fixedFetch(appts))

	free, err := avail.IsAvailable(context.Background(), profID, at(13, 30), at(14, 0))
	if err != nil {
		t.Fatalf("IsAvailable error: %v", err)
	}
	if free {
		t.Fatal("blocked time must hold its window")
	}
}

func TestIsAvailable_FetchError(t *testing.T) {
	wantErr := errors.New("boom")
	avail := NewAvailability(func(ctx context.Context, professionalID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error) {
		return nil, wantErr
	})

	_, err := avail.IsAvailable(context.Background(), uuid.New(), at(10, 0), at(11, 0))
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSlots_EmptyCalendarDefaultWindow(t *testing.T) {
	profID := uuid.New()
	avail := NewAvailability(fixedFetch(nil))
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	slots, err := avail.Slots(context.Background(), profID, date, 30, nil)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}

	// 09:00-18:00 in 30 minute steps is exactly 18 slots.
	if len(slots) != 18 {
		t.Fatalf("len(slots) = %d, want 18", len(slots))
	}
	if slots[0] != "09:00" {
		t.Fatalf("first slot = %q, want %q", slots[0], "09:00")
	}
	if slots[len(slots)-1] != "17:30" {
		t.Fatalf("last slot = %q, want %q", slots[len(slots)-1], "17:30")
	}
	for i := 1; i < len(slots); i++ {
		prev, _ := time.Parse("15:04", slots[i-1])
		cur, _ := time.Parse("15:04", slots[i])
		if cur.Sub(prev) != 30*time.Minute {
			t.Fatalf("slots %q -> %q are not 30 minutes apart", slots[i-1], slots[i])
		}
	}
}

func TestSlots_ExcludesBookedCells(t *testing.T) {
	profID := uuid.New()
	appts := []Appointment{
		{ID: uuid.New(), ProfessionalID: profID, StartTime: at(10, 0), EndTime: at(11, 0), Status: StatusScheduled},
	}
	avail := NewAvailability(fixedFetch(appts))
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	slots, err := avail.Slots(context.Background(), profID, date, 30, nil)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}

	got := make(map[string]bool, len(slots))
	for _, s := range slots {
		got[s] = true
	}

	for _, absent := range []string{"10:00", "10:30"} {
		if got[absent] {
			t.Fatalf("slot %q should be excluded by the 10:00-11:00 booking", absent)
		}
	}
	for _, present := range []string{"09:30", "11:00"} {
		if !got[present] {
			t.Fatalf("slot %q should still be present", present)
		}
	}
	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
}

func TestSlots_DurationNotDividingWindow(t *testing.T) {
	profID := uuid.New()
	avail := NewAvailability(fixedFetch(nil))
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// 50 minute slots in a 9 hour window: last start whose end fits is 17:00.
	slots, err := avail.Slots(context.Background(), profID, date, 50, nil)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	last, _ := time.Parse("15:04", slots[len(slots)-1])
	if last.Hour() > 17 || (last.Hour() == 17 && last.Minute() > 10) {
		t.Fatalf("last slot %q would run past the window close", slots[len(slots)-1])
	}
}

func TestSlots_DegenerateInputs(t *testing.T) {
	profID := uuid.New()
	avail := NewAvailability(fixedFetch(nil))
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) // a Tuesday

	slots, err := avail.Slots(context.Background(), profID, date, 0, nil)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("duration 0: len(slots) = %d, want 0", len(slots))
	}

	slots, err = avail.Slots(context.Background(), profID, date, -15, nil)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("negative duration: len(slots) = %d, want 0", len(slots))
	}

	degenerate := WeeklySchedule{{Day: "tuesday", Open: "18:00", Close: "09:00"}}
	slots, err = avail.Slots(context.Background(), profID, date, 30, degenerate)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("degenerate window: len(slots) = %d, want 0", len(slots))
	}
}

func TestSlots_ScheduleOverridesDefault(t *testing.T) {
	profID := uuid.New()
	avail := NewAvailability(fixedFetch(nil))
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) // a Tuesday

	schedule := WeeklySchedule{{Day: "tuesday", Open: "12:00", Close: "14:00"}}
	slots, err := avail.Slots(context.Background(), profID, date, 60, schedule)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}
	if len(slots) != 2 || slots[0] != "12:00" || slots[1] != "13:00" {
		t.Fatalf("slots = %v, want [12:00 13:00]", slots)
	}

	// No entry for the weekday means closed that day.
	wednesday := date.AddDate(0, 0, 1)
	slots, err = avail.Slots(context.Background(), profID, wednesday, 60, schedule)
	if err != nil {
		t.Fatalf("Slots error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("closed day: len(slots) = %d, want 0", len(slots))
	}
}
