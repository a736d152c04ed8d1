package booking

import (
	"testing"
	"time"
)

func TestWindowFor_NilScheduleUsesDefault(t *testing.T) {
	var s WeeklySchedule
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) // a Saturday

	open, close, ok := s.WindowFor(date)
	if !ok {
		t.Fatal("expected default window")
	}
	if open.Hour() != DefaultOpenHour || open.Minute() != 0 {
		t.Fatalf("open = %v, want %02d:00", open, DefaultOpenHour)
	}
	if close.Hour() != DefaultCloseHour || close.Minute() != 0 {
		t.Fatalf("close = %v, want %02d:00", close, DefaultCloseHour)
	}
	if !open.Truncate(24 * time.Hour).Equal(date) {
		t.Fatalf("open %v is not anchored to %v", open, date)
	}
}

func TestWindowFor_ConfiguredDay(t *testing.T) {
	s := WeeklySchedule{
		{Day: "monday", Open: "08:30", Close: "16:45"},
		{Day: "Tuesday", Open: "10:00", Close: "14:00"},
	}

	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	open, close, ok := s.WindowFor(monday)
	if !ok {
		t.Fatal("expected monday window")
	}
	if open.Hour() != 8 || open.Minute() != 30 {
		t.Fatalf("open = %v, want 08:30", open)
	}
	if close.Hour() != 16 || close.Minute() != 45 {
		t.Fatalf("close = %v, want 16:45", close)
	}

	// Day matching is case-insensitive.
	tuesday := monday.AddDate(0, 0, 1)
	if _, _, ok := s.WindowFor(tuesday); !ok {
		t.Fatal("expected tuesday window despite capitalized day name")
	}
}

func TestWindowFor_MissingDayMeansClosed(t *testing.T) {
	s := WeeklySchedule{
		{Day: "monday", Open: "09:00", Close: "18:00"},
	}
	sunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	if _, _, ok := s.WindowFor(sunday); ok {
		t.Fatal("schedule without a sunday entry should be closed on sunday")
	}
}

func TestWindowFor_UnparseableEntry(t *testing.T) {
	s := WeeklySchedule{
		{Day: "monday", Open: "9am", Close: "18:00"},
	}
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	if _, _, ok := s.WindowFor(monday); ok {
		t.Fatal("unparseable open time should yield no window")
	}
}
