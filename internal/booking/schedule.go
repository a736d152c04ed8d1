package booking

import (
	"strings"
	"time"
)

// Default working window applied when a professional has no schedule configured.
const (
	DefaultOpenHour  = 9
	DefaultCloseHour = 18
)

// DayHours is one weekday's bookable window. Open and Close are local
// times of day in "15:04" form.
type DayHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WeeklySchedule is a professional's configured working hours, stored as
// JSONB and treated here as already-parsed input. A nil schedule means the
// default window applies on every day; a non-nil schedule with no entry for
// a given weekday means the professional is closed that day.
type WeeklySchedule []DayHours

// WindowFor resolves the bookable window on the calendar day of date,
// anchored to date's location. ok is false when the professional does not
// work that day or the configured entry cannot be parsed.
func (s WeeklySchedule) WindowFor(date time.Time) (open, close time.Time, ok bool) {
	year, month, day := date.Date()
	loc := date.Location()

	if s == nil {
		open = time.Date(year, month, day, DefaultOpenHour, 0, 0, 0, loc)
		close = time.Date(year, month, day, DefaultCloseHour, 0, 0, 0, loc)
		return open, close, true
	}

	weekday := strings.ToLower(date.Weekday().String())
	for _, dh := range s {
		if !strings.EqualFold(dh.Day, weekday) {
			continue
		}
		openTOD, err := time.Parse("15:04", dh.Open)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		closeTOD, err := time.Parse("15:04", dh.Close)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		open = time.Date(year, month, day, openTOD.Hour(), openTOD.Minute(), 0, 0, loc)
		close = time.Date(year, month, day, closeTOD.Hour(), closeTOD.Minute(), 0, 0, loc)
		return open, close, true
	}

	return time.Time{}, time.Time{}, false
}
