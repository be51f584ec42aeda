package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar day as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDay compares calendar days in loc, ignoring time of day.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// DayRange maps a timestamp range onto the calendar days it touches:
// [day(checkIn), day(checkOut)), widened to one day when both fall on the same day.
func DayRange(checkIn, checkOut time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(checkIn, loc)
	end := StartOfDay(checkOut, loc)
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	return start, end
}
