package booking

import (
	"fmt"
	"strings"
	"time"
)

// civilDate drops the clock and zone, keeping the calendar date as UTC midnight.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. Timestamps are
// converted to loc before the calendar date is taken.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidDate, raw)
	}
	return civilDate(ts.In(loc)), nil
}

// ParseOptionalDate is ParseDate for optional query parameters; an empty
// value yields nil.
func ParseOptionalDate(raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := ParseDate(raw, loc)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// today returns the current calendar date in loc.
func today(now time.Time, loc *time.Location) time.Time {
	return civilDate(now.In(loc))
}

// validateBookingDate enforces today <= date <= today+maxAdvanceDays.
func validateBookingDate(date, now time.Time, loc *time.Location, maxAdvanceDays int) error {
	day := civilDate(date)
	first := today(now, loc)
	last := first.AddDate(0, 0, maxAdvanceDays)

	if day.Before(first) {
		return fmt.Errorf("%w: cannot book for past dates", ErrInvalidDate)
	}
	if day.After(last) {
		return fmt.Errorf("%w: cannot book more than %d days in advance", ErrInvalidDate, maxAdvanceDays)
	}
	return nil
}

// hoursUntil returns the hours from now until local midnight at the start
// of the booking date.
func hoursUntil(date, now time.Time, loc *time.Location) float64 {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start.Sub(now).Hours()
}
