package util

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, a plain date and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// LoadLocation falls back to UTC for an empty or unknown zone name.
func LoadLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayOpen returns local midnight for now in loc.
func DayOpen(loc *time.Location, now time.Time) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// MonthOpen returns local midnight on the first of now's month in loc.
func MonthOpen(loc *time.Location, now time.Time) time.Time {
	y, m, _ := now.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// SameDay checks if a and b fall on the same local day in loc.
func SameDay(loc *time.Location, a, b time.Time) bool {
	return DayOpen(loc, a).Equal(DayOpen(loc, b))
}

// SameMonth checks if a and b fall in the same local month in loc.
func SameMonth(loc *time.Location, a, b time.Time) bool {
	return MonthOpen(loc, a).Equal(MonthOpen(loc, b))
}

// DaysUntil counts calendar days from now to target in loc. Negative when target is past.
func DaysUntil(loc *time.Location, now, target time.Time) int {
	from := DayOpen(loc, now)
	y, m, d := target.Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, loc)
	// DST days are 23 or 25 hours long
	return int(math.Round(to.Sub(from).Hours() / 24))
}
