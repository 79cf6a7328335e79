package session

import (
	"fmt"
	"strings"
	"time"

	"little-toeic/internal/problems"
)

// ParseDate parses a YYYY-MM-DD calendar day in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(problems.DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", problems.ErrInvalidDate, value)
	}
	return parsed, nil
}

// ClampDate keeps date navigation out of the future.
func ClampDate(requested, today time.Time) time.Time {
	if dayAfter(requested, today) {
		return today
	}
	return requested
}

// ShiftDate moves current by days and clamps the result to today.
func ShiftDate(current time.Time, days int, today time.Time) time.Time {
	return ClampDate(current.AddDate(0, 0, days), today)
}

func FormatDate(date time.Time) string {
	return date.Format(problems.DateLayout)
}

func dayAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
