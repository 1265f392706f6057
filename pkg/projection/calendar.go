package projection

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf drops the clock part of t and returns its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds calendar months to a date. The day of month is kept when the target
// month has it, otherwise it is clamped to the last day (Jan 31 + 1 month = Feb 28/29).
func AddMonths(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the number of days from 'from' to 'to'.
// Unix seconds are used because time.Duration saturates after about 292 years.
func DaysBetween(from, to time.Time) float64 {
	return float64(to.Unix()-from.Unix()) / secondsPerDay
}

// ParseDate accepts YYYY-MM-DD, or an RFC 3339 timestamp which is truncated to its date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if date, err := time.Parse(DateLayout, value); err == nil {
		return date, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return DateOf(ts), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
