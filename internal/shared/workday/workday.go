// Package workday counts leave days. Only Saturdays and Sundays are
// excluded; there is no public holiday calendar.
package workday

import (
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// CountBusinessDays counts Monday to Friday dates in [start, end], both
// ends inclusive. It returns zero when start is after end.
func CountBusinessDays(start, end time.Time) decimal.Decimal {
	start, end = DateOf(start), DateOf(end)
	if start.After(end) {
		return decimal.Zero
	}

	var days int64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			days++
		}
	}
	return decimal.NewFromInt(days)
}
