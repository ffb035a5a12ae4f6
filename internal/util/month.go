package util

import (
	"regexp"
	"strings"
	"time"

	"github.com/growlify/growlify-api/internal/domain"
)

// DayMillis is the length of a UTC calendar day in milliseconds
const DayMillis = 86_400_000

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// StartOfMonthUTC returns 00:00:00.000 UTC on the first day of the month
// offsetMonths away from now's UTC month. time.Date normalizes the month
// overflow, so offsets crossing a year boundary roll the year.
func StartOfMonthUTC(now time.Time, offsetMonths int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+time.Month(offsetMonths), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonthUTC returns 23:59:59.999 UTC on the last day of the same month.
// Day 0 of the following month is the last day of the target month.
func EndOfMonthUTC(now time.Time, offsetMonths int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+time.Month(offsetMonths)+1, 0, 23, 59, 59, 999_000_000, time.UTC)
}

// StartOfDayUTC truncates t to midnight UTC of its UTC calendar day
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDateOnlyUTC parses a strict YYYY-MM-DD literal as UTC midnight.
// Impossible calendar dates such as 2026-02-30 are rejected.
func ParseDateOnlyUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !dateOnlyPattern.MatchString(s) {
		return time.Time{}, domain.ErrMalformedDateInput
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.ErrMalformedDateInput
	}
	return t, nil
}

// ParseInstant accepts either an RFC 3339 timestamp or a YYYY-MM-DD date
// (UTC midnight). Used for request query and body dates.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if dateOnlyPattern.MatchString(s) {
		return ParseDateOnlyUTC(s)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, domain.ErrMalformedDateInput
	}
	return t.UTC(), nil
}
