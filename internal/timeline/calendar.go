package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the calendar period represented by one timeline column.
type Unit string

const (
	UnitMonth Unit = "month"
	UnitWeek  Unit = "week"
)

// ParseUnit accepts "month"/"week" (case-insensitive, plural allowed).
func ParseUnit(s string) (Unit, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "month":
		return UnitMonth, nil
	case "week":
		return UnitWeek, nil
	}
	return "", fmt.Errorf("unknown timeline unit %q (want month or week)", s)
}

// Day truncates t to its civil date at UTC midnight. Time-of-day and zone
// offsets never take part in timeline arithmetic.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsValidDate reports whether t is usable as a calendar date.
func IsValidDate(t time.Time) bool {
	return !t.IsZero()
}

// DaysBetween returns the whole number of calendar days from a to b.
// The result is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// AddDays returns the civil date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// StartOfPeriod floors t to the first day of its month, or to the Monday of
// its ISO week.
func StartOfPeriod(t time.Time, unit Unit) time.Time {
	d := Day(t)
	if unit == UnitWeek {
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	}
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysInPeriod returns the actual length in days of the month or week that
// contains t.
func DaysInPeriod(t time.Time, unit Unit) int {
	if unit == UnitWeek {
		return 7
	}
	d := Day(t)
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddPeriods adds n months or weeks to t. Month addition keeps the day of
// month, clamped to the length of the target month, so Jan 31 + 1 month is
// the last day of February rather than a day in March.
func AddPeriods(t time.Time, n int, unit Unit) time.Time {
	d := Day(t)
	if unit == UnitWeek {
		return d.AddDate(0, 0, 7*n)
	}
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day()
	if last := DaysInPeriod(first, UnitMonth); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// periodsBetween counts whole periods from the period containing a to the
// period containing b.
func periodsBetween(a, b time.Time, unit Unit) int {
	pa, pb := StartOfPeriod(a, unit), StartOfPeriod(b, unit)
	if unit == UnitWeek {
		return DaysBetween(pa, pb) / 7
	}
	return (pb.Year()-pa.Year())*12 + int(pb.Month()) - int(pa.Month())
}

// dayOfPeriod is the zero-based index of t within its containing period.
func dayOfPeriod(t time.Time, unit Unit) int {
	return DaysBetween(StartOfPeriod(t, unit), t)
}
