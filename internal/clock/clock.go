package clock

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Clock provides the current time. Handlers and services take a Clock
// instead of calling time.Now directly so tests can simulate date
// rollover deterministically.
type Clock interface {
	Now() time.Time
}

// System is the real clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Today returns the clock's current calendar date in local time.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// Yesterday returns the calendar date before the clock's current one.
func Yesterday(c Clock) string {
	return c.Now().AddDate(0, 0, -1).Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	return t, nil
}

// EndOfDay returns the last instant of the given calendar date, used to
// compare date-only values against timestamps.
func EndOfDay(date string) (time.Time, error) {
	t, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

// Month identifies one calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Range returns the first and last date of the month, inclusive.
func (m Month) Range() (first, last string) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)
	return start.Format(DateLayout), end.Format(DateLayout)
}

// CurrentMonth returns the month containing the clock's current date.
func CurrentMonth(c Clock) Month {
	now := c.Now()
	return Month{Year: now.Year(), Month: now.Month()}
}

// TrailingMonths returns the last n calendar months ending with the
// current one, oldest first.
func TrailingMonths(c Clock, n int) []Month {
	now := c.Now()
	// Normalize to the first of the month so AddDate cannot skip short months.
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	months := make([]Month, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		months = append(months, Month{Year: m.Year(), Month: m.Month()})
	}
	return months
}
