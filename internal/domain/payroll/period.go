package payroll

import (
	"fmt"
	"time"
)

// Period is a calendar month, both ends inclusive, at UTC midnight.
type Period struct {
	Month       int
	Year        int
	Start       time.Time
	End         time.Time
	WorkingDays int
}

// ResolvePeriod turns month/year into the month's first and last day.
// Working days are calendar days, so February follows the leap-year rule.
func ResolvePeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d outside 1-12", ErrInvalidPeriod, month)
	}
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Period{
		Month:       month,
		Year:        year,
		Start:       start,
		End:         end,
		WorkingDays: end.Day(),
	}, nil
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	d := civilDate(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}

// civilDate drops the clock part and keeps the date as written in t's own location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
