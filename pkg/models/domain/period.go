package domain

import (
	"fmt"
	"time"
)

const (
	periodLayout    = "2006-01"
	periodDayLayout = "2006-01-02"
	DateLayout      = "2006-01-02"
)

// Period is a calendar month. The zero value is not a valid period.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod accepts "YYYY-MM" or "YYYY-MM-01".
func ParsePeriod(s string) (Period, error) {
	var (
		t   time.Time
		err error
	)
	switch len(s) {
	case len(periodLayout):
		t, err = time.Parse(periodLayout, s)
	case len(periodDayLayout):
		t, err = time.Parse(periodDayLayout, s)
		if err == nil && t.Day() != 1 {
			return Period{}, fmt.Errorf("%w: period %q must be the first day of a month", ErrInvalidArgument, s)
		}
	default:
		err = fmt.Errorf("unexpected length")
	}
	if err != nil {
		return Period{}, fmt.Errorf("%w: period %q, expected YYYY-MM-01", ErrInvalidArgument, s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String renders the period as YYYY-MM, the form used in storage paths and file names.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// FirstDay renders the period as YYYY-MM-01, the form stored in the database.
func (p Period) FirstDay() string {
	return p.String() + "-01"
}

func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// ParseReportDate parses a YYYY-MM-DD report date.
func ParseReportDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: report date %q, expected YYYY-MM-DD", ErrInvalidArgument, s)
	}
	return t, nil
}
