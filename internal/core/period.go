package core

import (
	"fmt"
	"time"
)

// Period is a closed date interval [Start, End].
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a period and rejects inverted ranges with ErrInvalidRange.
func NewPeriod(start, end time.Time) (Period, error) {
	if start.After(end) {
		return Period{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return Period{Start: start, End: end}, nil
}

// Contains reports whether t falls within the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// MonthWindow returns the full calendar month [yyyy-mm-01 00:00:00,
// yyyy-mm-last 23:59:59] in UTC.
func MonthWindow(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the following month normalizes to the last day of this one.
	end := time.Date(year, month+1, 0, 23, 59, 59, 0, time.UTC)
	return Period{Start: start, End: end}
}

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Key renders the month as "yyyy-mm".
func (ym YearMonth) Key() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Window returns the month's full calendar window.
func (ym YearMonth) Window() Period {
	return MonthWindow(ym.Year, ym.Month)
}

// MonthsEndingAt returns the n calendar months ending at the month of ref,
// oldest first. Months wrap across year boundaries with the year adjusted.
func MonthsEndingAt(ref time.Time, n int) []YearMonth {
	if n <= 0 {
		return nil
	}
	months := make([]YearMonth, 0, n)
	for i := n - 1; i >= 0; i-- {
		// time.Date normalizes out-of-range months, so January minus one
		// lands on December of the previous year.
		t := time.Date(ref.Year(), ref.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		months = append(months, YearMonth{Year: t.Year(), Month: t.Month()})
	}
	return months
}
