package service

import (
	"time"
)

// Period is a named reporting window over submission dates. The window is
// inclusive of Start and exclusive of End. Months is the divisor applied to
// volume aggregates so multi-month windows report monthly averages; single
// month windows use Months = 1.
type Period struct {
	Name   string    `json:"name"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Months int       `json:"months"`
}

// Contains reports whether t falls inside the period window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// TrailingQuarter is the 90 days ending at now.
func TrailingQuarter(now time.Time) Period {
	return Period{
		Name:   "Current Quarter",
		Start:  now.AddDate(0, 0, -90),
		End:    now,
		Months: 3,
	}
}

// PreviousQuarter is the 90 days before the trailing quarter.
func PreviousQuarter(now time.Time) Period {
	return Period{
		Name:   "Previous Quarter",
		Start:  now.AddDate(0, 0, -180),
		End:    now.AddDate(0, 0, -90),
		Months: 3,
	}
}

// CalendarMonth is one whole calendar month.
func CalendarMonth(year int, month time.Month, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{
		Name:   start.Format("Jan 2006"),
		Start:  start,
		End:    start.AddDate(0, 1, 0),
		Months: 1,
	}
}

// CurrentMonth is the calendar month containing now.
func CurrentMonth(now time.Time) Period {
	return CalendarMonth(now.Year(), now.Month(), now.Location())
}

// DefaultPeriods is the standard dashboard period set. The windows are
// anchored to the UTC day containing now, so every request within a day
// produces identical periods and cached tables can be shared. The quarter
// windows end at the next midnight so today's intake is included.
func DefaultPeriods(now time.Time) []Period {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)
	return []Period{
		TrailingQuarter(dayEnd),
		PreviousQuarter(dayEnd),
		CurrentMonth(dayStart),
	}
}

// TrailingMonths returns the n calendar months ending with the month
// containing now, oldest first. Used for the volume trend.
func TrailingMonths(now time.Time, n int) []Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	periods := make([]Period, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		periods = append(periods, CalendarMonth(m.Year(), m.Month(), m.Location()))
	}
	return periods
}
