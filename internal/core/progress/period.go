// Package progress turns goals and check-in snapshots into progress summaries,
// year calendars and day details. Every function is pure: callers fetch the
// data, the package only computes over it.
package progress

import (
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const (
	LabelToday     = "today"
	LabelThisWeek  = "this week"
	LabelThisMonth = "this month"
	LabelThisYear  = "this year"
	LabelLogged    = "logged"
)

// Period is an inclusive range of calendar days. An unbounded period has zero
// Start and End and contains every day.
type Period struct {
	Start     time.Time
	End       time.Time
	Label     string
	Unbounded bool
}

// ResolvePeriod returns the period of freq that contains the calendar day of ref.
// Weeks start on Sunday.
func ResolvePeriod(freq domain.Frequency, ref time.Time) (Period, error) {
	day := calendarDay(ref)

	switch freq {
	case domain.FrequencyDaily:
		return Period{Start: day, End: day, Label: LabelToday}, nil

	case domain.FrequencyWeekly:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return Period{Start: start, End: start.AddDate(0, 0, 6), Label: LabelThisWeek}, nil

	case domain.FrequencyMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Period{Start: start, End: start.AddDate(0, 1, -1), Label: LabelThisMonth}, nil

	case domain.FrequencyYearly:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return Period{Start: start, End: end, Label: LabelThisYear}, nil

	case domain.FrequencyCustom:
		return Period{Label: LabelLogged, Unbounded: true}, nil
	}

	return Period{}, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, freq)
}

// Contains reports whether the calendar day of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.Unbounded {
		return true
	}
	day := calendarDay(t)
	return !day.Before(p.Start) && !day.After(p.End)
}

// Bounds returns the period edges as dates, or two empty strings when unbounded.
func (p Period) Bounds() (string, string) {
	if p.Unbounded {
		return "", ""
	}
	return domain.FormatDate(p.Start), domain.FormatDate(p.End)
}

func (p Period) Days() int {
	if p.Unbounded {
		return 0
	}
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// calendarDay drops the clock and the zone while keeping the day as seen in t's location.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
