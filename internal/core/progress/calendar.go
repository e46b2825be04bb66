package progress

import (
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// Tier is the colour intensity bucket of a calendar day.
type Tier int

const (
	TierNone Tier = iota
	TierLow
	TierMedium
	TierHigh
	TierVeryHigh
)

var tierNames = [...]string{"none", "low", "medium", "high", "very high"}

func (t Tier) String() string {
	if t < TierNone || t > TierVeryHigh {
		return "unknown"
	}
	return tierNames[t]
}

// TierFor bins count by its intensity relative to maxCount.
func TierFor(count, maxCount int) Tier {
	if count <= 0 {
		return TierNone
	}

	intensity := float64(count) / float64(max(maxCount, 1))
	switch {
	case intensity <= 0.25:
		return TierLow
	case intensity <= 0.5:
		return TierMedium
	case intensity <= 0.75:
		return TierHigh
	default:
		return TierVeryHigh
	}
}

// YearCalendar is a sparse map of daily totals: days without check-ins are absent.
type YearCalendar struct {
	Year     int            `json:"year"`
	Calendar map[string]int `json:"calendar"`
	MaxCount int            `json:"max_count"`
}

// BuildYearCalendar totals check-in values per day of year. Check-ins dated in
// another year or carrying a malformed date are ignored.
func BuildYearCalendar(year int, checkins []*domain.CheckIn) YearCalendar {
	calendar := make(map[string]int)

	for _, c := range checkins {
		day, err := domain.ParseDate(c.Date)
		if err != nil || day.Year() != year {
			continue
		}
		calendar[domain.FormatDate(day)] += c.Value
	}

	return NewYearCalendar(year, calendar)
}

// NewYearCalendar wraps precomputed totals, e.g. from a cache.
func NewYearCalendar(year int, calendar map[string]int) YearCalendar {
	if calendar == nil {
		calendar = make(map[string]int)
	}

	maxCount := 0
	for _, count := range calendar {
		maxCount = max(maxCount, count)
	}

	return YearCalendar{Year: year, Calendar: calendar, MaxCount: maxCount}
}

func (c YearCalendar) Count(date string) int {
	return c.Calendar[date]
}

func (c YearCalendar) Tier(date string) Tier {
	return TierFor(c.Calendar[date], c.MaxCount)
}

func (c YearCalendar) Total() int {
	total := 0
	for _, count := range c.Calendar {
		total += count
	}
	return total
}

type Cell struct {
	Date  string `json:"date"`
	Day   int    `json:"day"`
	Count int    `json:"count"`
	Tier  Tier   `json:"tier"`
}

type Month struct {
	Month         int    `json:"month"`
	Name          string `json:"name"`
	LeadingBlanks int    `json:"leading_blanks"`
	Days          []Cell `json:"days"`
}

// Layout lays the year out as twelve month grids. LeadingBlanks is the weekday
// of the 1st (Sunday = 0), the number of empty cells before it in a Sunday-first week row.
func (c YearCalendar) Layout() []Month {
	months := make([]Month, 0, 12)

	for m := time.January; m <= time.December; m++ {
		first := time.Date(c.Year, m, 1, 0, 0, 0, 0, time.UTC)
		daysIn := first.AddDate(0, 1, -1).Day()

		month := Month{
			Month:         int(m),
			Name:          m.String(),
			LeadingBlanks: int(first.Weekday()),
			Days:          make([]Cell, 0, daysIn),
		}

		for d := 1; d <= daysIn; d++ {
			date := domain.FormatDate(first.AddDate(0, 0, d-1))
			count := c.Calendar[date]
			month.Days = append(month.Days, Cell{
				Date:  date,
				Day:   d,
				Count: count,
				Tier:  TierFor(count, c.MaxCount),
			})
		}

		months = append(months, month)
	}

	return months
}

// YearBounds returns the first and last date of year.
func YearBounds(year int) (string, string) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return domain.FormatDate(start), domain.FormatDate(end)
}

func DaysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
