package progress

import (
	"fmt"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const (
	weeksPerYear  = 52
	monthsPerYear = 12
)

// GoalYear is one goal's heatmap and completion over a whole year.
type GoalYear struct {
	GoalID     string           `json:"goal_id"`
	GoalTitle  string           `json:"goal_title"`
	CategoryID string           `json:"category_id"`
	Frequency  domain.Frequency `json:"frequency"`
	Year       int              `json:"year"`
	Days       map[string]int   `json:"days"`
	ActiveDays int              `json:"active_days"`
	Total      int              `json:"total"`
	Completion int              `json:"completion"`
}

// YearProgress measures a goal over a full year. Daily and custom goals are
// scored by the share of days with at least one check-in; weekly, monthly and
// yearly goals by the summed value against the target scaled to a year.
func YearProgress(goal *domain.Goal, checkins []*domain.CheckIn, year int) (GoalYear, error) {
	if !goal.Frequency.Valid() {
		return GoalYear{}, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, goal.Frequency)
	}

	own := make([]*domain.CheckIn, 0, len(checkins))
	for _, c := range checkins {
		if c.GoalID == goal.ID {
			own = append(own, c)
		}
	}
	cal := BuildYearCalendar(year, own)

	gy := GoalYear{
		GoalID:     goal.ID,
		GoalTitle:  goal.Title,
		CategoryID: goal.CategoryID,
		Frequency:  goal.Frequency,
		Year:       year,
		Days:       cal.Calendar,
		ActiveDays: len(cal.Calendar),
		Total:      cal.Total(),
	}

	var expected int
	switch goal.Frequency {
	case domain.FrequencyDaily, domain.FrequencyCustom:
		gy.Completion = Percentage(gy.ActiveDays, DaysInYear(year))
		return gy, nil
	case domain.FrequencyWeekly:
		expected = weeksPerYear * goal.TargetValue
	case domain.FrequencyMonthly:
		expected = monthsPerYear * goal.TargetValue
	case domain.FrequencyYearly:
		expected = goal.TargetValue
	}

	if goal.TargetValue <= 0 {
		return GoalYear{}, fmt.Errorf("%w: goal %s has target %d", domain.ErrInvalidTarget, goal.ID, goal.TargetValue)
	}

	gy.Completion = Percentage(gy.Total, expected)
	return gy, nil
}
