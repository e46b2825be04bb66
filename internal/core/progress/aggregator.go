package progress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// Summary is the progress of one goal within its current period.
// Percentage is nil for custom goals and is never clamped.
type Summary struct {
	GoalID       string           `json:"goal_id"`
	GoalTitle    string           `json:"goal_title"`
	CategoryID   string           `json:"category_id"`
	Frequency    domain.Frequency `json:"frequency"`
	CurrentValue int              `json:"current_value"`
	TargetValue  int              `json:"target_value,omitempty"`
	Percentage   *int             `json:"percentage,omitempty"`
	PeriodLabel  string           `json:"period_label"`
	PeriodStart  string           `json:"period_start,omitempty"`
	PeriodEnd    string           `json:"period_end,omitempty"`
}

// DisplayPercentage clamps the percentage into [0, 100] for progress bars.
func (s Summary) DisplayPercentage() int {
	if s.Percentage == nil {
		return 0
	}
	return max(0, min(100, *s.Percentage))
}

// Completed reports whether the target of the current period has been reached.
func (s Summary) Completed() bool {
	return s.Percentage != nil && *s.Percentage >= 100
}

// ComputeProgress sums the values of the goal's check-ins dated within the
// period that contains ref. Every check-in counts, including several on the same day.
func ComputeProgress(goal *domain.Goal, checkins []*domain.CheckIn, ref time.Time) (Summary, error) {
	period, err := ResolvePeriod(goal.Frequency, ref)
	if err != nil {
		return Summary{}, err
	}

	if goal.Frequency.HasTarget() && goal.TargetValue <= 0 {
		return Summary{}, fmt.Errorf("%w: goal %s has target %d", domain.ErrInvalidTarget, goal.ID, goal.TargetValue)
	}

	current := 0
	for _, c := range checkins {
		if c.GoalID != goal.ID {
			continue
		}
		day, err := domain.ParseDate(c.Date)
		if err != nil {
			continue
		}
		if period.Contains(day) {
			current += c.Value
		}
	}

	start, end := period.Bounds()
	summary := Summary{
		GoalID:       goal.ID,
		GoalTitle:    goal.Title,
		CategoryID:   goal.CategoryID,
		Frequency:    goal.Frequency,
		CurrentValue: current,
		PeriodLabel:  period.Label,
		PeriodStart:  start,
		PeriodEnd:    end,
	}

	if goal.Frequency.HasTarget() {
		pct := Percentage(current, goal.TargetValue)
		summary.TargetValue = goal.TargetValue
		summary.Percentage = &pct
	}

	return summary, nil
}

// Percentage returns round(current/target*100), rounding half away from zero.
// A non-positive target yields 0.
func Percentage(current, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(target) * 100))
}

// SkippedGoal records a goal left out of a grouping and why.
type SkippedGoal struct {
	GoalID    string `json:"goal_id"`
	GoalTitle string `json:"goal_title"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

type FrequencyGroup struct {
	Frequency domain.Frequency `json:"frequency"`
	Goals     []Summary        `json:"goals"`
}

type GroupedProgress struct {
	ByFrequency map[domain.Frequency][]Summary
	Skipped     []SkippedGoal
}

// Ordered returns the non-empty groups in display order.
func (g GroupedProgress) Ordered() []FrequencyGroup {
	groups := make([]FrequencyGroup, 0, len(g.ByFrequency))
	for _, f := range domain.Frequencies {
		if goals, ok := g.ByFrequency[f]; ok && len(goals) > 0 {
			groups = append(groups, FrequencyGroup{Frequency: f, Goals: goals})
		}
	}
	return groups
}

// GroupProgressByFrequency computes one summary per active goal and buckets them by
// frequency, preserving input order inside each bucket. Goals whose frequency or
// target is invalid are skipped and reported instead of failing the whole grouping.
func GroupProgressByFrequency(goals []*domain.Goal, checkinsByGoal map[string][]*domain.CheckIn, ref time.Time) GroupedProgress {
	result := GroupedProgress{
		ByFrequency: make(map[domain.Frequency][]Summary),
	}

	for _, g := range goals {
		if !g.Active {
			continue
		}

		summary, err := ComputeProgress(g, checkinsByGoal[g.ID], ref)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedGoal{
				GoalID:    g.ID,
				GoalTitle: g.Title,
				Reason:    skipReason(err),
				Err:       err,
			})
			continue
		}

		result.ByFrequency[g.Frequency] = append(result.ByFrequency[g.Frequency], summary)
	}

	return result
}

// IndexByGoal groups check-ins by goal id, keeping their relative order.
func IndexByGoal(checkins []*domain.CheckIn) map[string][]*domain.CheckIn {
	index := make(map[string][]*domain.CheckIn)
	for _, c := range checkins {
		index[c.GoalID] = append(index[c.GoalID], c)
	}
	return index
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidFrequency):
		return "invalid_frequency"
	case errors.Is(err, domain.ErrInvalidTarget):
		return "invalid_target"
	default:
		return "error"
	}
}
