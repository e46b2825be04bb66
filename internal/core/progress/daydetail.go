package progress

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const UnknownGoalTitle = "Unknown goal"

type DayEntry struct {
	ID            string           `json:"id"`
	GoalID        string           `json:"goal_id"`
	GoalTitle     string           `json:"goal_title"`
	GoalFrequency domain.Frequency `json:"goal_frequency,omitempty"`
	Value         int              `json:"value"`
	Note          string           `json:"note,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type DayDetail struct {
	Date          string     `json:"date"`
	TotalCheckins int        `json:"total_checkins"`
	Checkins      []DayEntry `json:"checkins"`
}

// GetDayDetail lists the check-ins dated exactly date, oldest first, joined with
// their goal. Check-ins whose goal is not in goals are kept under UnknownGoalTitle.
func GetDayDetail(date string, checkins []*domain.CheckIn, goals []*domain.Goal) (DayDetail, error) {
	day, err := domain.ParseDate(date)
	if err != nil {
		return DayDetail{}, err
	}
	date = domain.FormatDate(day)

	byID := make(map[string]*domain.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}

	entries := make([]DayEntry, 0)
	for _, c := range checkins {
		cd, err := domain.ParseDate(c.Date)
		if err != nil || !cd.Equal(day) {
			continue
		}

		entry := DayEntry{
			ID:        c.ID,
			GoalID:    c.GoalID,
			GoalTitle: UnknownGoalTitle,
			Value:     c.Value,
			Note:      c.Note,
			CreatedAt: c.CreatedAt,
		}
		if g, ok := byID[c.GoalID]; ok {
			entry.GoalTitle = g.Title
			entry.GoalFrequency = g.Frequency
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return DayDetail{
		Date:          date,
		TotalCheckins: len(entries),
		Checkins:      entries,
	}, nil
}
