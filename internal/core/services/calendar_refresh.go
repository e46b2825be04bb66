package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// CalendarQueue schedules a background rebuild of a user's year calendar.
type CalendarQueue interface {
	Enqueue(userID string, year int)
}

// calendarRefresher drops stale calendars synchronously and lets the worker
// rebuild them, so a read right after a write never sees old totals.
type calendarRefresher struct {
	cache domain.CalendarCache
	queue CalendarQueue
}

func (r calendarRefresher) refresh(ctx context.Context, userID string, years ...int) {
	seen := make(map[int]bool, len(years))
	for _, y := range years {
		if y == 0 || seen[y] {
			continue
		}
		seen[y] = true

		if r.cache != nil {
			r.cache.Invalidate(ctx, userID, y)
		}
		if r.queue != nil {
			r.queue.Enqueue(userID, y)
		}
	}
}

func yearsOf(checkins []*domain.CheckIn) []int {
	years := make([]int, 0, len(checkins))
	for _, c := range checkins {
		years = append(years, c.Year())
	}
	return years
}
