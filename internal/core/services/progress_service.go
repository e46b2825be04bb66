package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/progress"
)

const calendarRebuildTimeout = 10 * time.Second

// ProgressService loads goal and check-in snapshots and hands them to the
// progress engine. Calendars are served from the cache when warm.
type ProgressService struct {
	goalRepo    domain.GoalRepository
	checkinRepo domain.CheckInRepository
	cache       domain.CalendarCache
	loc         *time.Location
	now         func() time.Time
	rebuilds    singleflight.Group
}

func NewProgressService(goalRepo domain.GoalRepository, checkinRepo domain.CheckInRepository, cache domain.CalendarCache, loc *time.Location) *ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressService{
		goalRepo:    goalRepo,
		checkinRepo: checkinRepo,
		cache:       cache,
		loc:         loc,
		now:         time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

func (s *ProgressService) today() time.Time {
	t := s.now().In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ProgressService) CurrentYear() int {
	return s.today().Year()
}

// referenceDate parses date, or falls back to today in the application zone.
func (s *ProgressService) referenceDate(date string) (time.Time, error) {
	if date == "" {
		return s.today(), nil
	}
	return domain.ParseDate(date)
}

func (s *ProgressService) snapshot(ctx context.Context, userID string, includeInactive bool, from, to string) ([]*domain.Goal, []*domain.CheckIn, error) {
	var (
		goals    []*domain.Goal
		checkins []*domain.CheckIn
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = s.goalRepo.ListByUserID(gctx, userID, includeInactive)
		return err
	})
	g.Go(func() error {
		var err error
		checkins, err = s.checkinRepo.ListByUserID(gctx, userID, from, to)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("progress service: loading snapshot: %w", err)
	}
	return goals, checkins, nil
}

type ByFrequencyInput struct {
	UserID    string
	Date      string
	Frequency string
}

// ByFrequency groups the progress of every active goal by frequency. When
// Frequency is set only that bucket is computed.
func (s *ProgressService) ByFrequency(ctx context.Context, input ByFrequencyInput) (progress.GroupedProgress, error) {
	ref, err := s.referenceDate(input.Date)
	if err != nil {
		return progress.GroupedProgress{}, err
	}

	var only domain.Frequency
	if input.Frequency != "" {
		if only, err = domain.ParseFrequency(input.Frequency); err != nil {
			return progress.GroupedProgress{}, err
		}
	}

	goals, checkins, err := s.snapshot(ctx, input.UserID, false, "", "")
	if err != nil {
		return progress.GroupedProgress{}, err
	}

	if only != "" {
		filtered := goals[:0:0]
		for _, g := range goals {
			if g.Frequency == only {
				filtered = append(filtered, g)
			}
		}
		goals = filtered
	}

	grouped := progress.GroupProgressByFrequency(goals, progress.IndexByGoal(checkins), ref)
	for _, skipped := range grouped.Skipped {
		log.Printf("[PROGRESS] data integrity: goal %s (%q) skipped: %v", skipped.GoalID, skipped.GoalTitle, skipped.Err)
	}

	return grouped, nil
}

func (s *ProgressService) GoalProgress(ctx context.Context, goalID, userID, date string) (progress.Summary, error) {
	ref, err := s.referenceDate(date)
	if err != nil {
		return progress.Summary{}, err
	}

	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return progress.Summary{}, err
	}
	if goal.UserID != userID {
		return progress.Summary{}, domain.ErrUnauthorized
	}

	checkins, err := s.checkinRepo.ListByGoalID(ctx, goalID, "", "")
	if err != nil {
		return progress.Summary{}, err
	}

	return progress.ComputeProgress(goal, checkins, ref)
}

// Calendar returns the year's calendar, rebuilding it at most once per
// (user, year) when several requests miss the cache together.
func (s *ProgressService) Calendar(ctx context.Context, userID string, year int) (progress.YearCalendar, error) {
	if err := domain.ValidateYear(year); err != nil {
		return progress.YearCalendar{}, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, userID, year); ok {
			return progress.NewYearCalendar(year, cached), nil
		}
	}

	key := fmt.Sprintf("%s:%d", userID, year)
	v, err, _ := s.rebuilds.Do(key, func() (interface{}, error) {
		// Detached from the caller: every waiting request shares this result.
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), calendarRebuildTimeout)
		defer cancel()

		var generation int64
		if s.cache != nil {
			generation = s.cache.Generation(buildCtx, userID, year)
		}

		from, to := progress.YearBounds(year)
		checkins, err := s.checkinRepo.ListByUserID(buildCtx, userID, from, to)
		if err != nil {
			return nil, err
		}

		cal := progress.BuildYearCalendar(year, checkins)
		if s.cache != nil {
			s.cache.Set(buildCtx, userID, year, generation, cal.Calendar)
		}
		return cal, nil
	})
	if err != nil {
		return progress.YearCalendar{}, fmt.Errorf("progress service: building calendar: %w", err)
	}

	return v.(progress.YearCalendar), nil
}

func (s *ProgressService) DayDetail(ctx context.Context, userID, date string) (progress.DayDetail, error) {
	day, err := domain.ParseDate(date)
	if err != nil {
		return progress.DayDetail{}, err
	}
	date = domain.FormatDate(day)

	goals, checkins, err := s.snapshot(ctx, userID, true, date, date)
	if err != nil {
		return progress.DayDetail{}, err
	}

	return progress.GetDayDetail(date, checkins, goals)
}

// YearOverview scores every goal of the user over a whole year.
func (s *ProgressService) YearOverview(ctx context.Context, userID string, year int) ([]progress.GoalYear, error) {
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}

	from, to := progress.YearBounds(year)
	goals, checkins, err := s.snapshot(ctx, userID, true, from, to)
	if err != nil {
		return nil, err
	}

	byGoal := progress.IndexByGoal(checkins)
	overview := make([]progress.GoalYear, 0, len(goals))
	for _, g := range goals {
		gy, err := progress.YearProgress(g, byGoal[g.ID], year)
		if err != nil {
			log.Printf("[PROGRESS] data integrity: goal %s skipped in %d overview: %v", g.ID, year, err)
			continue
		}
		overview = append(overview, gy)
	}

	return overview, nil
}
