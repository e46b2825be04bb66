package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultWarmSchedule runs five minutes after midnight. Specs carry a seconds field.
const DefaultWarmSchedule = "0 5 0 * * *"

const warmTimeout = 5 * time.Minute

// Scheduler drives periodic maintenance jobs in the application timezone.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleCalendarWarmup registers the nightly re-warm of current-year calendars.
func (s *Scheduler) ScheduleCalendarWarmup(spec string, worker *CalendarWorker) (cron.EntryID, error) {
	if worker == nil {
		return 0, fmt.Errorf("scheduler: calendar worker is required")
	}
	if spec == "" {
		spec = DefaultWarmSchedule
	}

	id, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		defer cancel()
		worker.WarmCurrentYear(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	return id, nil
}

func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
