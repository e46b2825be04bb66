package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/progress"
)

const queueSize = 100

type CheckInRepository interface {
	ListByUserID(ctx context.Context, userID string, from, to string) ([]*domain.CheckIn, error)
	ListUserIDs(ctx context.Context, from, to string) ([]string, error)
}

type CalendarJob struct {
	UserID string
	Year   int
}

// CalendarWorker rebuilds per-year calendars in the background and stores them
// in the calendar cache, so heatmap reads after a check-in are served warm.
type CalendarWorker struct {
	checkinRepo CheckInRepository
	cache       domain.CalendarCache
	loc         *time.Location
	jobs        chan CalendarJob
}

func NewCalendarWorker(checkinRepo CheckInRepository, cache domain.CalendarCache, loc *time.Location) *CalendarWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarWorker{
		checkinRepo: checkinRepo,
		cache:       cache,
		loc:         loc,
		jobs:        make(chan CalendarJob, queueSize),
	}
}

func (w *CalendarWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Calendar worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Calendar worker shutting down...")
				return
			}
		}
	}()
}

// Enqueue never blocks: when the queue is full the job is dropped and the
// calendar is rebuilt lazily on the next read.
func (w *CalendarWorker) Enqueue(userID string, year int) {
	if w == nil {
		return
	}
	select {
	case w.jobs <- CalendarJob{UserID: userID, Year: year}:
	default:
		log.Printf("[WORKER] Queue full! Dropping calendar job for user %s year %d", userID, year)
	}
}

// WarmCurrentYear enqueues a rebuild for every user with check-ins this year.
func (w *CalendarWorker) WarmCurrentYear(ctx context.Context) {
	year := time.Now().In(w.loc).Year()
	from, to := progress.YearBounds(year)

	userIDs, err := w.checkinRepo.ListUserIDs(ctx, from, to)
	if err != nil {
		log.Printf("[WORKER] Warm-up failed listing users for %d: %v", year, err)
		return
	}

	for _, id := range userIDs {
		w.Enqueue(id, year)
	}
	log.Printf("[WORKER] Warm-up queued %d calendars for %d", len(userIDs), year)
}

func (w *CalendarWorker) processJob(ctx context.Context, job CalendarJob) {
	cal, err := w.Rebuild(ctx, job.UserID, job.Year)
	if err != nil {
		log.Printf("[WORKER] Error rebuilding calendar %s/%d: %v", job.UserID, job.Year, err)
		return
	}
	log.Printf("[WORKER] Calendar %s/%d rebuilt: %d days, max=%d", job.UserID, job.Year, len(cal.Calendar), cal.MaxCount)
}

// Rebuild computes the calendar from the check-in store and refreshes the cache.
func (w *CalendarWorker) Rebuild(ctx context.Context, userID string, year int) (progress.YearCalendar, error) {
	var generation int64
	if w.cache != nil {
		generation = w.cache.Generation(ctx, userID, year)
	}

	from, to := progress.YearBounds(year)
	checkins, err := w.checkinRepo.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return progress.YearCalendar{}, err
	}

	cal := progress.BuildYearCalendar(year, checkins)
	if w.cache != nil {
		w.cache.Set(ctx, userID, year, generation, cal.Calendar)
	}
	return cal, nil
}
