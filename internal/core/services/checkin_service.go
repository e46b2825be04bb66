package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type CheckInService struct {
	repo      domain.CheckInRepository
	goalRepo  domain.GoalRepository
	calendars calendarRefresher
	events    domain.EventPublisher
	loc       *time.Location
}

func NewCheckInService(repo domain.CheckInRepository, goalRepo domain.GoalRepository, cache domain.CalendarCache, queue CalendarQueue, events domain.EventPublisher, loc *time.Location) *CheckInService {
	if loc == nil {
		loc = time.UTC
	}
	return &CheckInService{
		repo:      repo,
		goalRepo:  goalRepo,
		calendars: calendarRefresher{cache: cache, queue: queue},
		events:    events,
		loc:       loc,
	}
}

type CreateCheckInInput struct {
	GoalID string
	UserID string
	Date   string
	Value  int
	Note   string
}

// Today is the current date in the application timezone.
func (s *CheckInService) Today() string {
	return domain.Today(s.loc)
}

func (s *CheckInService) ownedGoal(ctx context.Context, goalID, userID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return goal, nil
}

// Create always appends a new check-in; same-day check-ins accumulate.
func (s *CheckInService) Create(ctx context.Context, input CreateCheckInInput) (*domain.CheckIn, error) {
	if input.Date == "" {
		input.Date = s.Today()
	}

	checkin, err := domain.NewCheckIn(input.GoalID, input.UserID, input.Date, input.Value, input.Note)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedGoal(ctx, checkin.GoalID, checkin.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, checkin); err != nil {
		return nil, err
	}

	s.calendars.refresh(ctx, checkin.UserID, checkin.Year())
	s.publish(ctx, domain.NewCheckInEvent(domain.EventCheckInCreated, checkin))

	return checkin, nil
}

func (s *CheckInService) GetByID(ctx context.Context, id, userID string) (*domain.CheckIn, error) {
	checkin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if checkin.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return checkin, nil
}

// ListByGoal returns the goal's check-ins between from and to inclusive.
// Empty bounds are open.
func (s *CheckInService) ListByGoal(ctx context.Context, goalID, userID, from, to string) ([]*domain.CheckIn, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDate(d); err != nil {
			return nil, err
		}
	}

	if _, err := s.ownedGoal(ctx, goalID, userID); err != nil {
		return nil, err
	}

	return s.repo.ListByGoalID(ctx, goalID, from, to)
}

func (s *CheckInService) ListByDate(ctx context.Context, userID, date string) ([]*domain.CheckIn, error) {
	day, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	date = domain.FormatDate(day)
	return s.repo.ListByUserID(ctx, userID, date, date)
}

func (s *CheckInService) ListToday(ctx context.Context, userID string) ([]*domain.CheckIn, error) {
	return s.ListByDate(ctx, userID, s.Today())
}

func (s *CheckInService) Delete(ctx context.Context, id, userID string) error {
	checkin, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.calendars.refresh(ctx, userID, checkin.Year())
	s.publish(ctx, domain.NewCheckInEvent(domain.EventCheckInDeleted, checkin))

	return nil
}

func (s *CheckInService) publish(ctx context.Context, event domain.CheckInEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("[EVENTS] Failed to publish %s for check-in %s: %v", event.Type, event.CheckInID, err)
	}
}
