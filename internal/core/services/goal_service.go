package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type GoalService struct {
	repo         domain.GoalRepository
	categoryRepo domain.CategoryRepository
	checkinRepo  domain.CheckInRepository
	calendars    calendarRefresher
}

func NewGoalService(repo domain.GoalRepository, categoryRepo domain.CategoryRepository, checkinRepo domain.CheckInRepository, cache domain.CalendarCache, queue CalendarQueue) *GoalService {
	return &GoalService{
		repo:         repo,
		categoryRepo: categoryRepo,
		checkinRepo:  checkinRepo,
		calendars:    calendarRefresher{cache: cache, queue: queue},
	}
}

type CreateGoalInput struct {
	UserID      string
	CategoryID  string
	Title       string
	Frequency   string
	TargetValue int
}

// UpdateGoalInput is a partial update: empty strings, a zero target and a nil
// Active keep the stored value.
type UpdateGoalInput struct {
	ID          string
	UserID      string
	CategoryID  string
	Title       string
	Frequency   string
	TargetValue int
	Active      *bool
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *GoalService) checkCategory(ctx context.Context, categoryID, userID string) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.UserID != userID {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	freq, err := domain.ParseFrequency(input.Frequency)
	if err != nil {
		return nil, err
	}

	goal, err := domain.NewGoal(input.UserID, input.CategoryID, input.Title, freq, input.TargetValue)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, goal.CategoryID, goal.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) List(ctx context.Context, userID string, includeInactive bool) ([]*domain.Goal, error) {
	return s.repo.ListByUserID(ctx, userID, includeInactive)
}

func (s *GoalService) ListByCategory(ctx context.Context, categoryID, userID string) ([]*domain.Goal, error) {
	if err := s.checkCategory(ctx, categoryID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByCategoryID(ctx, categoryID)
}

func (s *GoalService) GetByID(ctx context.Context, id, userID string) (*domain.Goal, error) {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return goal, nil
}

func (s *GoalService) Update(ctx context.Context, input UpdateGoalInput) (*domain.Goal, error) {
	goal, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	freq := goal.Frequency
	if input.Frequency != "" {
		if freq, err = domain.ParseFrequency(input.Frequency); err != nil {
			return nil, err
		}
	}

	categoryID := mergeString(input.CategoryID, goal.CategoryID)
	if categoryID != goal.CategoryID {
		if err := s.checkCategory(ctx, categoryID, input.UserID); err != nil {
			return nil, err
		}
	}

	target := goal.TargetValue
	if input.TargetValue != 0 {
		target = input.TargetValue
	}

	if err := goal.Update(mergeString(input.Title, goal.Title), categoryID, freq, target); err != nil {
		return nil, err
	}
	if input.Active != nil {
		goal.SetActive(*input.Active)
	}

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, id, userID string) error {
	goal, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.delete(ctx, goal)
}

// delete soft-deletes the goal with its check-ins and refreshes every calendar
// year those check-ins touched.
func (s *GoalService) delete(ctx context.Context, goal *domain.Goal) error {
	checkins, err := s.checkinRepo.ListByGoalID(ctx, goal.ID, "", "")
	if err != nil {
		return fmt.Errorf("goal service: listing check-ins of %s: %w", goal.ID, err)
	}

	if err := s.repo.Delete(ctx, goal.ID); err != nil {
		return err
	}

	s.calendars.refresh(ctx, goal.UserID, yearsOf(checkins)...)
	return nil
}
