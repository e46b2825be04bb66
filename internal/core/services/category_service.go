package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type CategoryService struct {
	repo  domain.CategoryRepository
	goals *GoalService
}

func NewCategoryService(repo domain.CategoryRepository, goals *GoalService) *CategoryService {
	return &CategoryService{
		repo:  repo,
		goals: goals,
	}
}

type UpdateCategoryInput struct {
	ID     string
	UserID string
	Title  string
}

func (s *CategoryService) Create(ctx context.Context, userID, title string) (*domain.Category, error) {
	category, err := domain.NewCategory(userID, title)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// SeedDefaults creates the default categories for a fresh account. Titles the
// user already owns are skipped.
func (s *CategoryService) SeedDefaults(ctx context.Context, userID string) error {
	for _, title := range domain.DefaultCategories {
		if _, err := s.Create(ctx, userID, title); err != nil {
			if errors.Is(err, domain.ErrCategoryExists) {
				continue
			}
			return fmt.Errorf("category service: seeding %q: %w", title, err)
		}
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]*domain.Category, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *CategoryService) GetByID(ctx context.Context, id, userID string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := category.Rename(input.Title); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Delete removes a category. A category that still files goals is only
// removed with cascade, which deletes those goals and their check-ins too.
func (s *CategoryService) Delete(ctx context.Context, id, userID string, cascade bool) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	goals, err := s.goals.repo.ListByCategoryID(ctx, id)
	if err != nil {
		return err
	}

	if len(goals) > 0 && !cascade {
		return fmt.Errorf("%w: %d goals", domain.ErrCategoryInUse, len(goals))
	}

	for _, g := range goals {
		if err := s.goals.delete(ctx, g); err != nil {
			return fmt.Errorf("category service: cascading to goal %s: %w", g.ID, err)
		}
	}
	if len(goals) > 0 {
		log.Printf("[CATEGORY] Cascade delete of %s removed %d goals", id, len(goals))
	}

	return s.repo.Delete(ctx, id)
}
