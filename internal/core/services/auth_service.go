package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type AuthService struct {
	repo       domain.UserRepository
	categories *CategoryService
}

func NewAuthService(repo domain.UserRepository, categories *CategoryService) *AuthService {
	return &AuthService{
		repo:       repo,
		categories: categories,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginInput looks the account up by Email, or by Username when Email is empty.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// Register creates the account and seeds its default categories. A seeding
// failure is logged and does not undo the registration.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	id := uuid.NewString()
	user, err := domain.NewUser(id, input.Email, input.Username)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	if s.categories != nil {
		if err := s.categories.SeedDefaults(ctx, user.ID); err != nil {
			log.Printf("[ERROR] Seeding default categories for %s: %v", user.ID, err)
		}
	}

	return user, nil
}

// Login never tells an unknown account apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case strings.TrimSpace(input.Email) != "":
		user, err = s.repo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	case strings.TrimSpace(input.Username) != "":
		user, err = s.repo.GetByUsername(ctx, domain.NormalizeUsername(input.Username))
	default:
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: failed to load user: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}
