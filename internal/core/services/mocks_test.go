package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockGoalRepo struct {
	mock.Mock
}

func (m *MockGoalRepo) Create(ctx context.Context, g *domain.Goal) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockGoalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepo) ListByUserID(ctx context.Context, userID string, includeInactive bool) ([]*domain.Goal, error) {
	args := m.Called(ctx, userID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Goal), args.Error(1)
}

func (m *MockGoalRepo) ListByCategoryID(ctx context.Context, categoryID string) ([]*domain.Goal, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Goal), args.Error(1)
}

func (m *MockGoalRepo) Update(ctx context.Context, g *domain.Goal) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockGoalRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCheckInRepo struct {
	mock.Mock
}

func (m *MockCheckInRepo) Create(ctx context.Context, c *domain.CheckIn) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCheckInRepo) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckIn), args.Error(1)
}

func (m *MockCheckInRepo) Delete(ctx context.Context, id string, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockCheckInRepo) ListByGoalID(ctx context.Context, goalID string, from, to string) ([]*domain.CheckIn, error) {
	args := m.Called(ctx, goalID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CheckIn), args.Error(1)
}

func (m *MockCheckInRepo) ListByUserID(ctx context.Context, userID string, from, to string) ([]*domain.CheckIn, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CheckIn), args.Error(1)
}

func (m *MockCheckInRepo) ListUserIDs(ctx context.Context, from, to string) ([]string, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockCalendarCache struct {
	mock.Mock
}

func (m *MockCalendarCache) Get(ctx context.Context, userID string, year int) (map[string]int, bool) {
	args := m.Called(ctx, userID, year)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(map[string]int), args.Bool(1)
}

func (m *MockCalendarCache) Generation(ctx context.Context, userID string, year int) int64 {
	return m.Called(ctx, userID, year).Get(0).(int64)
}

func (m *MockCalendarCache) Set(ctx context.Context, userID string, year int, generation int64, calendar map[string]int) {
	m.Called(ctx, userID, year, generation, calendar)
}

func (m *MockCalendarCache) Invalidate(ctx context.Context, userID string, year int) {
	m.Called(ctx, userID, year)
}

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Enqueue(userID string, year int) {
	m.Called(userID, year)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.CheckInEvent) error {
	return m.Called(ctx, event).Error(0)
}
