package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// The in-memory repositories back the service when no DATABASE_URL is set and
// drive the handler tests. They return copies so callers never share state
// with the store, and deletes are soft like in Postgres.

var (
	_ domain.UserRepository     = (*InMemoryUserRepository)(nil)
	_ domain.CategoryRepository = (*InMemoryCategoryRepository)(nil)
	_ domain.GoalRepository     = (*InMemoryGoalRepository)(nil)
	_ domain.CheckInRepository  = (*InMemoryCheckInRepository)(nil)
)

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
		if strings.EqualFold(u.Username, user.Username) {
			return domain.ErrUsernameTaken
		}
	}

	cp := *user
	r.store[user.ID] = &cp
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *InMemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *InMemoryUserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type InMemoryCategoryRepository struct {
	store map[string]*domain.Category

	mu sync.RWMutex
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{
		store: make(map[string]*domain.Category),
	}
}

// titleTaken must be called with the lock held.
func (r *InMemoryCategoryRepository) titleTaken(c *domain.Category) bool {
	for _, other := range r.store {
		if other.ID != c.ID && other.DeletedAt == nil && other.UserID == c.UserID &&
			strings.EqualFold(other.Title, c.Title) {
			return true
		}
	}
	return false
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(category) {
		return domain.ErrCategoryExists
	}

	cp := *category
	r.store[category.ID] = &cp
	return nil
}

func (r *InMemoryCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.store[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCategoryRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := []*domain.Category{}
	for _, c := range r.store {
		if c.UserID == userID && c.DeletedAt == nil {
			cp := *c
			categories = append(categories, &cp)
		}
	}

	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Title) < strings.ToLower(categories[j].Title)
	})

	return categories, nil
}

func (r *InMemoryCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[category.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrCategoryNotFound
	}
	if r.titleTaken(category) {
		return domain.ErrCategoryExists
	}

	cp := *category
	r.store[category.ID] = &cp
	return nil
}

func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.store[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrCategoryNotFound
	}

	now := time.Now().UTC()
	c.DeletedAt = &now
	c.UpdatedAt = now
	return nil
}

type InMemoryGoalRepository struct {
	store    map[string]*domain.Goal
	checkins *InMemoryCheckInRepository

	mu sync.RWMutex
}

// NewInMemoryGoalRepository cascades goal deletes into checkins when it is non-nil.
func NewInMemoryGoalRepository(checkins *InMemoryCheckInRepository) *InMemoryGoalRepository {
	return &InMemoryGoalRepository{
		store:    make(map[string]*domain.Goal),
		checkins: checkins,
	}
}

func (r *InMemoryGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *goal
	r.store[goal.ID] = &cp
	return nil
}

func (r *InMemoryGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.store[id]
	if !ok || g.DeletedAt != nil {
		return nil, domain.ErrGoalNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *InMemoryGoalRepository) list(match func(*domain.Goal) bool) []*domain.Goal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goals := []*domain.Goal{}
	for _, g := range r.store {
		if g.DeletedAt == nil && match(g) {
			cp := *g
			goals = append(goals, &cp)
		}
	}

	sort.Slice(goals, func(i, j int) bool {
		if goals[i].CreatedAt.Equal(goals[j].CreatedAt) {
			return goals[i].ID < goals[j].ID
		}
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals
}

func (r *InMemoryGoalRepository) ListByUserID(ctx context.Context, userID string, includeInactive bool) ([]*domain.Goal, error) {
	return r.list(func(g *domain.Goal) bool {
		return g.UserID == userID && (g.Active || includeInactive)
	}), nil
}

func (r *InMemoryGoalRepository) ListByCategoryID(ctx context.Context, categoryID string) ([]*domain.Goal, error) {
	return r.list(func(g *domain.Goal) bool {
		return g.CategoryID == categoryID
	}), nil
}

func (r *InMemoryGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[goal.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}

	cp := *goal
	r.store[goal.ID] = &cp
	return nil
}

func (r *InMemoryGoalRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.store[id]
	if !ok || g.DeletedAt != nil {
		return domain.ErrGoalNotFound
	}

	now := time.Now().UTC()
	g.DeletedAt = &now
	g.UpdatedAt = now

	if r.checkins != nil {
		r.checkins.deleteByGoal(id, now)
	}
	return nil
}

type InMemoryCheckInRepository struct {
	store map[string]*domain.CheckIn

	mu sync.RWMutex
}

func NewInMemoryCheckInRepository() *InMemoryCheckInRepository {
	return &InMemoryCheckInRepository{
		store: make(map[string]*domain.CheckIn),
	}
}

func (r *InMemoryCheckInRepository) Create(ctx context.Context, checkin *domain.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *checkin
	r.store[checkin.ID] = &cp
	return nil
}

func (r *InMemoryCheckInRepository) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.store[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCheckInNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCheckInRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.store[id]
	if !ok || c.DeletedAt != nil || c.UserID != userID {
		return domain.ErrCheckInNotFound
	}

	now := time.Now().UTC()
	c.DeletedAt = &now
	return nil
}

func (r *InMemoryCheckInRepository) deleteByGoal(goalID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.store {
		if c.GoalID == goalID && c.DeletedAt == nil {
			deletedAt := at
			c.DeletedAt = &deletedAt
		}
	}
}

// inRange compares YYYY-MM-DD strings, which order lexically like dates.
func inRange(date, from, to string) bool {
	return (from == "" || date >= from) && (to == "" || date <= to)
}

func (r *InMemoryCheckInRepository) list(match func(*domain.CheckIn) bool) []*domain.CheckIn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checkins := []*domain.CheckIn{}
	for _, c := range r.store {
		if c.DeletedAt == nil && match(c) {
			cp := *c
			checkins = append(checkins, &cp)
		}
	}
	return checkins
}

func chronological(a, b *domain.CheckIn) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (r *InMemoryCheckInRepository) ListByGoalID(ctx context.Context, goalID string, from, to string) ([]*domain.CheckIn, error) {
	checkins := r.list(func(c *domain.CheckIn) bool {
		return c.GoalID == goalID && inRange(c.Date, from, to)
	})
	sort.Slice(checkins, func(i, j int) bool {
		return chronological(checkins[j], checkins[i])
	})
	return checkins, nil
}

func (r *InMemoryCheckInRepository) ListByUserID(ctx context.Context, userID string, from, to string) ([]*domain.CheckIn, error) {
	checkins := r.list(func(c *domain.CheckIn) bool {
		return c.UserID == userID && inRange(c.Date, from, to)
	})
	sort.Slice(checkins, func(i, j int) bool {
		return chronological(checkins[i], checkins[j])
	})
	return checkins, nil
}

func (r *InMemoryCheckInRepository) ListUserIDs(ctx context.Context, from, to string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, c := range r.list(func(c *domain.CheckIn) bool { return inRange(c.Date, from, to) }) {
		seen[c.UserID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
