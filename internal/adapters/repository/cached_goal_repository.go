package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const goalListTTL = 30 * time.Minute

var _ domain.GoalRepository = (*CachedGoalRepository)(nil)

// CachedGoalRepository keeps each user's goal list in Redis. Progress reads
// list goals on every request while goals themselves change rarely.
type CachedGoalRepository struct {
	next  domain.GoalRepository
	cache *redis.Client
}

func NewCachedGoalRepository(next domain.GoalRepository, cache *redis.Client) *CachedGoalRepository {
	return &CachedGoalRepository{
		next:  next,
		cache: cache,
	}
}

func goalListKey(userID string, includeInactive bool) string {
	scope := "active"
	if includeInactive {
		scope = "all"
	}
	return fmt.Sprintf("goals:%s:%s", userID, scope)
}

func (r *CachedGoalRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, goalListKey(userID, false), goalListKey(userID, true)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate goals for user %s: %v", userID, err)
	}
}

func (r *CachedGoalRepository) ListByUserID(ctx context.Context, userID string, includeInactive bool) ([]*domain.Goal, error) {
	key := goalListKey(userID, includeInactive)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var goals []*domain.Goal
		if err := json.Unmarshal([]byte(val), &goals); err == nil {
			return goals, nil
		}

		log.Printf("[CACHE] Corrupted goal list for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	goals, err := r.next.ListByUserID(ctx, userID, includeInactive)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(goals); err == nil {
		if setErr := r.cache.Set(ctx, key, data, goalListTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return goals, nil
}

func (r *CachedGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedGoalRepository) ListByCategoryID(ctx context.Context, categoryID string) ([]*domain.Goal, error) {
	return r.next.ListByCategoryID(ctx, categoryID)
}

func (r *CachedGoalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	if err := r.next.Create(ctx, goal); err != nil {
		return err
	}
	r.invalidate(ctx, goal.UserID)
	return nil
}

func (r *CachedGoalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	if err := r.next.Update(ctx, goal); err != nil {
		return err
	}
	r.invalidate(ctx, goal.UserID)
	return nil
}

func (r *CachedGoalRepository) Delete(ctx context.Context, id string) error {
	goal, err := r.next.GetByID(ctx, id)
	if err == nil && goal != nil {
		defer r.invalidate(ctx, goal.UserID)
	}

	return r.next.Delete(ctx, id)
}
