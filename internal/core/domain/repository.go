package domain

import (
	"context"
	"errors"
)

var (
	ErrGoalNotFound    = errors.New("goal not found")
	ErrCheckInNotFound = errors.New("check-in not found")
	ErrUnauthorized    = errors.New("resource belongs to another user")
)

type CategoryRepository interface {
	// Create persists a new category. Titles are unique per user among live categories.
	Create(ctx context.Context, category *Category) error

	GetByID(ctx context.Context, id string) (*Category, error)

	// ListByUserID returns the live categories of a user ordered by title.
	ListByUserID(ctx context.Context, userID string) ([]*Category, error)

	Update(ctx context.Context, category *Category) error

	// Delete soft-deletes the category.
	Delete(ctx context.Context, id string) error
}

type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) error

	GetByID(ctx context.Context, id string) (*Goal, error)

	// ListByUserID returns the live goals of a user, newest first.
	// Inactive goals are included only when includeInactive is set.
	ListByUserID(ctx context.Context, userID string, includeInactive bool) ([]*Goal, error)

	// ListByCategoryID returns every live goal (active or not) filed under the category.
	ListByCategoryID(ctx context.Context, categoryID string) ([]*Goal, error)

	Update(ctx context.Context, goal *Goal) error

	// Delete soft-deletes the goal together with all of its check-ins.
	Delete(ctx context.Context, id string) error
}

type CheckInRepository interface {
	// Create always appends a new event; check-ins are never updated in place.
	Create(ctx context.Context, checkin *CheckIn) error

	GetByID(ctx context.Context, id string) (*CheckIn, error)

	// Delete soft-deletes a check-in owned by userID.
	Delete(ctx context.Context, id string, userID string) error

	// ListByGoalID returns the check-ins of a goal with from <= date <= to.
	// An empty bound is open. Results are ordered by date then created_at, newest first.
	ListByGoalID(ctx context.Context, goalID string, from, to string) ([]*CheckIn, error)

	// ListByUserID returns the check-ins of a user with from <= date <= to,
	// ordered by date then created_at ascending. An empty bound is open.
	ListByUserID(ctx context.Context, userID string, from, to string) ([]*CheckIn, error)

	// ListUserIDs returns the distinct owners of check-ins dated within [from, to].
	ListUserIDs(ctx context.Context, from, to string) ([]string, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// CalendarCache memoizes per-year calendar totals. It is never authoritative:
// a miss or an error simply means the calendar gets rebuilt from check-ins.
//
// Every Invalidate bumps the key's generation. A rebuild reads Generation
// before loading check-ins and passes it to Set, which drops the calendar if
// the key was invalidated in between. A negative generation never stores.
type CalendarCache interface {
	Get(ctx context.Context, userID string, year int) (map[string]int, bool)
	Generation(ctx context.Context, userID string, year int) int64
	Set(ctx context.Context, userID string, year int, generation int64, calendar map[string]int)
	Invalidate(ctx context.Context, userID string, year int)
}
