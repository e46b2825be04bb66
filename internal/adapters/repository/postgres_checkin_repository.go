package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

var _ domain.CheckInRepository = (*PostgresCheckInRepository)(nil)

type PostgresCheckInRepository struct {
	db *sqlx.DB
}

func NewPostgresCheckInRepository(db *sqlx.DB) *PostgresCheckInRepository {
	return &PostgresCheckInRepository{db: db}
}

// Dates are rendered by Postgres so they reach the domain as YYYY-MM-DD
// regardless of the driver's timestamp handling.
const checkinColumns = `id, goal_id, user_id, to_char(date, 'YYYY-MM-DD') AS date, value, note, created_at, deleted_at`

// dateRange builds the optional date bounds of a check-in query. Empty bounds are open.
func dateRange(args []interface{}, from, to string) (string, []interface{}) {
	clause := ""
	if from != "" {
		args = append(args, from)
		clause += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		clause += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	return clause, args
}

func (r *PostgresCheckInRepository) Create(ctx context.Context, c *domain.CheckIn) error {
	query := `
        INSERT INTO checkins (id, goal_id, user_id, date, value, note, created_at)
        VALUES (:id, :goal_id, :user_id, :date, :value, :note, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return domain.ErrGoalNotFound
		case pgCheckViolation:
			return domain.ErrInvalidValue
		}
		return fmt.Errorf("failed to insert check-in: %w", err)
	}
	return nil
}

func (r *PostgresCheckInRepository) GetByID(ctx context.Context, id string) (*domain.CheckIn, error) {
	query := `SELECT ` + checkinColumns + ` FROM checkins WHERE id = $1 AND deleted_at IS NULL`

	var c domain.CheckIn
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrCheckInNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &c, nil
}

func (r *PostgresCheckInRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `UPDATE checkins SET deleted_at = NOW() WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		if isMissingRow(err) {
			return domain.ErrCheckInNotFound
		}
		return fmt.Errorf("failed to delete check-in: %w", err)
	}
	return expectAffected(res, domain.ErrCheckInNotFound)
}

func (r *PostgresCheckInRepository) ListByGoalID(ctx context.Context, goalID string, from, to string) ([]*domain.CheckIn, error) {
	bounds, args := dateRange([]interface{}{goalID}, from, to)
	query := `SELECT ` + checkinColumns + ` FROM checkins
        WHERE goal_id = $1 AND deleted_at IS NULL` + bounds + `
        ORDER BY date DESC, created_at DESC`

	return r.list(ctx, query, args)
}

func (r *PostgresCheckInRepository) ListByUserID(ctx context.Context, userID string, from, to string) ([]*domain.CheckIn, error) {
	bounds, args := dateRange([]interface{}{userID}, from, to)
	query := `SELECT ` + checkinColumns + ` FROM checkins
        WHERE user_id = $1 AND deleted_at IS NULL` + bounds + `
        ORDER BY date ASC, created_at ASC`

	return r.list(ctx, query, args)
}

func (r *PostgresCheckInRepository) list(ctx context.Context, query string, args []interface{}) ([]*domain.CheckIn, error) {
	checkins := []*domain.CheckIn{}
	if err := r.db.SelectContext(ctx, &checkins, query, args...); err != nil {
		if isMissingRow(err) {
			return checkins, nil
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return checkins, nil
}

func (r *PostgresCheckInRepository) ListUserIDs(ctx context.Context, from, to string) ([]string, error) {
	bounds, args := dateRange(nil, from, to)
	query := `SELECT DISTINCT user_id::text FROM checkins WHERE deleted_at IS NULL` + bounds + ` ORDER BY 1`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return ids, nil
}
