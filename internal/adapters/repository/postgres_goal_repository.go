package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.GoalRepository = (*PostgresGoalRepository)(nil)

type PostgresGoalRepository struct {
	db *sqlx.DB
}

func NewPostgresGoalRepository(db *sqlx.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

const goalColumns = `id, user_id, category_id, title, frequency, target_value, is_active, created_at, updated_at, deleted_at`

func mapGoalWriteError(err error) error {
	switch pgErrorCode(err) {
	case pgForeignKeyViolation:
		return domain.ErrCategoryNotFound
	case pgCheckViolation:
		return domain.ErrInvalidTarget
	}
	return err
}

func (r *PostgresGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	query := `
        INSERT INTO goals (
            id, user_id, category_id, title, frequency, target_value, is_active, created_at, updated_at
        ) VALUES (
            :id, :user_id, :category_id, :title, :frequency, :target_value, :is_active, :created_at, :updated_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("failed to insert goal: %w", mapGoalWriteError(err))
	}
	return nil
}

func (r *PostgresGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND deleted_at IS NULL`

	var g domain.Goal
	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &g, nil
}

func (r *PostgresGoalRepository) ListByUserID(ctx context.Context, userID string, includeInactive bool) ([]*domain.Goal, error) {
	query := `
        SELECT ` + goalColumns + ` FROM goals
        WHERE user_id = $1 AND deleted_at IS NULL AND (is_active OR $2)
        ORDER BY created_at DESC`

	goals := []*domain.Goal{}
	if err := r.db.SelectContext(ctx, &goals, query, userID, includeInactive); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) ListByCategoryID(ctx context.Context, categoryID string) ([]*domain.Goal, error) {
	query := `
        SELECT ` + goalColumns + ` FROM goals
        WHERE category_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC`

	goals := []*domain.Goal{}
	if err := r.db.SelectContext(ctx, &goals, query, categoryID); err != nil {
		if isMissingRow(err) {
			return goals, nil
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) Update(ctx context.Context, g *domain.Goal) error {
	query := `
        UPDATE goals SET
            category_id = :category_id, title = :title, frequency = :frequency,
            target_value = :target_value, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`

	res, err := r.db.NamedExecContext(ctx, query, g)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", mapGoalWriteError(err))
	}
	return expectAffected(res, domain.ErrGoalNotFound)
}

// Delete soft-deletes the goal and its check-ins in one transaction.
func (r *PostgresGoalRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE goals SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if isMissingRow(err) {
			return domain.ErrGoalNotFound
		}
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if err := expectAffected(res, domain.ErrGoalNotFound); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE checkins SET deleted_at = NOW() WHERE goal_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to delete goal check-ins: %w", err)
	}

	return tx.Commit()
}
