package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

var _ domain.CategoryRepository = (*PostgresCategoryRepository)(nil)

type PostgresCategoryRepository struct {
	db *sqlx.DB
}

func NewPostgresCategoryRepository(db *sqlx.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

const categoryColumns = `id, user_id, title, created_at, updated_at, deleted_at`

func (r *PostgresCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
        INSERT INTO categories (id, user_id, title, created_at, updated_at)
        VALUES (:id, :user_id, :title, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return domain.ErrCategoryExists
		case pgForeignKeyViolation:
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND deleted_at IS NULL`

	var c domain.Category
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if isMissingRow(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &c, nil
}

func (r *PostgresCategoryRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	query := `
        SELECT ` + categoryColumns + ` FROM categories
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY lower(title) ASC`

	categories := []*domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return categories, nil
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `
        UPDATE categories SET title = :title, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`

	res, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return expectAffected(res, domain.ErrCategoryNotFound)
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE categories SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if isMissingRow(err) {
			return domain.ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return expectAffected(res, domain.ErrCategoryNotFound)
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
