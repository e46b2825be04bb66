package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCategoryTitleEmpty   = errors.New("category title cannot be empty")
	ErrCategoryTitleTooLong = errors.New("category title is too long (max 100 chars)")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryExists       = errors.New("category with this title already exists")
	ErrCategoryInUse        = errors.New("category still has goals")
)

const MaxCategoryTitleLen = 100

// DefaultCategories are seeded for every new account.
var DefaultCategories = []string{
	"Fitness",
	"Personal Growth",
	"Financial",
	"Relationships",
	"Community",
	"Self-Care",
}

type Category struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Title     string     `json:"title" db:"title"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

func validateCategoryTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrCategoryTitleEmpty
	}
	if len([]rune(trimmed)) > MaxCategoryTitleLen {
		return "", ErrCategoryTitleTooLong
	}
	return trimmed, nil
}

func NewCategory(userID, title string) (*Category, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	cleanTitle, err := validateCategoryTitle(title)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     cleanTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Category) Rename(title string) error {
	cleanTitle, err := validateCategoryTitle(title)
	if err != nil {
		return err
	}
	c.Title = cleanTitle
	c.UpdatedAt = time.Now().UTC()
	return nil
}
