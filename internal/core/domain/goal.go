package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGoalTitleEmpty   = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong = errors.New("goal title is too long (max 200 chars)")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrGoalNoCategory   = errors.New("goal must reference a category")
	ErrInvalidFrequency = errors.New("invalid frequency (must be daily, weekly, monthly, yearly or custom)")
	ErrInvalidTarget    = errors.New("target value must be a positive integer")
)

const (
	MaxGoalTitleLen    = 200
	DefaultTargetValue = 1
)

// Frequency is the recurrence unit that governs how a goal is evaluated.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

// Frequencies lists every frequency in display order.
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyYearly,
	FrequencyCustom,
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// HasTarget reports whether goals of this frequency are compared against a target.
func (f Frequency) HasTarget() bool {
	return f != FrequencyCustom
}

type Goal struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	CategoryID  string     `json:"category_id" db:"category_id"`
	Title       string     `json:"title" db:"title"`
	Frequency   Frequency  `json:"frequency" db:"frequency"`
	TargetValue int        `json:"target_value" db:"target_value"`
	Active      bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

func validateGoal(title, categoryID string, freq Frequency, target int) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrGoalTitleEmpty
	}
	if len([]rune(trimmed)) > MaxGoalTitleLen {
		return "", ErrGoalTitleTooLong
	}
	if strings.TrimSpace(categoryID) == "" {
		return "", ErrGoalNoCategory
	}
	if !freq.Valid() {
		return "", ErrInvalidFrequency
	}
	if target < 1 {
		return "", ErrInvalidTarget
	}
	return trimmed, nil
}

func NewGoal(userID, categoryID, title string, freq Frequency, target int) (*Goal, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if target == 0 {
		target = DefaultTargetValue
	}

	cleanTitle, err := validateGoal(title, categoryID, freq, target)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		CategoryID:  categoryID,
		Title:       cleanTitle,
		Frequency:   freq,
		TargetValue: target,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g *Goal) Update(title, categoryID string, freq Frequency, target int) error {
	cleanTitle, err := validateGoal(title, categoryID, freq, target)
	if err != nil {
		return err
	}

	g.Title = cleanTitle
	g.CategoryID = categoryID
	g.Frequency = freq
	g.TargetValue = target
	g.UpdatedAt = time.Now().UTC()

	return nil
}

func (g *Goal) SetActive(active bool) {
	if g.Active == active {
		return
	}
	g.Active = active
	g.UpdatedAt = time.Now().UTC()
}
