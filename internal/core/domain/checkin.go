package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCheckIn = errors.New("invalid check-in data")
	ErrInvalidDate    = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrInvalidValue   = errors.New("check-in value must be positive")
	ErrNoteTooLong    = errors.New("check-in note is too long (max 1000 chars)")
	ErrInvalidYear    = errors.New("invalid year")
)

const (
	// DateLayout is the only date representation check-ins carry.
	DateLayout     = "2006-01-02"
	MaxNoteLen     = 1000
	DefaultCheckIn = 1
)

// CheckIn is an append-only progress event. Several check-ins may share the
// same goal and date; their values accumulate.
type CheckIn struct {
	ID        string     `json:"id" db:"id"`
	GoalID    string     `json:"goal_id" db:"goal_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Date      string     `json:"date" db:"date"`
	Value     int        `json:"value" db:"value"`
	Note      string     `json:"note,omitempty" db:"note"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// ParseDate parses a calendar date. The result is midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders the calendar day of t as seen in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return FormatDate(time.Now().In(loc))
}

func NewCheckIn(goalID, userID, date string, value int, note string) (*CheckIn, error) {
	if value == 0 {
		value = DefaultCheckIn
	}

	c := &CheckIn{
		ID:        uuid.NewString(),
		GoalID:    strings.TrimSpace(goalID),
		UserID:    strings.TrimSpace(userID),
		Date:      strings.TrimSpace(date),
		Value:     value,
		Note:      strings.TrimSpace(note),
		CreatedAt: time.Now().UTC(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CheckIn) Validate() error {
	if c.GoalID == "" {
		return fmt.Errorf("%w: goal_id is required", ErrInvalidCheckIn)
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidCheckIn)
	}
	if _, err := ParseDate(c.Date); err != nil {
		return err
	}
	if c.Value < 1 {
		return ErrInvalidValue
	}
	if len([]rune(c.Note)) > MaxNoteLen {
		return ErrNoteTooLong
	}
	return nil
}

// ValidateYear accepts the years a four-digit date can carry.
func ValidateYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

// Year returns the calendar year of the check-in, or 0 when the date is malformed.
func (c *CheckIn) Year() int {
	t, err := ParseDate(c.Date)
	if err != nil {
		return 0
	}
	return t.Year()
}
