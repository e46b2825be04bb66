package domain

import (
	"context"
	"time"
)

const (
	EventCheckInCreated = "checkin.created"
	EventCheckInDeleted = "checkin.deleted"
)

// CheckInEvent notifies downstream consumers that a user's check-in history changed.
type CheckInEvent struct {
	Type       string    `json:"type"`
	CheckInID  string    `json:"checkin_id"`
	GoalID     string    `json:"goal_id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	Value      int       `json:"value"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewCheckInEvent(eventType string, c *CheckIn) CheckInEvent {
	return CheckInEvent{
		Type:       eventType,
		CheckInID:  c.ID,
		GoalID:     c.GoalID,
		UserID:     c.UserID,
		Date:       c.Date,
		Value:      c.Value,
		OccurredAt: time.Now().UTC(),
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event CheckInEvent) error
}
