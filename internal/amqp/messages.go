package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types routed through the engine exchange.
const (
	EventGoalCompleted  = "goal.completed"
	EventBudgetExceeded = "budget.exceeded"
	EventReminderDue    = "reminder.due"
)

// Event is the single wire envelope for engine notifications. Payload fields
// beyond the header are populated per event type.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	UserID     int64     `json:"user_id"`

	// goal.completed
	GoalID      int64  `json:"goal_id,omitempty"`
	GoalName    string `json:"goal_name,omitempty"`
	TargetCents int64  `json:"target_cents,omitempty"`

	// budget.exceeded
	BudgetID   int64 `json:"budget_id,omitempty"`
	Month      int   `json:"month,omitempty"`
	Year       int   `json:"year,omitempty"`
	SpentCents int64 `json:"spent_cents,omitempty"`
	LimitCents int64 `json:"limit_cents,omitempty"`

	// reminder.due
	ReminderID    int64  `json:"reminder_id,omitempty"`
	ReminderTitle string `json:"reminder_title,omitempty"`
}

// NewGoalCompletedEvent announces a goal that reached its target.
func NewGoalCompletedEvent(userID, goalID int64, name string, targetCents int64) *Event {
	return &Event{
		Type:        EventGoalCompleted,
		OccurredAt:  time.Now().UTC(),
		UserID:      userID,
		GoalID:      goalID,
		GoalName:    name,
		TargetCents: targetCents,
	}
}

// NewBudgetExceededEvent announces month spending that passed the budget total.
func NewBudgetExceededEvent(userID, budgetID int64, month, year int, spentCents, limitCents int64) *Event {
	return &Event{
		Type:       EventBudgetExceeded,
		OccurredAt: time.Now().UTC(),
		UserID:     userID,
		BudgetID:   budgetID,
		Month:      month,
		Year:       year,
		SpentCents: spentCents,
		LimitCents: limitCents,
	}
}

// NewReminderDueEvent announces a reminder due today.
func NewReminderDueEvent(userID, reminderID int64, title string) *Event {
	return &Event{
		Type:          EventReminderDue,
		OccurredAt:    time.Now().UTC(),
		UserID:        userID,
		ReminderID:    reminderID,
		ReminderTitle: title,
	}
}

// ToJSON serializes the event for publishing.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON deserializes a consumed delivery body.
func EventFromJSON(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if e.Type == "" {
		return nil, fmt.Errorf("event missing type")
	}
	return &e, nil
}
