package services

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/ledger"
)

// SavingsService manages savings goals and their append-only movement ledger.
type SavingsService struct {
	store  ledger.Store
	events EventPublisher
}

func NewSavingsService(store ledger.Store, events EventPublisher) *SavingsService {
	return &SavingsService{store: store, events: events}
}

func (s *SavingsService) CreateGoal(ctx context.Context, g *core.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	g.Current = core.Money{}
	g.Status = core.GoalInProgress
	return s.store.CreateGoal(ctx, g)
}

func (s *SavingsService) GetGoal(ctx context.Context, userID, id int64) (*core.SavingsGoal, error) {
	return s.store.GetGoal(ctx, userID, id)
}

func (s *SavingsService) ListGoals(ctx context.Context, userID int64, p ledger.Page) ([]core.SavingsGoal, int64, error) {
	return s.store.ListGoals(ctx, userID, p)
}

// UpdateGoal changes the goal's descriptive fields and dates. The balance is
// only ever moved through AddMovement.
func (s *SavingsService) UpdateGoal(ctx context.Context, g *core.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}

	existing, err := s.store.GetGoal(ctx, g.UserID, g.ID)
	if err != nil {
		return err
	}
	g.Current = existing.Current
	if g.Status == "" {
		g.Status = existing.Status
	}
	return s.store.UpdateGoal(ctx, g)
}

func (s *SavingsService) DeleteGoal(ctx context.Context, userID, id int64) error {
	return s.store.SoftDeleteGoal(ctx, userID, id)
}

// AddMovement appends a deposit or withdrawal to the goal's ledger. A
// withdrawal that would overdraw the goal fails with ErrInsufficientFunds
// and leaves nothing behind. A deposit that reaches the target completes the
// goal and publishes goal.completed.
func (s *SavingsService) AddMovement(ctx context.Context, m *core.SavingsMovement) (*core.SavingsGoal, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.AppendMovement(ctx, m)
	if err != nil {
		return nil, err
	}

	if s.justCompleted(m, updated) {
		s.publishGoalCompleted(ctx, updated)
	}
	return updated, nil
}

// ListMovements pages the goal's ledger, newest first, after an ownership
// check.
func (s *SavingsService) ListMovements(ctx context.Context, userID, goalID int64, p ledger.Page) ([]core.SavingsMovement, int64, error) {
	if _, err := s.store.GetGoal(ctx, userID, goalID); err != nil {
		return nil, 0, err
	}
	return s.store.ListMovements(ctx, goalID, p)
}

// justCompleted reports whether this deposit is the one that crossed the
// target, as opposed to a later deposit into an already completed goal.
func (s *SavingsService) justCompleted(m *core.SavingsMovement, updated *core.SavingsGoal) bool {
	if m.Kind != core.MovementDeposit || updated.Status != core.GoalCompleted {
		return false
	}
	return updated.Current.Cents-m.Amount.Cents < updated.Target.Cents
}

func (s *SavingsService) publishGoalCompleted(ctx context.Context, g *core.SavingsGoal) {
	if s.events == nil {
		return
	}
	event := amqp.NewGoalCompletedEvent(g.UserID, g.ID, g.Name, g.Target.Cents)
	if err := s.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish goal.completed",
			"user_id", g.UserID, "goal_id", g.ID, "error", err)
	}
}

// ReminderService manages dated reminders.
type ReminderService struct {
	store ledger.Store
}

func NewReminderService(store ledger.Store) *ReminderService {
	return &ReminderService{store: store}
}

func (s *ReminderService) Create(ctx context.Context, r *core.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.store.CreateReminder(ctx, r)
}

func (s *ReminderService) List(ctx context.Context, userID int64, p ledger.Page) ([]core.Reminder, int64, error) {
	return s.store.ListReminders(ctx, userID, p)
}

func (s *ReminderService) Complete(ctx context.Context, userID, id int64) error {
	if err := s.store.CompleteReminder(ctx, userID, id); err != nil {
		return fmt.Errorf("complete reminder %d: %w", id, err)
	}
	return nil
}
