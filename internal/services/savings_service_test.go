package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/ledger"
)

func newSavings(t *testing.T) (*SavingsService, ledger.Store, *capturePublisher) {
	t.Helper()
	store := newTestStore(t)
	events := &capturePublisher{}
	return NewSavingsService(store, events), store, events
}

func createGoal(t *testing.T, svc *SavingsService, target int64) *core.SavingsGoal {
	t.Helper()
	g := &core.SavingsGoal{UserID: 1, Name: "Vacation", Target: core.Money{Cents: target}}
	if err := svc.CreateGoal(context.Background(), g); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return g
}

func TestCreateGoalStartsEmpty(t *testing.T) {
	svc, _, _ := newSavings(t)

	g := &core.SavingsGoal{
		UserID:  1,
		Name:    "Vacation",
		Target:  core.Money{Cents: 10000},
		Current: core.Money{Cents: 9999}, // must be ignored
		Status:  core.GoalCompleted,      // must be ignored
	}
	if err := svc.CreateGoal(context.Background(), g); err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Current.Cents != 0 || g.Status != core.GoalInProgress {
		t.Errorf("new goal = %d/%s, want 0/in_progress", g.Current.Cents, g.Status)
	}
}

func TestAddMovementDepositAndWithdraw(t *testing.T) {
	svc, _, _ := newSavings(t)
	ctx := context.Background()
	g := createGoal(t, svc, 100000)

	updated, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 30000},
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if updated.Current.Cents != 30000 {
		t.Errorf("balance = %d, want 30000", updated.Current.Cents)
	}

	updated, err = svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementWithdrawal, Amount: core.Money{Cents: 30000},
	})
	if err != nil {
		t.Fatalf("withdraw to zero: %v", err)
	}
	if updated.Current.Cents != 0 {
		t.Errorf("balance = %d, want 0", updated.Current.Cents)
	}
	if updated.Status != core.GoalInProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}
}

func TestAddMovementOverdraw(t *testing.T) {
	svc, store, _ := newSavings(t)
	ctx := context.Background()
	g := createGoal(t, svc, 100000)

	if _, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 5000},
	}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	_, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementWithdrawal, Amount: core.Money{Cents: 5001},
	})
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("overdraw error = %v, want ErrInsufficientFunds", err)
	}

	// The rejected movement leaves no trace.
	movements, total, err := store.ListMovements(ctx, g.ID, ledger.Page{})
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if total != 1 || len(movements) != 1 {
		t.Errorf("movements = %d, want 1", total)
	}
	got, err := svc.GetGoal(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.Current.Cents != 5000 {
		t.Errorf("balance = %d, want 5000", got.Current.Cents)
	}
}

func TestAddMovementCompletesGoalOnce(t *testing.T) {
	svc, _, events := newSavings(t)
	ctx := context.Background()
	g := createGoal(t, svc, 10000)

	updated, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 10000},
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if updated.Status != core.GoalCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}

	completed := events.byType(amqp.EventGoalCompleted)
	if len(completed) != 1 {
		t.Fatalf("goal.completed events = %d, want 1", len(completed))
	}
	if completed[0].GoalID != g.ID || completed[0].UserID != 1 {
		t.Errorf("event = %+v, want goal %d user 1", completed[0], g.ID)
	}

	// A further deposit into the completed goal publishes nothing new.
	if _, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 500},
	}); err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if got := events.byType(amqp.EventGoalCompleted); len(got) != 1 {
		t.Errorf("goal.completed events after second deposit = %d, want 1", len(got))
	}
}

func TestAddMovementValidation(t *testing.T) {
	svc, _, _ := newSavings(t)
	ctx := context.Background()
	g := createGoal(t, svc, 10000)

	if _, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: "transfer", Amount: core.Money{Cents: 100},
	}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("unknown kind error = %v, want ErrValidation", err)
	}
	if _, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 0},
	}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("zero amount error = %v, want ErrValidation", err)
	}
	if _, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: 9999, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 100},
	}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing goal error = %v, want ErrNotFound", err)
	}
}

func TestListMovementsChecksOwnership(t *testing.T) {
	svc, _, _ := newSavings(t)
	ctx := context.Background()
	g := createGoal(t, svc, 10000)

	if _, _, err := svc.ListMovements(ctx, 2, g.ID, ledger.Page{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user list error = %v, want ErrNotFound", err)
	}
}

func TestUpdateGoalPreservesBalance(t *testing.T) {
	svc, _, _ := newSavings(t)
	ctx := context.Background()
	g := createGoal(t, svc, 10000)

	if _, err := svc.AddMovement(ctx, &core.SavingsMovement{
		GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 4000},
	}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	renamed := &core.SavingsGoal{
		ID: g.ID, UserID: 1, Name: "Trip to Japan",
		Target:  core.Money{Cents: 20000},
		Current: core.Money{Cents: 1}, // must be ignored
	}
	if err := svc.UpdateGoal(ctx, renamed); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.GetGoal(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Trip to Japan" || got.Target.Cents != 20000 {
		t.Errorf("goal = %+v, want renamed with target 20000", got)
	}
	if got.Current.Cents != 4000 {
		t.Errorf("balance = %d, want 4000 (update must not move money)", got.Current.Cents)
	}
}

func TestReminderService(t *testing.T) {
	store := newTestStore(t)
	svc := NewReminderService(store)
	ctx := context.Background()

	r := &core.Reminder{UserID: 1, Title: "Pay rent", DueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
	if err := svc.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, total, err := svc.List(ctx, 1, ledger.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("list = %d, want 1", total)
	}

	if err := svc.Complete(ctx, 1, r.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := svc.Complete(ctx, 2, r.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user complete error = %v, want ErrNotFound", err)
	}

	invalid := &core.Reminder{UserID: 1, Title: ""}
	if err := svc.Create(ctx, invalid); !errors.Is(err, core.ErrValidation) {
		t.Errorf("invalid create error = %v, want ErrValidation", err)
	}
}
