package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

func newTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	s, err := NewSQLiteLedger(filepath.Join(t.TempDir(), "finledger.db"))
	if err != nil {
		t.Fatalf("open test ledger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func firstCategory(t *testing.T, s *SQLiteLedger, kind core.TransactionKind) core.Category {
	t.Helper()
	cats, err := s.ListCategories(context.Background(), kind)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) == 0 {
		t.Fatalf("no seeded %s categories", kind)
	}
	return cats[0]
}

func TestMigrationsSeedCategories(t *testing.T) {
	s := newTestLedger(t)

	income, err := s.ListCategories(context.Background(), core.KindIncome)
	if err != nil {
		t.Fatalf("list income categories: %v", err)
	}
	expense, err := s.ListCategories(context.Background(), core.KindExpense)
	if err != nil {
		t.Fatalf("list expense categories: %v", err)
	}
	if len(income) == 0 || len(expense) == 0 {
		t.Fatalf("seed missing: %d income, %d expense", len(income), len(expense))
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	cat := firstCategory(t, s, core.KindExpense)

	tr := &core.Transaction{
		UserID:      1,
		CategoryID:  cat.ID,
		Kind:        core.KindExpense,
		Description: "groceries",
		Amount:      core.Money{Cents: 4550},
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := s.CreateTransaction(ctx, tr); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tr.ID == 0 {
		t.Fatal("create did not assign an id")
	}

	got, err := s.GetTransaction(ctx, 1, tr.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 4550 || got.Description != "groceries" {
		t.Errorf("get = %+v, want groceries / 4550", got)
	}
	if !got.Date.Equal(tr.Date) {
		t.Errorf("date round-trip = %s, want %s", got.Date, tr.Date)
	}

	if _, err := s.GetTransaction(ctx, 2, tr.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("other user's get error = %v, want ErrNotFound", err)
	}

	got.Description = "weekly groceries"
	got.Amount = core.Money{Cents: 5000}
	if err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.SoftDeleteTransaction(ctx, 1, tr.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, 1, tr.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete error = %v, want ErrNotFound", err)
	}
	if err := s.SoftDeleteTransaction(ctx, 1, tr.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestSumTransactionsExcludesDeletedAndOutOfPeriod(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	cat := firstCategory(t, s, core.KindExpense)
	march := core.MonthWindow(2025, time.March)

	add := func(cents int64, day int) *core.Transaction {
		tr := &core.Transaction{
			UserID: 7, CategoryID: cat.ID, Kind: core.KindExpense,
			Amount: core.Money{Cents: cents},
			Date:   time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC),
		}
		if err := s.CreateTransaction(ctx, tr); err != nil {
			t.Fatalf("create: %v", err)
		}
		return tr
	}

	add(1000, 1)
	add(2500, 31)
	deleted := add(9999, 15)
	if err := s.SoftDeleteTransaction(ctx, 7, deleted.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// April row stays out of the March window.
	outside := &core.Transaction{
		UserID: 7, CategoryID: cat.ID, Kind: core.KindExpense,
		Amount: core.Money{Cents: 777},
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.CreateTransaction(ctx, outside); err != nil {
		t.Fatalf("create: %v", err)
	}

	total, count, err := s.SumTransactions(ctx, 7, core.KindExpense, march)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total != 3500 || count != 2 {
		t.Errorf("sum = (%d, %d), want (3500, 2)", total, count)
	}
}

func TestSumTransactionsByCategory(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	cats, err := s.ListCategories(ctx, core.KindExpense)
	if err != nil || len(cats) < 2 {
		t.Fatalf("need two expense categories: %v", err)
	}
	march := core.MonthWindow(2025, time.March)

	for _, row := range []struct {
		cat   int64
		cents int64
	}{
		{cats[0].ID, 1000},
		{cats[1].ID, 300},
		{cats[0].ID, 500},
	} {
		tr := &core.Transaction{
			UserID: 3, CategoryID: row.cat, Kind: core.KindExpense,
			Amount: core.Money{Cents: row.cents},
			Date:   time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		}
		if err := s.CreateTransaction(ctx, tr); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	sums, err := s.SumTransactionsByCategory(ctx, 3, core.KindExpense, march)
	if err != nil {
		t.Fatalf("sum by category: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d groups, want 2", len(sums))
	}
	if sums[0].CategoryID != cats[0].ID || sums[0].Total != 1500 || sums[0].Count != 2 {
		t.Errorf("first group = %+v, want cat %d / 1500 / 2", sums[0], cats[0].ID)
	}
	if sums[1].CategoryID != cats[1].ID || sums[1].Total != 300 || sums[1].Count != 1 {
		t.Errorf("second group = %+v, want cat %d / 300 / 1", sums[1], cats[1].ID)
	}
}

func TestCreateBudgetConflict(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()

	b := &core.Budget{UserID: 1, Name: "March", Month: 3, Year: 2025, TotalAmount: core.Money{Cents: 100000}}
	if err := s.CreateBudget(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &core.Budget{UserID: 1, Name: "March again", Month: 3, Year: 2025, TotalAmount: core.Money{Cents: 5000}}
	if err := s.CreateBudget(ctx, dup); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate create error = %v, want ErrConflict", err)
	}

	// A deleted budget frees the slot.
	if err := s.SoftDeleteBudget(ctx, 1, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.CreateBudget(ctx, dup); err != nil {
		t.Fatalf("create after delete: %v", err)
	}

	// Other users and other months never collide.
	other := &core.Budget{UserID: 2, Name: "March", Month: 3, Year: 2025, TotalAmount: core.Money{Cents: 100}}
	if err := s.CreateBudget(ctx, other); err != nil {
		t.Fatalf("other user create: %v", err)
	}
}

func TestUpsertAllocation(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	cat := firstCategory(t, s, core.KindExpense)

	b := &core.Budget{UserID: 1, Name: "March", Month: 3, Year: 2025, TotalAmount: core.Money{Cents: 100000}}
	if err := s.CreateBudget(ctx, b); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	a, err := s.UpsertAllocation(ctx, b.ID, cat.ID, core.Money{Cents: 30000})
	if err != nil {
		t.Fatalf("insert allocation: %v", err)
	}
	if a.CategoryName != cat.Name {
		t.Errorf("allocation category name = %q, want %q", a.CategoryName, cat.Name)
	}

	// Second write for the same category replaces the amount.
	if _, err := s.UpsertAllocation(ctx, b.ID, cat.ID, core.Money{Cents: 45000}); err != nil {
		t.Fatalf("update allocation: %v", err)
	}

	got, err := s.GetBudget(ctx, 1, b.ID)
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if len(got.Allocations) != 1 || got.Allocations[0].Allocated.Cents != 45000 {
		t.Errorf("allocations = %+v, want one of 45000", got.Allocations)
	}

	if _, err := s.UpsertAllocation(ctx, 9999, cat.ID, core.Money{Cents: 100}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing budget error = %v, want ErrNotFound", err)
	}
	if _, err := s.UpsertAllocation(ctx, b.ID, 9999, core.Money{Cents: 100}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing category error = %v, want ErrNotFound", err)
	}
}

func TestAppendMovement(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()

	g := &core.SavingsGoal{UserID: 1, Name: "Vacation", Target: core.Money{Cents: 10000}}
	if err := s.CreateGoal(ctx, g); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	t.Run("deposit accumulates", func(t *testing.T) {
		updated, err := s.AppendMovement(ctx, &core.SavingsMovement{
			GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 6000},
		})
		if err != nil {
			t.Fatalf("deposit: %v", err)
		}
		if updated.Current.Cents != 6000 || updated.Status != core.GoalInProgress {
			t.Errorf("goal = %d/%s, want 6000/in_progress", updated.Current.Cents, updated.Status)
		}
	})

	t.Run("overdraw rejected and nothing written", func(t *testing.T) {
		_, err := s.AppendMovement(ctx, &core.SavingsMovement{
			GoalID: g.ID, UserID: 1, Kind: core.MovementWithdrawal, Amount: core.Money{Cents: 7000},
		})
		if !errors.Is(err, core.ErrInsufficientFunds) {
			t.Fatalf("overdraw error = %v, want ErrInsufficientFunds", err)
		}
		got, err := s.GetGoal(ctx, 1, g.ID)
		if err != nil {
			t.Fatalf("get goal: %v", err)
		}
		if got.Current.Cents != 6000 {
			t.Errorf("balance after failed withdrawal = %d, want 6000", got.Current.Cents)
		}
		_, total, err := s.ListMovements(ctx, g.ID, ledger.Page{})
		if err != nil {
			t.Fatalf("list movements: %v", err)
		}
		if total != 1 {
			t.Errorf("movement count = %d, want 1 (failed movement must not persist)", total)
		}
	})

	t.Run("withdrawal to exactly zero allowed", func(t *testing.T) {
		updated, err := s.AppendMovement(ctx, &core.SavingsMovement{
			GoalID: g.ID, UserID: 1, Kind: core.MovementWithdrawal, Amount: core.Money{Cents: 6000},
		})
		if err != nil {
			t.Fatalf("withdraw to zero: %v", err)
		}
		if updated.Current.Cents != 0 {
			t.Errorf("balance = %d, want 0", updated.Current.Cents)
		}
	})

	t.Run("deposit reaching target completes goal", func(t *testing.T) {
		updated, err := s.AppendMovement(ctx, &core.SavingsMovement{
			GoalID: g.ID, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 10000},
		})
		if err != nil {
			t.Fatalf("deposit: %v", err)
		}
		if updated.Status != core.GoalCompleted {
			t.Errorf("status = %s, want completed", updated.Status)
		}
	})

	t.Run("missing goal", func(t *testing.T) {
		_, err := s.AppendMovement(ctx, &core.SavingsMovement{
			GoalID: 9999, UserID: 1, Kind: core.MovementDeposit, Amount: core.Money{Cents: 100},
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("missing goal error = %v, want ErrNotFound", err)
		}
	})
}

func TestReminders(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	today := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mk := func(userID int64, title string, due time.Time) *core.Reminder {
		r := &core.Reminder{UserID: userID, Title: title, DueDate: due}
		if err := s.CreateReminder(ctx, r); err != nil {
			t.Fatalf("create reminder: %v", err)
		}
		return r
	}

	dueToday := mk(1, "Pay rent", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	mk(1, "Renew insurance", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	mk(2, "Car service", time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
	past := mk(1, "Old bill", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	_ = past

	due, err := s.ListDueReminders(ctx, today)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("due today = %d reminders, want 2 (both users)", len(due))
	}

	n, err := s.CountPendingReminders(ctx, 1, today)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if n != 2 {
		t.Errorf("pending for user 1 = %d, want 2", n)
	}

	if err := s.CompleteReminder(ctx, 1, dueToday.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	due, err = s.ListDueReminders(ctx, today)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("due after completion = %d, want 1", len(due))
	}

	if err := s.CompleteReminder(ctx, 2, dueToday.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user complete error = %v, want ErrNotFound", err)
	}
}
