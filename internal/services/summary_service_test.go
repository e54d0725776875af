package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finledger/internal/core"
)

func TestPeriodSummary(t *testing.T) {
	store := newTestStore(t)
	svc := NewSummaryService(store)
	ctx := context.Background()

	income := categoryOfKind(t, store, core.KindIncome, 0)
	expense := expenseCategory(t, store)
	march := core.MonthWindow(2025, time.March)

	addTransaction(t, store, 1, core.KindIncome, income.ID, 300000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	addTransaction(t, store, 1, core.KindExpense, expense.ID, 120000, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	addTransaction(t, store, 1, core.KindExpense, expense.ID, 80000, time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))
	// Other user and other month stay out.
	addTransaction(t, store, 2, core.KindExpense, expense.ID, 5000, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	addTransaction(t, store, 1, core.KindExpense, expense.ID, 7000, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	got, err := svc.PeriodSummary(ctx, 1, march)
	if err != nil {
		t.Fatalf("PeriodSummary: %v", err)
	}
	if got.TotalIncome.Cents != 300000 || got.TotalExpense.Cents != 200000 {
		t.Errorf("totals = %d/%d, want 300000/200000", got.TotalIncome.Cents, got.TotalExpense.Cents)
	}
	if got.Balance.Cents != 100000 {
		t.Errorf("balance = %d, want 100000", got.Balance.Cents)
	}
	if got.IncomeCount != 1 || got.ExpenseCount != 2 {
		t.Errorf("counts = %d/%d, want 1/2", got.IncomeCount, got.ExpenseCount)
	}
}

func TestPeriodSummaryEmpty(t *testing.T) {
	store := newTestStore(t)
	svc := NewSummaryService(store)

	got, err := svc.PeriodSummary(context.Background(), 1, core.MonthWindow(2025, time.March))
	if err != nil {
		t.Fatalf("PeriodSummary: %v", err)
	}
	if got.TotalIncome.Cents != 0 || got.TotalExpense.Cents != 0 || got.Balance.Cents != 0 {
		t.Errorf("empty period should be all zeros, got %+v", got)
	}
}

func TestMonthSummarySavingsRate(t *testing.T) {
	store := newTestStore(t)
	svc := NewSummaryService(store)
	income := categoryOfKind(t, store, core.KindIncome, 0)
	expense := expenseCategory(t, store)

	addTransaction(t, store, 1, core.KindIncome, income.ID, 400000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	addTransaction(t, store, 1, core.KindExpense, expense.ID, 300000, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC))

	got, err := svc.MonthSummary(context.Background(), 1, core.YearMonth{Year: 2025, Month: time.May})
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}
	if got.Period != "2025-05" {
		t.Errorf("period = %q, want 2025-05", got.Period)
	}
	if got.SavingsRate != 25 {
		t.Errorf("savings rate = %v, want 25", got.SavingsRate)
	}

	// A month without income reports rate 0 even with spending.
	addTransaction(t, store, 1, core.KindExpense, expense.ID, 1000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	june, err := svc.MonthSummary(context.Background(), 1, core.YearMonth{Year: 2025, Month: time.June})
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}
	if june.SavingsRate != 0 {
		t.Errorf("no-income savings rate = %v, want 0", june.SavingsRate)
	}
	if june.Balance.Cents != -1000 {
		t.Errorf("balance = %d, want -1000", june.Balance.Cents)
	}
}

func TestBreakdown(t *testing.T) {
	store := newTestStore(t)
	svc := NewSummaryService(store)
	catA := categoryOfKind(t, store, core.KindExpense, 0)
	catB := categoryOfKind(t, store, core.KindExpense, 1)
	catC := categoryOfKind(t, store, core.KindExpense, 2)
	march := core.MonthWindow(2025, time.March)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	addTransaction(t, store, 1, core.KindExpense, catB.ID, 2500, day)
	addTransaction(t, store, 1, core.KindExpense, catA.ID, 5000, day)
	addTransaction(t, store, 1, core.KindExpense, catA.ID, 2500, day)
	addTransaction(t, store, 1, core.KindExpense, catC.ID, 2500, day)

	got, err := svc.Breakdown(context.Background(), 1, core.KindExpense, march)
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}
	if got.Total.Cents != 12500 {
		t.Fatalf("total = %d, want 12500", got.Total.Cents)
	}
	if len(got.Categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(got.Categories))
	}

	// Largest first; the two 2500 groups keep their grouping order.
	if got.Categories[0].CategoryID != catA.ID || got.Categories[0].Total.Cents != 7500 {
		t.Errorf("first = %+v, want category %d with 7500", got.Categories[0], catA.ID)
	}
	if got.Categories[1].CategoryID != catB.ID || got.Categories[2].CategoryID != catC.ID {
		t.Errorf("tie order = %d, %d; want %d, %d",
			got.Categories[1].CategoryID, got.Categories[2].CategoryID, catB.ID, catC.ID)
	}

	if got.Categories[0].Percentage != 60 {
		t.Errorf("first percentage = %v, want 60", got.Categories[0].Percentage)
	}
	if got.Categories[1].Percentage != 20 || got.Categories[2].Percentage != 20 {
		t.Errorf("tie percentages = %v, %v; want 20, 20",
			got.Categories[1].Percentage, got.Categories[2].Percentage)
	}
	if got.Categories[0].CategoryName != catA.Name {
		t.Errorf("category name = %q, want %q", got.Categories[0].CategoryName, catA.Name)
	}
}

func TestBreakdownRejectsUnknownKind(t *testing.T) {
	svc := NewSummaryService(newTestStore(t))
	_, err := svc.Breakdown(context.Background(), 1, "transfer", core.MonthWindow(2025, time.March))
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestOverview(t *testing.T) {
	store := newTestStore(t)
	svc := NewSummaryService(store)
	ctx := context.Background()
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)

	income := categoryOfKind(t, store, core.KindIncome, 0)
	addTransaction(t, store, 1, core.KindIncome, income.ID, 100000, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))

	inProgress := &core.SavingsGoal{UserID: 1, Name: "Vacation", Target: core.Money{Cents: 10000}}
	if err := store.CreateGoal(ctx, inProgress); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	done := &core.SavingsGoal{UserID: 1, Name: "Laptop", Target: core.Money{Cents: 5000}, Status: core.GoalCompleted}
	if err := store.CreateGoal(ctx, done); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	if err := store.CreateReminder(ctx, &core.Reminder{UserID: 1, Title: "Pay rent", DueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	got, err := svc.Overview(ctx, 1, now)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if got.Month != 3 || got.Year != 2025 {
		t.Errorf("month/year = %d/%d, want 3/2025", got.Month, got.Year)
	}
	if got.Summary.TotalIncome.Cents != 100000 {
		t.Errorf("income = %d, want 100000", got.Summary.TotalIncome.Cents)
	}
	if len(got.ActiveGoals) != 1 || got.ActiveGoals[0].Name != "Vacation" {
		t.Errorf("active goals = %+v, want only Vacation", got.ActiveGoals)
	}
	if got.PendingReminders != 1 {
		t.Errorf("pending reminders = %d, want 1", got.PendingReminders)
	}
}
