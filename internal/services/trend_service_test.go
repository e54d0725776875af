package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finledger/internal/core"
)

func TestTrends(t *testing.T) {
	store := newTestStore(t)
	svc := NewTrendService(store)
	ctx := context.Background()
	ref := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	income := categoryOfKind(t, store, core.KindIncome, 0)
	expense := expenseCategory(t, store)

	// December 2024 and February 2025 have activity; January is empty.
	addTransaction(t, store, 1, core.KindIncome, income.ID, 500000, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC))
	addTransaction(t, store, 1, core.KindExpense, expense.ID, 200000, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC))
	addTransaction(t, store, 1, core.KindIncome, income.ID, 100000, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	got, err := svc.Trends(ctx, 1, 6, ref)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}

	// Oldest first, wrapping the year boundary.
	if got[0].Period != "2024-09" || got[5].Period != "2025-02" {
		t.Errorf("range = %s..%s, want 2024-09..2025-02", got[0].Period, got[5].Period)
	}

	dec := got[3]
	if dec.Period != "2024-12" {
		t.Fatalf("entry 3 = %s, want 2024-12", dec.Period)
	}
	if dec.Income.Cents != 500000 || dec.Expense.Cents != 200000 || dec.Balance.Cents != 300000 {
		t.Errorf("december = %+v, want 500000/200000/300000", dec)
	}
	if dec.SavingsRate != 60 {
		t.Errorf("december savings rate = %v, want 60", dec.SavingsRate)
	}

	// Empty months appear as zero entries, not gaps.
	jan := got[4]
	if jan.Period != "2025-01" || jan.Income.Cents != 0 || jan.Expense.Cents != 0 {
		t.Errorf("january = %+v, want zero entry for 2025-01", jan)
	}
}

func TestTrendsDefaultsAndValidation(t *testing.T) {
	svc := NewTrendService(newTestStore(t))
	ctx := context.Background()
	ref := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.Trends(ctx, 1, 0, ref)
	if err != nil {
		t.Fatalf("Trends with default: %v", err)
	}
	if len(got) != DefaultTrendMonths {
		t.Errorf("default len = %d, want %d", len(got), DefaultTrendMonths)
	}

	if _, err := svc.Trends(ctx, 1, -1, ref); !errors.Is(err, core.ErrValidation) {
		t.Errorf("negative months error = %v, want ErrValidation", err)
	}
	if _, err := svc.Trends(ctx, 1, 61, ref); !errors.Is(err, core.ErrValidation) {
		t.Errorf("oversized months error = %v, want ErrValidation", err)
	}

	single, err := svc.Trends(ctx, 1, 1, ref)
	if err != nil {
		t.Fatalf("Trends(1): %v", err)
	}
	if len(single) != 1 || single[0].Period != "2025-07" {
		t.Errorf("single = %+v, want one 2025-07 entry", single)
	}
}

func TestHistoricalBalanceDefaultsToTwelveMonths(t *testing.T) {
	svc := NewTrendService(newTestStore(t))
	ctx := context.Background()
	ref := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.HistoricalBalance(ctx, 1, 0, ref)
	if err != nil {
		t.Fatalf("HistoricalBalance: %v", err)
	}
	if len(got) != DefaultHistoryMonths {
		t.Fatalf("len = %d, want %d", len(got), DefaultHistoryMonths)
	}
	if got[0].Period != "2024-04" || got[11].Period != "2025-03" {
		t.Errorf("range = %s..%s, want 2024-04..2025-03", got[0].Period, got[11].Period)
	}

	if _, err := svc.HistoricalBalance(ctx, 1, 61, ref); !errors.Is(err, core.ErrValidation) {
		t.Errorf("oversized months error = %v, want ErrValidation", err)
	}
}
