package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/ledger"
)

// TransactionService handles income and expense bookkeeping.
type TransactionService struct {
	store  ledger.Store
	events EventPublisher
}

func NewTransactionService(store ledger.Store, events EventPublisher) *TransactionService {
	return &TransactionService{store: store, events: events}
}

// Create validates and records a transaction. An expense that pushes the
// month's spending past an active budget triggers a budget.exceeded event.
func (s *TransactionService) Create(ctx context.Context, t *core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.checkCategoryKind(ctx, t.CategoryID, t.Kind); err != nil {
		return err
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	if t.Kind == core.KindExpense {
		s.checkBudgetExceeded(ctx, t)
	}
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID int64, f ledger.TransactionFilter) ([]core.Transaction, int64, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown transaction kind %q", core.ErrValidation, f.Kind)
	}
	return s.store.ListTransactions(ctx, userID, f)
}

// Update replaces the mutable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, t *core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.checkCategoryKind(ctx, t.CategoryID, t.Kind); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}

	if t.Kind == core.KindExpense {
		s.checkBudgetExceeded(ctx, t)
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	return s.store.SoftDeleteTransaction(ctx, userID, id)
}

func (s *TransactionService) ListCategories(ctx context.Context, kind core.TransactionKind) ([]core.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", core.ErrValidation, kind)
	}
	return s.store.ListCategories(ctx, kind)
}

// checkCategoryKind rejects a transaction whose category carries the other
// discriminator, such as an expense filed under a salary category.
func (s *TransactionService) checkCategoryKind(ctx context.Context, categoryID int64, kind core.TransactionKind) error {
	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("category %d: %w", categoryID, err)
	}
	if cat.Kind != kind {
		return fmt.Errorf("%w: category %q is a %s category", core.ErrValidation, cat.Name, cat.Kind)
	}
	return nil
}

// checkBudgetExceeded publishes budget.exceeded when the expense's month has
// an active budget and total spending now passes its amount. Failures are
// logged and swallowed; the write already succeeded.
func (s *TransactionService) checkBudgetExceeded(ctx context.Context, t *core.Transaction) {
	if s.events == nil {
		return
	}

	month := int(t.Date.UTC().Month())
	year := t.Date.UTC().Year()
	budgets, _, err := s.store.ListBudgets(ctx, t.UserID, ledger.BudgetFilter{Month: month, Year: year})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load budget for exceeded check",
			"user_id", t.UserID, "month", month, "year", year, "error", err)
		return
	}
	if len(budgets) == 0 {
		return
	}
	budget := budgets[0]

	spent, _, err := s.store.SumTransactions(ctx, t.UserID, core.KindExpense,
		core.MonthWindow(year, time.Month(month)))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to sum spending for exceeded check",
			"user_id", t.UserID, "budget_id", budget.ID, "error", err)
		return
	}
	if spent <= budget.TotalAmount.Cents {
		return
	}

	event := amqp.NewBudgetExceededEvent(t.UserID, budget.ID, month, year, spent, budget.TotalAmount.Cents)
	if err := s.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget.exceeded",
			"user_id", t.UserID, "budget_id", budget.ID, "error", err)
	}
}
