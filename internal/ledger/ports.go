// Package ledger defines the narrow store contract the engine services
// consume. Implementations live in internal/storage (SQLite) and
// internal/ledger/memory.
package ledger

import (
	"context"
	"time"

	"finledger/internal/core"
)

// CategorySum is one row of a grouped-by-category aggregate.
type CategorySum struct {
	CategoryID int64
	Total      int64 // cents
	Count      int64
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// Normalize clamps the page to sane defaults.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Limit
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	Kind       core.TransactionKind
	CategoryID int64
	Period     *core.Period
	Page       Page
}

// BudgetFilter narrows a budget listing. Zero month/year mean "any".
type BudgetFilter struct {
	Month int
	Year  int
	Page  Page
}

// TransactionStore reads and writes income/expense rows. Every read applies
// the active-only predicate; soft-deleted rows never reach the engine.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	GetTransaction(ctx context.Context, userID, id int64) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	SoftDeleteTransaction(ctx context.Context, userID, id int64) error
	ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, int64, error)

	// SumTransactions totals active rows of one kind within the period.
	SumTransactions(ctx context.Context, userID int64, kind core.TransactionKind, p core.Period) (total int64, count int64, err error)

	// SumTransactionsByCategory groups the same rows by category.
	SumTransactionsByCategory(ctx context.Context, userID int64, kind core.TransactionKind, p core.Period) ([]CategorySum, error)
}

// CategoryStore reads reference categories.
type CategoryStore interface {
	GetCategory(ctx context.Context, id int64) (*core.Category, error)
	ListCategories(ctx context.Context, kind core.TransactionKind) ([]core.Category, error)
}

// BudgetStore reads and writes budgets and their allocations.
type BudgetStore interface {
	// CreateBudget fails with core.ErrConflict when an active budget already
	// exists for the same user, month and year.
	CreateBudget(ctx context.Context, b *core.Budget) error
	GetBudget(ctx context.Context, userID, id int64) (*core.Budget, error)
	ListBudgets(ctx context.Context, userID int64, f BudgetFilter) ([]core.Budget, int64, error)
	UpdateBudget(ctx context.Context, b *core.Budget) error
	SoftDeleteBudget(ctx context.Context, userID, id int64) error
	UpsertAllocation(ctx context.Context, budgetID, categoryID int64, allocated core.Money) (*core.BudgetAllocation, error)
}

// GoalStore reads and writes savings goals and their movement ledger.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *core.SavingsGoal) error
	GetGoal(ctx context.Context, userID, id int64) (*core.SavingsGoal, error)
	ListGoals(ctx context.Context, userID int64, p Page) ([]core.SavingsGoal, int64, error)
	UpdateGoal(ctx context.Context, g *core.SavingsGoal) error
	SoftDeleteGoal(ctx context.Context, userID, id int64) error

	// AppendMovement atomically inserts the movement and applies its signed
	// amount to the goal balance. A withdrawal that would drive the balance
	// negative fails with core.ErrInsufficientFunds and writes nothing. When
	// a deposit reaches the target the goal status becomes completed. The
	// updated goal is returned.
	AppendMovement(ctx context.Context, m *core.SavingsMovement) (*core.SavingsGoal, error)

	// ListMovements pages the goal's ledger, newest first.
	ListMovements(ctx context.Context, goalID int64, p Page) ([]core.SavingsMovement, int64, error)
}

// ReminderStore reads and writes reminders.
type ReminderStore interface {
	CreateReminder(ctx context.Context, r *core.Reminder) error
	ListReminders(ctx context.Context, userID int64, p Page) ([]core.Reminder, int64, error)
	CompleteReminder(ctx context.Context, userID, id int64) error

	// CountPendingReminders counts active, uncompleted reminders due at or
	// after the reference time.
	CountPendingReminders(ctx context.Context, userID int64, ref time.Time) (int64, error)

	// ListDueReminders returns every active, uncompleted reminder due on the
	// reference day, across all users. Used by the notification worker.
	ListDueReminders(ctx context.Context, ref time.Time) ([]core.Reminder, error)
}

// Store is the full ledger contract.
type Store interface {
	TransactionStore
	CategoryStore
	BudgetStore
	GoalStore
	ReminderStore
}
