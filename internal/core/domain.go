package core

import (
	"fmt"
	"strings"
	"time"
)

// TransactionKind discriminates incomes from expenses. Categories carry the
// same discriminator and a transaction may only reference a category of its
// own kind.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether the kind is one of the two known discriminators.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// MovementKind discriminates savings deposits from withdrawals.
type MovementKind string

const (
	MovementDeposit    MovementKind = "deposit"
	MovementWithdrawal MovementKind = "withdrawal"
)

// Valid reports whether the movement kind is known.
func (k MovementKind) Valid() bool {
	return k == MovementDeposit || k == MovementWithdrawal
}

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalCancelled  GoalStatus = "cancelled"
)

// Category is immutable reference data describing a transaction bucket.
type Category struct {
	ID     int64
	Name   string
	Kind   TransactionKind
	Icon   string
	Color  string
	Active bool
}

// Frequency is reference data describing a recurrence cadence. The engine
// never materializes future instances from it; it is informational.
type Frequency struct {
	ID           int64
	Name         string
	IntervalDays int
}

// Recurrence annotates a transaction with its cadence. A zero EndDate means
// the recurrence is open-ended.
type Recurrence struct {
	FrequencyID int64
	StartDate   time.Time
	EndDate     time.Time
}

// Transaction is a single income or expense row. Rows are soft-deleted by
// clearing Active; inactive rows are excluded from every aggregate.
type Transaction struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	Kind        TransactionKind
	Description string
	Amount      Money
	Date        time.Time
	Active      bool
	Recurrence  *Recurrence
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrValidation)
	}
	if t.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrValidation)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown transaction kind %q", ErrValidation, t.Kind)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrValidation)
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if t.Recurrence != nil {
		if t.Recurrence.FrequencyID <= 0 {
			return fmt.Errorf("%w: recurrence missing frequency", ErrValidation)
		}
		if !t.Recurrence.EndDate.IsZero() && t.Recurrence.EndDate.Before(t.Recurrence.StartDate) {
			return fmt.Errorf("%w: recurrence end date before start date", ErrValidation)
		}
	}
	return nil
}

// BudgetAllocation is the planned amount a budget assigns to one category,
// unique per (budget, category) with upsert semantics.
type BudgetAllocation struct {
	BudgetID      int64
	CategoryID    int64
	CategoryName  string
	CategoryColor string
	CategoryIcon  string
	Allocated     Money
}

// Budget is a monthly spending plan. At most one active budget may exist per
// (user, month, year).
type Budget struct {
	ID          int64
	UserID      int64
	Name        string
	Month       int // 1-12
	Year        int
	TotalAmount Money
	Description string
	Active      bool
	Allocations []BudgetAllocation
	CreatedAt   time.Time
}

func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrValidation)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: empty budget name", ErrValidation)
	}
	if b.Month < 1 || b.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrValidation, b.Month)
	}
	if b.Year < 1970 {
		return fmt.Errorf("%w: year %d out of range", ErrValidation, b.Year)
	}
	return b.TotalAmount.Validate()
}

// Window returns the budget month's full calendar window, the interval in
// which actual expenses count against it.
func (b Budget) Window() Period {
	return MonthWindow(b.Year, time.Month(b.Month))
}

// SavingsGoal accumulates deposits toward a target. Current is a derived
// cache of the movement ledger and must never go negative.
type SavingsGoal struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	Target      Money
	Current     Money
	Status      GoalStatus
	StartDate   time.Time
	TargetDate  time.Time
	Active      bool
	CreatedAt   time.Time
}

func (g SavingsGoal) Validate() error {
	if g.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrValidation)
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: empty goal name", ErrValidation)
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if !g.TargetDate.IsZero() && !g.StartDate.IsZero() && g.TargetDate.Before(g.StartDate) {
		return fmt.Errorf("%w: target date before start date", ErrValidation)
	}
	return nil
}

// Progress returns how far the goal is toward its target, in percent with
// two decimal places. A zero target yields 0.
func (g SavingsGoal) Progress() float64 {
	return Percent(g.Current.Cents, g.Target.Cents)
}

// SavingsMovement is one append-only ledger entry against a goal. Movements
// are never updated or deleted; the goal balance is their signed sum.
type SavingsMovement struct {
	ID          int64
	GoalID      int64
	UserID      int64
	Kind        MovementKind
	Name        string
	Place       string
	Description string
	Amount      Money
	Date        time.Time
}

func (m SavingsMovement) Validate() error {
	if m.GoalID <= 0 {
		return fmt.Errorf("%w: missing goal", ErrValidation)
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown movement kind %q", ErrValidation, m.Kind)
	}
	return m.Amount.Validate()
}

// Signed returns the movement amount with withdrawal sign applied.
func (m SavingsMovement) Signed() int64 {
	if m.Kind == MovementWithdrawal {
		return -m.Amount.Cents
	}
	return m.Amount.Cents
}

// Reminder is a dated to-do the worker announces when due.
type Reminder struct {
	ID        int64
	UserID    int64
	Title     string
	DueDate   time.Time
	Completed bool
	Active    bool
}

func (r Reminder) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrValidation)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: empty reminder title", ErrValidation)
	}
	if r.DueDate.IsZero() {
		return fmt.Errorf("%w: missing due date", ErrValidation)
	}
	return nil
}
