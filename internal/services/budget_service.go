package services

import (
	"context"
	"fmt"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// BudgetService manages monthly budgets and compares them against actuals.
type BudgetService struct {
	store ledger.Store
}

func NewBudgetService(store ledger.Store) *BudgetService {
	return &BudgetService{store: store}
}

// Create records a budget. A second active budget for the same user, month
// and year fails with core.ErrConflict.
func (s *BudgetService) Create(ctx context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return s.store.CreateBudget(ctx, b)
}

func (s *BudgetService) Get(ctx context.Context, userID, id int64) (*core.Budget, error) {
	return s.store.GetBudget(ctx, userID, id)
}

func (s *BudgetService) List(ctx context.Context, userID int64, f ledger.BudgetFilter) ([]core.Budget, int64, error) {
	if f.Month < 0 || f.Month > 12 {
		return nil, 0, fmt.Errorf("%w: month %d out of range", core.ErrValidation, f.Month)
	}
	return s.store.ListBudgets(ctx, userID, f)
}

// Update changes name, total amount and description. Month and year are
// fixed at creation.
func (s *BudgetService) Update(ctx context.Context, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return s.store.UpdateBudget(ctx, b)
}

func (s *BudgetService) Delete(ctx context.Context, userID, id int64) error {
	return s.store.SoftDeleteBudget(ctx, userID, id)
}

// SetAllocation assigns (or replaces) the planned amount for one expense
// category of the budget.
func (s *BudgetService) SetAllocation(ctx context.Context, userID, budgetID, categoryID int64, allocated core.Money) (*core.BudgetAllocation, error) {
	if err := allocated.Validate(); err != nil {
		return nil, err
	}

	// Ownership check before touching the allocation.
	if _, err := s.store.GetBudget(ctx, userID, budgetID); err != nil {
		return nil, err
	}

	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, err)
	}
	if cat.Kind != core.KindExpense {
		return nil, fmt.Errorf("%w: category %q is not an expense category", core.ErrValidation, cat.Name)
	}

	return s.store.UpsertAllocation(ctx, budgetID, categoryID, allocated)
}

// Progress compares the budget against the month's actual spending.
//
// TotalSpent covers every active expense of the month, including categories
// without an allocation; the per-category list covers allocated categories
// only. A category is over budget when spending strictly exceeds its
// allocation.
func (s *BudgetService) Progress(ctx context.Context, userID, budgetID int64) (*core.BudgetProgress, error) {
	b, err := s.store.GetBudget(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	sums, err := s.store.SumTransactionsByCategory(ctx, userID, core.KindExpense, b.Window())
	if err != nil {
		return nil, fmt.Errorf("sum spending: %w", err)
	}
	spentByCategory := make(map[int64]int64, len(sums))
	var totalSpent int64
	for _, cs := range sums {
		spentByCategory[cs.CategoryID] = cs.Total
		totalSpent += cs.Total
	}

	progress := &core.BudgetProgress{
		BudgetID: b.ID,
		Name:     b.Name,
		Month:    b.Month,
		Year:     b.Year,
	}

	var totalAllocated int64
	for _, a := range b.Allocations {
		spent := spentByCategory[a.CategoryID]
		totalAllocated += a.Allocated.Cents
		progress.Categories = append(progress.Categories, core.CategoryProgress{
			CategoryID:    a.CategoryID,
			CategoryName:  a.CategoryName,
			CategoryColor: a.CategoryColor,
			CategoryIcon:  a.CategoryIcon,
			Allocated:     a.Allocated,
			Spent:         core.Money{Cents: spent},
			Remaining:     core.Money{Cents: a.Allocated.Cents - spent},
			PercentUsed:   core.Percent(spent, a.Allocated.Cents),
			OverBudget:    spent > a.Allocated.Cents,
		})
	}

	progress.Summary = core.BudgetProgressSummary{
		TotalAllocated: core.Money{Cents: totalAllocated},
		TotalSpent:     core.Money{Cents: totalSpent},
		TotalRemaining: core.Money{Cents: b.TotalAmount.Cents - totalSpent},
		PercentUsed:    core.Percent(totalSpent, b.TotalAmount.Cents),
		OverBudget:     totalSpent > b.TotalAmount.Cents,
	}
	return progress, nil
}
