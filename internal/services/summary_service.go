package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// SummaryService computes period aggregates and the dashboard overview.
type SummaryService struct {
	store ledger.Store
}

func NewSummaryService(store ledger.Store) *SummaryService {
	return &SummaryService{store: store}
}

// PeriodSummary totals active incomes and expenses over the period.
func (s *SummaryService) PeriodSummary(ctx context.Context, userID int64, p core.Period) (*core.PeriodSummary, error) {
	income, incomeCount, err := s.store.SumTransactions(ctx, userID, core.KindIncome, p)
	if err != nil {
		return nil, fmt.Errorf("sum income: %w", err)
	}
	expense, expenseCount, err := s.store.SumTransactions(ctx, userID, core.KindExpense, p)
	if err != nil {
		return nil, fmt.Errorf("sum expense: %w", err)
	}

	return &core.PeriodSummary{
		TotalIncome:  core.Money{Cents: income},
		TotalExpense: core.Money{Cents: expense},
		Balance:      core.Money{Cents: income - expense},
		IncomeCount:  incomeCount,
		ExpenseCount: expenseCount,
	}, nil
}

// MonthSummary aggregates one calendar month, including its savings rate.
func (s *SummaryService) MonthSummary(ctx context.Context, userID int64, ym core.YearMonth) (*core.MonthSummary, error) {
	summary, err := s.PeriodSummary(ctx, userID, ym.Window())
	if err != nil {
		return nil, err
	}

	return &core.MonthSummary{
		Month:       int(ym.Month),
		Year:        ym.Year,
		Period:      ym.Key(),
		Income:      summary.TotalIncome,
		Expense:     summary.TotalExpense,
		Balance:     summary.Balance,
		SavingsRate: core.Percent(summary.Balance.Cents, summary.TotalIncome.Cents),
	}, nil
}

// Breakdown decomposes one kind over a period by category, largest total
// first. Ties keep the stores' grouping order. Percentages are shares of the
// kind's period total.
func (s *SummaryService) Breakdown(ctx context.Context, userID int64, kind core.TransactionKind, p core.Period) (*core.BreakdownReport, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", core.ErrValidation, kind)
	}

	sums, err := s.store.SumTransactionsByCategory(ctx, userID, kind, p)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}

	var total int64
	for _, cs := range sums {
		total += cs.Total
	}

	report := &core.BreakdownReport{
		Kind:  kind,
		Total: core.Money{Cents: total},
	}
	for _, cs := range sums {
		cat, err := s.store.GetCategory(ctx, cs.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("category %d: %w", cs.CategoryID, err)
		}
		report.Categories = append(report.Categories, core.CategoryBreakdown{
			CategoryID:    cs.CategoryID,
			CategoryName:  cat.Name,
			CategoryColor: cat.Color,
			CategoryIcon:  cat.Icon,
			Total:         core.Money{Cents: cs.Total},
			Count:         cs.Count,
			Percentage:    core.Percent(cs.Total, total),
		})
	}

	sort.SliceStable(report.Categories, func(i, j int) bool {
		return report.Categories[i].Total.Cents > report.Categories[j].Total.Cents
	})
	return report, nil
}

// Overview builds the current-month dashboard snapshot: totals, active
// in-progress goals and the pending reminder count.
func (s *SummaryService) Overview(ctx context.Context, userID int64, now time.Time) (*core.DashboardOverview, error) {
	now = now.UTC()
	ym := core.YearMonth{Year: now.Year(), Month: now.Month()}

	summary, err := s.PeriodSummary(ctx, userID, ym.Window())
	if err != nil {
		return nil, err
	}

	goals, _, err := s.store.ListGoals(ctx, userID, ledger.Page{Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	var overviews []core.GoalOverview
	for _, g := range goals {
		if g.Status != core.GoalInProgress {
			continue
		}
		overviews = append(overviews, core.GoalOverview{
			ID:       g.ID,
			Name:     g.Name,
			Target:   g.Target,
			Current:  g.Current,
			Progress: g.Progress(),
		})
	}

	pending, err := s.store.CountPendingReminders(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("count pending reminders: %w", err)
	}

	return &core.DashboardOverview{
		Month:            int(ym.Month),
		Year:             ym.Year,
		Summary:          *summary,
		ActiveGoals:      overviews,
		PendingReminders: pending,
	}, nil
}
