package core

// PeriodSummary aggregates a user's active transactions over one period.
// Balance is income minus expense and may be negative.
type PeriodSummary struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	IncomeCount  int64
	ExpenseCount int64
}

// CategoryBreakdown is one category's share of a period total.
type CategoryBreakdown struct {
	CategoryID    int64
	CategoryName  string
	CategoryColor string
	CategoryIcon  string
	Total         Money
	Count         int64
	Percentage    float64 // 100 * Total / report total, 2dp
}

// BreakdownReport is a per-category decomposition of one transaction kind
// over a period, sorted by total descending.
type BreakdownReport struct {
	Kind       TransactionKind
	Total      Money
	Categories []CategoryBreakdown
}

// MonthSummary is one entry of a trend or historical-balance series.
type MonthSummary struct {
	Month       int
	Year        int
	Period      string // "yyyy-mm"
	Income      Money
	Expense     Money
	Balance     Money
	SavingsRate float64 // 100 * Balance / Income, 0 when income is 0
}

// GoalOverview is the dashboard view of one active goal.
type GoalOverview struct {
	ID       int64
	Name     string
	Target   Money
	Current  Money
	Progress float64
}

// DashboardOverview is the current-month snapshot shown on the dashboard.
type DashboardOverview struct {
	Month            int
	Year             int
	Summary          PeriodSummary
	ActiveGoals      []GoalOverview
	PendingReminders int64
}

// CategoryProgress compares one budget allocation against actual spending
// in the budget month. Remaining may be negative.
type CategoryProgress struct {
	CategoryID    int64
	CategoryName  string
	CategoryColor string
	CategoryIcon  string
	Allocated     Money
	Spent         Money
	Remaining     Money
	PercentUsed   float64
	OverBudget    bool
}

// BudgetProgressSummary totals a budget's progress. TotalSpent covers every
// active expense of the budget month, allocated category or not.
type BudgetProgressSummary struct {
	TotalAllocated Money
	TotalSpent     Money
	TotalRemaining Money
	PercentUsed    float64
	OverBudget     bool
}

// BudgetProgress is the full budget-versus-actual report.
type BudgetProgress struct {
	BudgetID   int64
	Name       string
	Month      int
	Year       int
	Summary    BudgetProgressSummary
	Categories []CategoryProgress
}
