package http

import (
	"time"

	"finledger/internal/core"
)

const dateLayout = "2006-01-02"

func renderDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

type recurrenceView struct {
	FrequencyID int64  `json:"frequency_id"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

type transactionView struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Kind        string          `json:"kind"`
	Description string          `json:"description,omitempty"`
	Amount      string          `json:"amount"`
	Date        string          `json:"date"`
	Recurrence  *recurrenceView `json:"recurrence,omitempty"`
}

func renderTransaction(t core.Transaction) transactionView {
	v := transactionView{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Kind:        string(t.Kind),
		Description: t.Description,
		Amount:      t.Amount.String(),
		Date:        renderDate(t.Date),
	}
	if t.Recurrence != nil {
		v.Recurrence = &recurrenceView{
			FrequencyID: t.Recurrence.FrequencyID,
			StartDate:   renderDate(t.Recurrence.StartDate),
			EndDate:     renderDate(t.Recurrence.EndDate),
		}
	}
	return v
}

type categoryView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func renderCategory(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Kind: string(c.Kind), Icon: c.Icon, Color: c.Color}
}

type periodSummaryView struct {
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Balance      string `json:"balance"`
	IncomeCount  int64  `json:"income_count"`
	ExpenseCount int64  `json:"expense_count"`
}

func renderPeriodSummary(s core.PeriodSummary) periodSummaryView {
	return periodSummaryView{
		TotalIncome:  s.TotalIncome.String(),
		TotalExpense: s.TotalExpense.String(),
		Balance:      s.Balance.String(),
		IncomeCount:  s.IncomeCount,
		ExpenseCount: s.ExpenseCount,
	}
}

type breakdownCategoryView struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Color        string  `json:"color,omitempty"`
	Icon         string  `json:"icon,omitempty"`
	Total        string  `json:"total"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"`
}

type breakdownView struct {
	Kind       string                  `json:"kind"`
	Total      string                  `json:"total"`
	Categories []breakdownCategoryView `json:"categories"`
}

func renderBreakdown(b core.BreakdownReport) breakdownView {
	v := breakdownView{
		Kind:       string(b.Kind),
		Total:      b.Total.String(),
		Categories: make([]breakdownCategoryView, 0, len(b.Categories)),
	}
	for _, c := range b.Categories {
		v.Categories = append(v.Categories, breakdownCategoryView{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Color:        c.CategoryColor,
			Icon:         c.CategoryIcon,
			Total:        c.Total.String(),
			Count:        c.Count,
			Percentage:   c.Percentage,
		})
	}
	return v
}

type monthSummaryView struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Period      string  `json:"period"`
	Income      string  `json:"income"`
	Expense     string  `json:"expense"`
	Balance     string  `json:"balance"`
	SavingsRate float64 `json:"savings_rate"`
}

func renderMonthSummaries(months []core.MonthSummary) []monthSummaryView {
	out := make([]monthSummaryView, 0, len(months))
	for _, m := range months {
		out = append(out, monthSummaryView{
			Month:       m.Month,
			Year:        m.Year,
			Period:      m.Period,
			Income:      m.Income.String(),
			Expense:     m.Expense.String(),
			Balance:     m.Balance.String(),
			SavingsRate: m.SavingsRate,
		})
	}
	return out
}

type goalOverviewView struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Target   string  `json:"target"`
	Current  string  `json:"current"`
	Progress float64 `json:"progress"`
}

type overviewView struct {
	Month            int                `json:"month"`
	Year             int                `json:"year"`
	Summary          periodSummaryView  `json:"summary"`
	ActiveGoals      []goalOverviewView `json:"active_goals"`
	PendingReminders int64              `json:"pending_reminders"`
}

func renderOverview(o core.DashboardOverview) overviewView {
	v := overviewView{
		Month:            o.Month,
		Year:             o.Year,
		Summary:          renderPeriodSummary(o.Summary),
		ActiveGoals:      make([]goalOverviewView, 0, len(o.ActiveGoals)),
		PendingReminders: o.PendingReminders,
	}
	for _, g := range o.ActiveGoals {
		v.ActiveGoals = append(v.ActiveGoals, goalOverviewView{
			ID:       g.ID,
			Name:     g.Name,
			Target:   g.Target.String(),
			Current:  g.Current.String(),
			Progress: g.Progress,
		})
	}
	return v
}

type allocationView struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Color        string `json:"color,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Allocated    string `json:"allocated"`
}

func renderAllocation(a core.BudgetAllocation) allocationView {
	return allocationView{
		CategoryID:   a.CategoryID,
		CategoryName: a.CategoryName,
		Color:        a.CategoryColor,
		Icon:         a.CategoryIcon,
		Allocated:    a.Allocated.String(),
	}
}

type budgetView struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Month       int              `json:"month"`
	Year        int              `json:"year"`
	TotalAmount string           `json:"total_amount"`
	Description string           `json:"description,omitempty"`
	Allocations []allocationView `json:"allocations"`
}

func renderBudget(b core.Budget) budgetView {
	v := budgetView{
		ID:          b.ID,
		Name:        b.Name,
		Month:       b.Month,
		Year:        b.Year,
		TotalAmount: b.TotalAmount.String(),
		Description: b.Description,
		Allocations: make([]allocationView, 0, len(b.Allocations)),
	}
	for _, a := range b.Allocations {
		v.Allocations = append(v.Allocations, renderAllocation(a))
	}
	return v
}

type categoryProgressView struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Color        string  `json:"color,omitempty"`
	Icon         string  `json:"icon,omitempty"`
	Allocated    string  `json:"allocated"`
	Spent        string  `json:"spent"`
	Remaining    string  `json:"remaining"`
	PercentUsed  float64 `json:"percent_used"`
	OverBudget   bool    `json:"over_budget"`
}

type budgetProgressView struct {
	BudgetID int64  `json:"budget_id"`
	Name     string `json:"name"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Summary  struct {
		TotalAllocated string  `json:"total_allocated"`
		TotalSpent     string  `json:"total_spent"`
		TotalRemaining string  `json:"total_remaining"`
		PercentUsed    float64 `json:"percent_used"`
		OverBudget     bool    `json:"over_budget"`
	} `json:"summary"`
	Categories []categoryProgressView `json:"categories"`
}

func renderBudgetProgress(p core.BudgetProgress) budgetProgressView {
	v := budgetProgressView{
		BudgetID:   p.BudgetID,
		Name:       p.Name,
		Month:      p.Month,
		Year:       p.Year,
		Categories: make([]categoryProgressView, 0, len(p.Categories)),
	}
	v.Summary.TotalAllocated = p.Summary.TotalAllocated.String()
	v.Summary.TotalSpent = p.Summary.TotalSpent.String()
	v.Summary.TotalRemaining = p.Summary.TotalRemaining.String()
	v.Summary.PercentUsed = p.Summary.PercentUsed
	v.Summary.OverBudget = p.Summary.OverBudget
	for _, c := range p.Categories {
		v.Categories = append(v.Categories, categoryProgressView{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Color:        c.CategoryColor,
			Icon:         c.CategoryIcon,
			Allocated:    c.Allocated.String(),
			Spent:        c.Spent.String(),
			Remaining:    c.Remaining.String(),
			PercentUsed:  c.PercentUsed,
			OverBudget:   c.OverBudget,
		})
	}
	return v
}

type goalView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Target      string  `json:"target"`
	Current     string  `json:"current"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	StartDate   string  `json:"start_date,omitempty"`
	TargetDate  string  `json:"target_date,omitempty"`

	// Latest movements, populated on the goal detail view only.
	Movements []movementView `json:"movements,omitempty"`
}

func renderGoal(g core.SavingsGoal) goalView {
	return goalView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Target:      g.Target.String(),
		Current:     g.Current.String(),
		Status:      string(g.Status),
		Progress:    g.Progress(),
		StartDate:   renderDate(g.StartDate),
		TargetDate:  renderDate(g.TargetDate),
	}
}

type movementView struct {
	ID          int64  `json:"id"`
	GoalID      int64  `json:"goal_id"`
	Kind        string `json:"kind"`
	Name        string `json:"name,omitempty"`
	Place       string `json:"place,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func renderMovement(m core.SavingsMovement) movementView {
	return movementView{
		ID:          m.ID,
		GoalID:      m.GoalID,
		Kind:        string(m.Kind),
		Name:        m.Name,
		Place:       m.Place,
		Description: m.Description,
		Amount:      m.Amount.String(),
		Date:        renderDate(m.Date),
	}
}

type reminderView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
	Completed bool   `json:"completed"`
}

func renderReminder(r core.Reminder) reminderView {
	return reminderView{
		ID:        r.ID,
		Title:     r.Title,
		DueDate:   renderDate(r.DueDate),
		Completed: r.Completed,
	}
}
