// Package memory provides an in-memory ledger implementation used by the
// local development backend and by service tests. It honors the same
// contract as the SQLite store, including the atomic movement append.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// Ledger is an in-memory ledger.Store. All methods are safe for concurrent
// use; the single mutex also serializes the movement read-check-write.
type Ledger struct {
	mu     sync.Mutex
	nextID int64

	categories   map[int64]core.Category
	categoryIDs  []int64 // insertion order
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
	goals        map[int64]core.SavingsGoal
	movements    map[int64]core.SavingsMovement
	reminders    map[int64]core.Reminder
}

// New returns an empty ledger seeded with the default category set.
func New() *Ledger {
	l := &Ledger{
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		budgets:      make(map[int64]core.Budget),
		goals:        make(map[int64]core.SavingsGoal),
		movements:    make(map[int64]core.SavingsMovement),
		reminders:    make(map[int64]core.Reminder),
	}
	for _, c := range defaultCategories() {
		id := l.next()
		c.ID = id
		c.Active = true
		l.categories[id] = c
		l.categoryIDs = append(l.categoryIDs, id)
	}
	return l
}

func defaultCategories() []core.Category {
	return []core.Category{
		{Name: "Salary", Kind: core.KindIncome, Icon: "briefcase", Color: "#2e7d32"},
		{Name: "Business", Kind: core.KindIncome, Icon: "storefront", Color: "#1565c0"},
		{Name: "Investments", Kind: core.KindIncome, Icon: "trending-up", Color: "#6a1b9a"},
		{Name: "Other income", Kind: core.KindIncome, Icon: "plus-circle", Color: "#00838f"},
		{Name: "Food", Kind: core.KindExpense, Icon: "shopping-cart", Color: "#ef6c00"},
		{Name: "Transport", Kind: core.KindExpense, Icon: "car", Color: "#455a64"},
		{Name: "Housing", Kind: core.KindExpense, Icon: "home", Color: "#5d4037"},
		{Name: "Health", Kind: core.KindExpense, Icon: "heart", Color: "#c62828"},
		{Name: "Entertainment", Kind: core.KindExpense, Icon: "film", Color: "#7b1fa2"},
		{Name: "Education", Kind: core.KindExpense, Icon: "book", Color: "#283593"},
		{Name: "Clothing", Kind: core.KindExpense, Icon: "tag", Color: "#ad1457"},
		{Name: "Other expenses", Kind: core.KindExpense, Icon: "more-horizontal", Color: "#616161"},
	}
}

func (l *Ledger) next() int64 {
	l.nextID++
	return l.nextID
}

// --- transactions ---

func (l *Ledger) CreateTransaction(_ context.Context, t *core.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t.ID = l.next()
	t.Active = true
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	l.transactions[t.ID] = *t
	return nil
}

func (l *Ledger) GetTransaction(_ context.Context, userID, id int64) (*core.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.transactions[id]
	if !ok || !t.Active || t.UserID != userID {
		return nil, core.ErrNotFound
	}
	out := t
	return &out, nil
}

func (l *Ledger) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.transactions[t.ID]
	if !ok || !existing.Active || existing.UserID != t.UserID {
		return core.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	t.Active = true
	l.transactions[t.ID] = *t
	return nil
}

func (l *Ledger) SoftDeleteTransaction(_ context.Context, userID, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.transactions[id]
	if !ok || !t.Active || t.UserID != userID {
		return core.ErrNotFound
	}
	t.Active = false
	t.UpdatedAt = time.Now().UTC()
	l.transactions[id] = t
	return nil
}

func (l *Ledger) matchTransactions(userID int64, f ledger.TransactionFilter) []core.Transaction {
	var rows []core.Transaction
	for _, t := range l.transactions {
		if !t.Active || t.UserID != userID {
			continue
		}
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if f.CategoryID != 0 && t.CategoryID != f.CategoryID {
			continue
		}
		if f.Period != nil && !f.Period.Contains(t.Date) {
			continue
		}
		rows = append(rows, t)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows
}

func (l *Ledger) ListTransactions(_ context.Context, userID int64, f ledger.TransactionFilter) ([]core.Transaction, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := l.matchTransactions(userID, f)
	total := int64(len(rows))
	return paginate(rows, f.Page), total, nil
}

func (l *Ledger) SumTransactions(_ context.Context, userID int64, kind core.TransactionKind, p core.Period) (int64, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total, count int64
	for _, t := range l.transactions {
		if !t.Active || t.UserID != userID || t.Kind != kind || !p.Contains(t.Date) {
			continue
		}
		total += t.Amount.Cents
		count++
	}
	return total, count, nil
}

func (l *Ledger) SumTransactionsByCategory(_ context.Context, userID int64, kind core.TransactionKind, p core.Period) ([]ledger.CategorySum, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Walk rows in insertion order so grouped output is deterministic.
	ids := make([]int64, 0, len(l.transactions))
	for id := range l.transactions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[int64]int)
	var sums []ledger.CategorySum
	for _, id := range ids {
		t := l.transactions[id]
		if !t.Active || t.UserID != userID || t.Kind != kind || !p.Contains(t.Date) {
			continue
		}
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(sums)
			index[t.CategoryID] = i
			sums = append(sums, ledger.CategorySum{CategoryID: t.CategoryID})
		}
		sums[i].Total += t.Amount.Cents
		sums[i].Count++
	}
	return sums, nil
}

// --- categories ---

func (l *Ledger) GetCategory(_ context.Context, id int64) (*core.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.categories[id]
	if !ok || !c.Active {
		return nil, core.ErrNotFound
	}
	out := c
	return &out, nil
}

func (l *Ledger) ListCategories(_ context.Context, kind core.TransactionKind) ([]core.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []core.Category
	for _, id := range l.categoryIDs {
		c := l.categories[id]
		if !c.Active {
			continue
		}
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// --- budgets ---

func (l *Ledger) CreateBudget(_ context.Context, b *core.Budget) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.budgets {
		if existing.Active && existing.UserID == b.UserID &&
			existing.Month == b.Month && existing.Year == b.Year {
			return core.ErrConflict
		}
	}
	b.ID = l.next()
	b.Active = true
	b.CreatedAt = time.Now().UTC()
	l.budgets[b.ID] = *b
	return nil
}

func (l *Ledger) getActiveBudget(userID, id int64) (core.Budget, bool) {
	b, ok := l.budgets[id]
	if !ok || !b.Active || b.UserID != userID {
		return core.Budget{}, false
	}
	return b, true
}

func (l *Ledger) GetBudget(_ context.Context, userID, id int64) (*core.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.getActiveBudget(userID, id)
	if !ok {
		return nil, core.ErrNotFound
	}
	out := b
	out.Allocations = append([]core.BudgetAllocation(nil), b.Allocations...)
	return &out, nil
}

func (l *Ledger) ListBudgets(_ context.Context, userID int64, f ledger.BudgetFilter) ([]core.Budget, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var rows []core.Budget
	for _, b := range l.budgets {
		if !b.Active || b.UserID != userID {
			continue
		}
		if f.Month != 0 && b.Month != f.Month {
			continue
		}
		if f.Year != 0 && b.Year != f.Year {
			continue
		}
		rows = append(rows, b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Month > rows[j].Month
	})
	total := int64(len(rows))
	return paginate(rows, f.Page), total, nil
}

func (l *Ledger) UpdateBudget(_ context.Context, b *core.Budget) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.getActiveBudget(b.UserID, b.ID)
	if !ok {
		return core.ErrNotFound
	}
	existing.Name = b.Name
	existing.TotalAmount = b.TotalAmount
	existing.Description = b.Description
	l.budgets[b.ID] = existing
	return nil
}

func (l *Ledger) SoftDeleteBudget(_ context.Context, userID, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.getActiveBudget(userID, id)
	if !ok {
		return core.ErrNotFound
	}
	b.Active = false
	l.budgets[id] = b
	return nil
}

func (l *Ledger) UpsertAllocation(_ context.Context, budgetID, categoryID int64, allocated core.Money) (*core.BudgetAllocation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.budgets[budgetID]
	if !ok || !b.Active {
		return nil, core.ErrNotFound
	}
	cat, ok := l.categories[categoryID]
	if !ok || !cat.Active {
		return nil, core.ErrNotFound
	}
	alloc := core.BudgetAllocation{
		BudgetID:      budgetID,
		CategoryID:    categoryID,
		CategoryName:  cat.Name,
		CategoryColor: cat.Color,
		CategoryIcon:  cat.Icon,
		Allocated:     allocated,
	}
	replaced := false
	for i := range b.Allocations {
		if b.Allocations[i].CategoryID == categoryID {
			b.Allocations[i] = alloc
			replaced = true
			break
		}
	}
	if !replaced {
		b.Allocations = append(b.Allocations, alloc)
	}
	l.budgets[budgetID] = b
	out := alloc
	return &out, nil
}

// --- goals ---

func (l *Ledger) CreateGoal(_ context.Context, g *core.SavingsGoal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	g.ID = l.next()
	g.Active = true
	if g.Status == "" {
		g.Status = core.GoalInProgress
	}
	g.CreatedAt = time.Now().UTC()
	l.goals[g.ID] = *g
	return nil
}

func (l *Ledger) GetGoal(_ context.Context, userID, id int64) (*core.SavingsGoal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.goals[id]
	if !ok || !g.Active || g.UserID != userID {
		return nil, core.ErrNotFound
	}
	out := g
	return &out, nil
}

func (l *Ledger) ListGoals(_ context.Context, userID int64, p ledger.Page) ([]core.SavingsGoal, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var rows []core.SavingsGoal
	for _, g := range l.goals {
		if g.Active && g.UserID == userID {
			rows = append(rows, g)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].TargetDate, rows[j].TargetDate
		if ti.IsZero() != tj.IsZero() {
			return tj.IsZero() // dated goals first
		}
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return rows[i].ID < rows[j].ID
	})
	total := int64(len(rows))
	return paginate(rows, p), total, nil
}

func (l *Ledger) UpdateGoal(_ context.Context, g *core.SavingsGoal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.goals[g.ID]
	if !ok || !existing.Active || existing.UserID != g.UserID {
		return core.ErrNotFound
	}
	existing.Name = g.Name
	existing.Description = g.Description
	existing.Target = g.Target
	existing.StartDate = g.StartDate
	existing.TargetDate = g.TargetDate
	existing.Status = g.Status
	l.goals[g.ID] = existing
	return nil
}

func (l *Ledger) SoftDeleteGoal(_ context.Context, userID, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.goals[id]
	if !ok || !g.Active || g.UserID != userID {
		return core.ErrNotFound
	}
	g.Active = false
	l.goals[id] = g
	return nil
}

func (l *Ledger) AppendMovement(_ context.Context, m *core.SavingsMovement) (*core.SavingsGoal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.goals[m.GoalID]
	if !ok || !g.Active || g.UserID != m.UserID {
		return nil, core.ErrNotFound
	}
	projected := g.Current.Cents + m.Signed()
	if projected < 0 {
		return nil, core.ErrInsufficientFunds
	}

	m.ID = l.next()
	if m.Date.IsZero() {
		m.Date = time.Now().UTC()
	}
	l.movements[m.ID] = *m

	g.Current = core.Money{Cents: projected}
	if g.Status == core.GoalInProgress && g.Target.Cents > 0 && projected >= g.Target.Cents {
		g.Status = core.GoalCompleted
	}
	l.goals[g.ID] = g
	out := g
	return &out, nil
}

func (l *Ledger) ListMovements(_ context.Context, goalID int64, p ledger.Page) ([]core.SavingsMovement, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var rows []core.SavingsMovement
	for _, m := range l.movements {
		if m.GoalID == goalID {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].ID > rows[j].ID
	})
	total := int64(len(rows))
	return paginate(rows, p), total, nil
}

// --- reminders ---

func (l *Ledger) CreateReminder(_ context.Context, r *core.Reminder) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r.ID = l.next()
	r.Active = true
	l.reminders[r.ID] = *r
	return nil
}

func (l *Ledger) ListReminders(_ context.Context, userID int64, p ledger.Page) ([]core.Reminder, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var rows []core.Reminder
	for _, r := range l.reminders {
		if r.Active && r.UserID == userID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].DueDate.Equal(rows[j].DueDate) {
			return rows[i].DueDate.Before(rows[j].DueDate)
		}
		return rows[i].ID < rows[j].ID
	})
	total := int64(len(rows))
	return paginate(rows, p), total, nil
}

func (l *Ledger) CompleteReminder(_ context.Context, userID, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.reminders[id]
	if !ok || !r.Active || r.UserID != userID {
		return core.ErrNotFound
	}
	r.Completed = true
	l.reminders[id] = r
	return nil
}

func (l *Ledger) CountPendingReminders(_ context.Context, userID int64, ref time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64
	for _, r := range l.reminders {
		if r.Active && !r.Completed && r.UserID == userID && !r.DueDate.Before(ref) {
			n++
		}
	}
	return n, nil
}

func (l *Ledger) ListDueReminders(_ context.Context, ref time.Time) ([]core.Reminder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := ref.UTC().Format("2006-01-02")
	var rows []core.Reminder
	for _, r := range l.reminders {
		if r.Active && !r.Completed && r.DueDate.UTC().Format("2006-01-02") == day {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func paginate[T any](rows []T, p ledger.Page) []T {
	n := p.Normalize()
	start := n.Offset()
	if start >= len(rows) {
		return nil
	}
	end := start + n.Limit
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]T, end-start)
	copy(out, rows[start:end])
	return out
}
