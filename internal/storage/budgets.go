package storage

import (
	"context"
	"fmt"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

func (s *SQLiteLedger) CreateBudget(ctx context.Context, b *core.Budget) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, name, month, year, total_cents, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Month, b.Year, b.TotalAmount.Cents, b.Description, fmtTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: budget for %04d-%02d", core.ErrConflict, b.Year, b.Month)
		}
		return fmt.Errorf("insert budget: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("budget id: %w", err)
	}
	b.ID = id
	b.Active = true
	b.CreatedAt = now
	return nil
}

func (s *SQLiteLedger) GetBudget(ctx context.Context, userID, id int64) (*core.Budget, error) {
	var b core.Budget
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, month, year, total_cents, description, created_at
		FROM budgets
		WHERE id = ? AND user_id = ? AND active = 1`, id, userID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Month, &b.Year, &b.TotalAmount.Cents, &b.Description, &createdAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	b.Active = true
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	if b.Allocations, err = s.listAllocations(ctx, b.ID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteLedger) listAllocations(ctx context.Context, budgetID int64) ([]core.BudgetAllocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.budget_id, a.category_id, c.name, c.color, c.icon, a.allocated_cents
		FROM budget_allocations a
		JOIN categories c ON c.id = a.category_id
		WHERE a.budget_id = ?
		ORDER BY a.category_id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetAllocation
	for rows.Next() {
		var a core.BudgetAllocation
		if err := rows.Scan(&a.BudgetID, &a.CategoryID, &a.CategoryName,
			&a.CategoryColor, &a.CategoryIcon, &a.Allocated.Cents); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return out, nil
}

func (s *SQLiteLedger) ListBudgets(ctx context.Context, userID int64, f ledger.BudgetFilter) ([]core.Budget, int64, error) {
	where := "user_id = ? AND active = 1"
	args := []any{userID}
	if f.Month != 0 {
		where += " AND month = ?"
		args = append(args, f.Month)
	}
	if f.Year != 0 {
		where += " AND year = ?"
		args = append(args, f.Year)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM budgets WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count budgets: %w", err)
	}

	page := f.Page.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, month, year, total_cents, description, created_at
		FROM budgets
		WHERE `+where+`
		ORDER BY year DESC, month DESC
		LIMIT ? OFFSET ?`, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var createdAt string
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Month, &b.Year,
			&b.TotalAmount.Cents, &b.Description, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan budget: %w", err)
		}
		b.Active = true
		if b.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list budgets: %w", err)
	}

	for i := range out {
		if out[i].Allocations, err = s.listAllocations(ctx, out[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (s *SQLiteLedger) UpdateBudget(ctx context.Context, b *core.Budget) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE budgets SET name = ?, total_cents = ?, description = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		b.Name, b.TotalAmount.Cents, b.Description, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteLedger) SoftDeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE budgets SET active = 0
		WHERE id = ? AND user_id = ? AND active = 1`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteLedger) UpsertAllocation(ctx context.Context, budgetID, categoryID int64, allocated core.Money) (*core.BudgetAllocation, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM budgets WHERE id = ? AND active = 1", budgetID).Scan(&exists)
	if err != nil {
		return nil, mapRowErr(err)
	}

	cat, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO budget_allocations (budget_id, category_id, allocated_cents)
		VALUES (?, ?, ?)
		ON CONFLICT (budget_id, category_id) DO UPDATE SET allocated_cents = excluded.allocated_cents`,
		budgetID, categoryID, allocated.Cents)
	if err != nil {
		return nil, fmt.Errorf("upsert allocation: %w", err)
	}

	return &core.BudgetAllocation{
		BudgetID:      budgetID,
		CategoryID:    categoryID,
		CategoryName:  cat.Name,
		CategoryColor: cat.Color,
		CategoryIcon:  cat.Icon,
		Allocated:     allocated,
	}, nil
}
