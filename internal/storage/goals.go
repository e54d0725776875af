package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

func (s *SQLiteLedger) CreateGoal(ctx context.Context, g *core.SavingsGoal) error {
	now := time.Now().UTC()
	if g.Status == "" {
		g.Status = core.GoalInProgress
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO savings_goals (user_id, name, description, target_cents, current_cents,
			status, start_date, target_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Description, g.Target.Cents, g.Current.Cents,
		string(g.Status), fmtNullTime(g.StartDate), fmtNullTime(g.TargetDate), fmtTime(now))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("goal id: %w", err)
	}
	g.ID = id
	g.Active = true
	g.CreatedAt = now
	return nil
}

func scanGoal(row interface{ Scan(...any) error }) (*core.SavingsGoal, error) {
	var g core.SavingsGoal
	var status, createdAt string
	var startDate, targetDate sql.NullString

	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.Target.Cents,
		&g.Current.Cents, &status, &startDate, &targetDate, &createdAt)
	if err != nil {
		return nil, err
	}

	g.Status = core.GoalStatus(status)
	g.Active = true
	if g.StartDate, err = parseNullTime(startDate); err != nil {
		return nil, err
	}
	if g.TargetDate, err = parseNullTime(targetDate); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

const goalColumns = `id, user_id, name, description, target_cents, current_cents,
	status, start_date, target_date, created_at`

func (s *SQLiteLedger) GetGoal(ctx context.Context, userID, id int64) (*core.SavingsGoal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM savings_goals
		WHERE id = ? AND user_id = ? AND active = 1`, id, userID)

	g, err := scanGoal(row)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return g, nil
}

func (s *SQLiteLedger) ListGoals(ctx context.Context, userID int64, p ledger.Page) ([]core.SavingsGoal, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM savings_goals WHERE user_id = ? AND active = 1", userID).
		Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count goals: %w", err)
	}

	page := p.Normalize()
	// Dated goals first, nearest target date first.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM savings_goals
		WHERE user_id = ? AND active = 1
		ORDER BY target_date IS NULL, target_date, id
		LIMIT ? OFFSET ?`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list goals: %w", err)
	}
	return out, total, nil
}

func (s *SQLiteLedger) UpdateGoal(ctx context.Context, g *core.SavingsGoal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = ?, description = ?, target_cents = ?, start_date = ?, target_date = ?, status = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		g.Name, g.Description, g.Target.Cents, fmtNullTime(g.StartDate),
		fmtNullTime(g.TargetDate), string(g.Status), g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteLedger) SoftDeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE savings_goals SET active = 0
		WHERE id = ? AND user_id = ? AND active = 1`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// AppendMovement runs one transaction: a conditional balance update that only
// succeeds when the projected balance stays non-negative, then the movement
// insert. Zero rows affected distinguishes an insufficient balance from a
// missing goal.
func (s *SQLiteLedger) AppendMovement(ctx context.Context, m *core.SavingsMovement) (*core.SavingsGoal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin movement tx: %w", err)
	}
	defer tx.Rollback()

	delta := m.Signed()
	res, err := tx.ExecContext(ctx, `
		UPDATE savings_goals
		SET current_cents = current_cents + ?
		WHERE id = ? AND user_id = ? AND active = 1 AND current_cents + ? >= 0`,
		delta, m.GoalID, m.UserID, delta)
	if err != nil {
		return nil, fmt.Errorf("apply movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("apply movement: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `
			SELECT 1 FROM savings_goals
			WHERE id = ? AND user_id = ? AND active = 1`, m.GoalID, m.UserID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("check goal: %w", err)
		}
		return nil, fmt.Errorf("%w: withdrawal exceeds goal balance", core.ErrInsufficientFunds)
	}

	if m.Date.IsZero() {
		m.Date = time.Now().UTC()
	}
	ins, err := tx.ExecContext(ctx, `
		INSERT INTO savings_movements (goal_id, user_id, kind, name, place, description, amount_cents, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.GoalID, m.UserID, string(m.Kind), m.Name, m.Place, m.Description,
		m.Amount.Cents, fmtTime(m.Date))
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}
	if m.ID, err = ins.LastInsertId(); err != nil {
		return nil, fmt.Errorf("movement id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE savings_goals SET status = ?
		WHERE id = ? AND status = ? AND current_cents >= target_cents`,
		string(core.GoalCompleted), m.GoalID, string(core.GoalInProgress))
	if err != nil {
		return nil, fmt.Errorf("complete goal: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM savings_goals
		WHERE id = ?`, m.GoalID)
	g, err := scanGoal(row)
	if err != nil {
		return nil, fmt.Errorf("reload goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit movement: %w", err)
	}
	return g, nil
}

func (s *SQLiteLedger) ListMovements(ctx context.Context, goalID int64, p ledger.Page) ([]core.SavingsMovement, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM savings_movements WHERE goal_id = ?", goalID).
		Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	page := p.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, goal_id, user_id, kind, name, place, description, amount_cents, date
		FROM savings_movements
		WHERE goal_id = ?
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?`, goalID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsMovement
	for rows.Next() {
		var m core.SavingsMovement
		var kind, date string
		if err := rows.Scan(&m.ID, &m.GoalID, &m.UserID, &kind, &m.Name, &m.Place,
			&m.Description, &m.Amount.Cents, &date); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		m.Kind = core.MovementKind(kind)
		if m.Date, err = parseTime(date); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	return out, total, nil
}
