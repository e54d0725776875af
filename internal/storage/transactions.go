package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

const transactionColumns = `id, user_id, category_id, kind, description, amount_cents,
	date, frequency_id, recurrence_start, recurrence_end, created_at, updated_at`

func (s *SQLiteLedger) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	now := time.Now().UTC()

	var freqID sql.NullInt64
	var recStart, recEnd sql.NullString
	if t.Recurrence != nil {
		freqID = sql.NullInt64{Int64: t.Recurrence.FrequencyID, Valid: true}
		recStart = fmtNullTime(t.Recurrence.StartDate)
		recEnd = fmtNullTime(t.Recurrence.EndDate)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, category_id, kind, description, amount_cents,
			date, frequency_id, recurrence_start, recurrence_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, string(t.Kind), t.Description, t.Amount.Cents,
		fmtTime(t.Date), freqID, recStart, recEnd, fmtTime(now), fmtTime(now))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id
	t.Active = true
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var t core.Transaction
	var kind, date, createdAt, updatedAt string
	var freqID sql.NullInt64
	var recStart, recEnd sql.NullString

	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &kind, &t.Description, &t.Amount.Cents,
		&date, &freqID, &recStart, &recEnd, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.Kind = core.TransactionKind(kind)
	t.Active = true
	if t.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if freqID.Valid {
		rec := core.Recurrence{FrequencyID: freqID.Int64}
		if rec.StartDate, err = parseNullTime(recStart); err != nil {
			return nil, err
		}
		if rec.EndDate, err = parseNullTime(recEnd); err != nil {
			return nil, err
		}
		t.Recurrence = &rec
	}
	return &t, nil
}

func (s *SQLiteLedger) GetTransaction(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND user_id = ? AND active = 1`, id, userID)

	t, err := scanTransaction(row)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return t, nil
}

func (s *SQLiteLedger) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	now := time.Now().UTC()

	var freqID sql.NullInt64
	var recStart, recEnd sql.NullString
	if t.Recurrence != nil {
		freqID = sql.NullInt64{Int64: t.Recurrence.FrequencyID, Valid: true}
		recStart = fmtNullTime(t.Recurrence.StartDate)
		recEnd = fmtNullTime(t.Recurrence.EndDate)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = ?, kind = ?, description = ?, amount_cents = ?, date = ?,
			frequency_id = ?, recurrence_start = ?, recurrence_end = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		t.CategoryID, string(t.Kind), t.Description, t.Amount.Cents, fmtTime(t.Date),
		freqID, recStart, recEnd, fmtTime(now), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	t.UpdatedAt = now
	return nil
}

func (s *SQLiteLedger) SoftDeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET active = 0, updated_at = ?
		WHERE id = ? AND user_id = ? AND active = 1`,
		fmtTime(time.Now().UTC()), id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func transactionPredicates(userID int64, f ledger.TransactionFilter) (string, []any) {
	where := "user_id = ? AND active = 1"
	args := []any{userID}
	if f.Kind != "" {
		where += " AND kind = ?"
		args = append(args, string(f.Kind))
	}
	if f.CategoryID != 0 {
		where += " AND category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.Period != nil {
		where += " AND date >= ? AND date <= ?"
		args = append(args, fmtTime(f.Period.Start), fmtTime(f.Period.End))
	}
	return where, args
}

func (s *SQLiteLedger) ListTransactions(ctx context.Context, userID int64, f ledger.TransactionFilter) ([]core.Transaction, int64, error) {
	where, args := transactionPredicates(userID, f)

	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	page := f.Page.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE `+where+`
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?`, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return out, total, nil
}

func (s *SQLiteLedger) SumTransactions(ctx context.Context, userID int64, kind core.TransactionKind, p core.Period) (int64, int64, error) {
	var total, count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND kind = ? AND active = 1 AND date >= ? AND date <= ?`,
		userID, string(kind), fmtTime(p.Start), fmtTime(p.End)).Scan(&total, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("sum transactions: %w", err)
	}
	return total, count, nil
}

func (s *SQLiteLedger) SumTransactionsByCategory(ctx context.Context, userID int64, kind core.TransactionKind, p core.Period) ([]ledger.CategorySum, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, SUM(amount_cents), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND kind = ? AND active = 1 AND date >= ? AND date <= ?
		GROUP BY category_id
		ORDER BY MIN(id)`,
		userID, string(kind), fmtTime(p.Start), fmtTime(p.End))
	if err != nil {
		return nil, fmt.Errorf("sum transactions by category: %w", err)
	}
	defer rows.Close()

	var out []ledger.CategorySum
	for rows.Next() {
		var cs ledger.CategorySum
		if err := rows.Scan(&cs.CategoryID, &cs.Total, &cs.Count); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sum transactions by category: %w", err)
	}
	return out, nil
}
