package storage

import (
	"context"
	"fmt"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

func (s *SQLiteLedger) CreateReminder(ctx context.Context, r *core.Reminder) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (user_id, title, due_date)
		VALUES (?, ?, ?)`,
		r.UserID, r.Title, fmtTime(r.DueDate))
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reminder id: %w", err)
	}
	r.ID = id
	r.Active = true
	return nil
}

func (s *SQLiteLedger) ListReminders(ctx context.Context, userID int64, p ledger.Page) ([]core.Reminder, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reminders WHERE user_id = ? AND active = 1", userID).
		Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reminders: %w", err)
	}

	page := p.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, due_date, completed
		FROM reminders
		WHERE user_id = ? AND active = 1
		ORDER BY due_date, id
		LIMIT ? OFFSET ?`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	out, err := scanReminders(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SQLiteLedger) CompleteReminder(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET completed = 1
		WHERE id = ? AND user_id = ? AND active = 1`, id, userID)
	if err != nil {
		return fmt.Errorf("complete reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete reminder: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteLedger) CountPendingReminders(ctx context.Context, userID int64, ref time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reminders
		WHERE user_id = ? AND active = 1 AND completed = 0 AND due_date >= ?`,
		userID, fmtTime(ref)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending reminders: %w", err)
	}
	return n, nil
}

func (s *SQLiteLedger) ListDueReminders(ctx context.Context, ref time.Time) ([]core.Reminder, error) {
	start := time.Date(ref.UTC().Year(), ref.UTC().Month(), ref.UTC().Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, due_date, completed
		FROM reminders
		WHERE active = 1 AND completed = 0 AND due_date >= ? AND due_date <= ?
		ORDER BY id`, fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func scanReminders(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]core.Reminder, error) {
	var out []core.Reminder
	for rows.Next() {
		var r core.Reminder
		var due string
		var completed int
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &due, &completed); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		var err error
		if r.DueDate, err = parseTime(due); err != nil {
			return nil, err
		}
		r.Completed = completed == 1
		r.Active = true
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan reminders: %w", err)
	}
	return out, nil
}
