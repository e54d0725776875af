package storage

import (
	"context"
	"fmt"

	"finledger/internal/core"
)

func (s *SQLiteLedger) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	var c core.Category
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, icon, color
		FROM categories
		WHERE id = ? AND active = 1`, id).
		Scan(&c.ID, &c.Name, &kind, &c.Icon, &c.Color)
	if err != nil {
		return nil, mapRowErr(err)
	}
	c.Kind = core.TransactionKind(kind)
	c.Active = true
	return &c, nil
}

func (s *SQLiteLedger) ListCategories(ctx context.Context, kind core.TransactionKind) ([]core.Category, error) {
	query := "SELECT id, name, kind, icon, color FROM categories WHERE active = 1"
	args := []any{}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var k string
		if err := rows.Scan(&c.ID, &c.Name, &k, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.TransactionKind(k)
		c.Active = true
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}
