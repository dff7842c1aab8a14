package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"moneymap/internal/core"

	"github.com/shopspring/decimal"
)

const budgetColumns = `b.id, b.user_id, b.category_id, b.amount, b.start_date, b.end_date, b.created_at, c.name`

const budgetSelect = `SELECT ` + budgetColumns + `
FROM budgets b
LEFT JOIN categories c ON b.category_id = c.id`

// UpsertBudget writes a budget cap for (owner, category, window) with
// merge-on-write semantics: when an existing row's window overlaps the new
// one under the closed-interval test, that row's amount and window are
// replaced in place; otherwise a new row is inserted.
//
// The overlap search and the write run in one transaction, so two competing
// upserts for the same (owner, category) cannot both miss the search and
// insert duplicate rows. Should duplicates exist anyway (rows written before
// this guarantee), the lowest id wins deterministically and the stale rows
// are left untouched.
func (s *Store) UpsertBudget(ctx context.Context, userID, categoryID int64, amount decimal.Decimal, start, end core.Date) (*core.Budget, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if categoryID <= 0 {
		return nil, fmt.Errorf("%w: category is required", core.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin budget upsert", err)
	}
	defer tx.Rollback()

	var budgetID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM budgets
		 WHERE user_id = ? AND category_id = ? AND start_date <= ? AND end_date >= ?
		 ORDER BY id LIMIT 1`,
		userID, categoryID, end.String(), start.String(),
	).Scan(&budgetID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, category_id, amount, start_date, end_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, categoryID, amount.String(), start.String(), end.String(), now())
		if err != nil {
			return nil, storageErr("insert budget", err)
		}
		budgetID, err = res.LastInsertId()
		if err != nil {
			return nil, storageErr("insert budget", err)
		}
	case err != nil:
		return nil, storageErr("search overlapping budgets", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE budgets SET amount = ?, start_date = ?, end_date = ? WHERE id = ?`,
			amount.String(), start.String(), end.String(), budgetID); err != nil {
			return nil, storageErr("merge budget", err)
		}
	}

	budget, err := scanBudget(tx.QueryRowContext(ctx, budgetSelect+` WHERE b.id = ?`, budgetID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit budget upsert", err)
	}

	slog.InfoContext(ctx, "Budget upserted",
		"id", budget.ID,
		"user_id", userID,
		"category_id", categoryID,
		"window", start.String()+".."+end.String())

	return budget, nil
}

// QueryBudgets returns the owner's budgets, newest window first. With a
// range, only rows whose window overlaps it are returned.
func (s *Store) QueryBudgets(ctx context.Context, userID int64, rng *core.DateRange) ([]core.Budget, error) {
	query := budgetSelect + ` WHERE b.user_id = ?`
	args := []any{userID}
	if rng != nil {
		query += ` AND b.start_date <= ? AND b.end_date >= ?`
		args = append(args, rng.End, rng.Start)
	}
	query += ` ORDER BY b.start_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query budgets", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query budgets", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget owned by userID.
func (s *Store) DeleteBudget(ctx context.Context, userID, id int64) error {
	return s.execOwned(ctx, "delete budget",
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, userID, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (*core.Budget, error) {
	var (
		b          core.Budget
		amount     string
		start, end string
		createdAt  string
		name       sql.NullString
	)
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &amount, &start, &end, &createdAt, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: budget", core.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("scan budget", err)
	}

	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, storageErr("parse budget amount", err)
	}
	if b.StartDate, err = core.ParseDate(start); err != nil {
		return nil, storageErr("parse budget start date", err)
	}
	if b.EndDate, err = core.ParseDate(end); err != nil {
		return nil, storageErr("parse budget end date", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, storageErr("parse budget timestamp", err)
	}
	if name.Valid {
		b.CategoryName = &name.String
	}
	return &b, nil
}
