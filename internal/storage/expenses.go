package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moneymap/internal/core"

	"github.com/shopspring/decimal"
)

const expenseSelect = `SELECT e.id, e.user_id, e.category_id, e.amount, e.description, e.occurred_at, e.created_at, c.name
FROM expenses e
LEFT JOIN categories c ON e.category_id = c.id`

// ExpenseParams holds the input for a new expense. A zero OccurredAt
// defaults to the current instant.
type ExpenseParams struct {
	Amount      decimal.Decimal
	CategoryID  *int64
	Description string
	OccurredAt  time.Time
}

// AddExpense validates and persists a spending event, returning the stored
// row joined with its category name.
func (s *Store) AddExpense(ctx context.Context, userID int64, p ExpenseParams) (*core.Expense, error) {
	if err := core.ValidateAmount(p.Amount); err != nil {
		return nil, err
	}
	occurred := p.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, amount, description, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, nullableID(p.CategoryID), p.Amount.String(), p.Description, formatTime(occurred), now())
	if err != nil {
		return nil, storageErr("insert expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("insert expense", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", userID,
		"amount", p.Amount.String())

	return s.GetExpense(ctx, userID, id)
}

// GetExpense loads a single expense scoped to its owner.
func (s *Store) GetExpense(ctx context.Context, userID, id int64) (*core.Expense, error) {
	row := s.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = ? AND e.user_id = ?`, id, userID)
	return scanExpense(row)
}

// UpdateExpense merges a partial update into an existing row: each present
// patch field replaces the stored value, absent fields keep it.
func (s *Store) UpdateExpense(ctx context.Context, userID, id int64, patch core.ExpensePatch) (*core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetExpense(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	amount := existing.Amount
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	categoryID := existing.CategoryID
	if patch.CategoryID != nil {
		if *patch.CategoryID == 0 {
			categoryID = nil
		} else {
			categoryID = patch.CategoryID
		}
	}
	description := existing.Description
	if patch.Description != nil {
		description = *patch.Description
	}
	occurred := existing.OccurredAt
	if patch.OccurredAt != nil {
		occurred = *patch.OccurredAt
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, category_id = ?, description = ?, occurred_at = ?
		 WHERE id = ? AND user_id = ?`,
		amount.String(), nullableID(categoryID), description, formatTime(occurred), id, userID); err != nil {
		return nil, storageErr("update expense", err)
	}

	return s.GetExpense(ctx, userID, id)
}

// DeleteExpense removes an expense owned by userID.
func (s *Store) DeleteExpense(ctx context.Context, userID, id int64) error {
	return s.execOwned(ctx, "delete expense",
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, userID, id)
}

// ListExpenses returns all of the owner's expenses, newest first.
func (s *Store) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, expenseSelect+` WHERE e.user_id = ? ORDER BY e.occurred_at DESC`, userID)
	if err != nil {
		return nil, storageErr("list expenses", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list expenses", err)
	}
	return expenses, nil
}

// ExpenseAmounts returns the raw amounts of the owner's expenses whose
// occurred-at date falls inside [start, end]. Bounds are YYYY-MM-DD strings
// compared against the normalized date, which keeps the literal day-31
// summary bound working for short months.
func (s *Store) ExpenseAmounts(ctx context.Context, userID int64, start, end string) ([]decimal.Decimal, error) {
	return s.amountsBetween(ctx,
		`SELECT amount FROM expenses WHERE user_id = ? AND date(occurred_at) BETWEEN ? AND ?`,
		userID, start, end)
}

func (s *Store) amountsBetween(ctx context.Context, query string, userID int64, start, end string) ([]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, storageErr("query amounts", err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storageErr("scan amount", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, storageErr("parse amount", err)
		}
		amounts = append(amounts, amount)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query amounts", err)
	}
	return amounts, nil
}

func scanExpense(row rowScanner) (*core.Expense, error) {
	var (
		e          core.Expense
		categoryID sql.NullInt64
		amount     string
		occurredAt string
		createdAt  string
		name       sql.NullString
	)
	err := row.Scan(&e.ID, &e.UserID, &categoryID, &amount, &e.Description, &occurredAt, &createdAt, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense", core.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("scan expense", err)
	}

	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, storageErr("parse expense amount", err)
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.Int64
	}
	if name.Valid {
		e.CategoryName = &name.String
	}
	if e.OccurredAt, err = parseTime(occurredAt); err != nil {
		return nil, storageErr("parse expense timestamp", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, storageErr("parse expense timestamp", err)
	}
	return &e, nil
}
