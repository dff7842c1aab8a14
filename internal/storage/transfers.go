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

const transferSelect = `SELECT t.id, t.user_id, t.from_category_id, t.to_category_id, t.amount, t.description, t.occurred_at, t.created_at, fc.name, tc.name
FROM transfers t
LEFT JOIN categories fc ON t.from_category_id = fc.id
LEFT JOIN categories tc ON t.to_category_id = tc.id`

// TransferParams holds the input for a new transfer. A zero OccurredAt
// defaults to the current instant.
type TransferParams struct {
	FromCategoryID int64
	ToCategoryID   int64
	Amount         decimal.Decimal
	Description    string
	OccurredAt     time.Time
}

// AddTransfer validates and persists a category-to-category transfer.
// Transfers are immutable once created.
func (s *Store) AddTransfer(ctx context.Context, userID int64, p TransferParams) (*core.Transfer, error) {
	if err := core.ValidateAmount(p.Amount); err != nil {
		return nil, err
	}
	if p.FromCategoryID <= 0 || p.ToCategoryID <= 0 {
		return nil, fmt.Errorf("%w: both source and destination categories are required", core.ErrValidation)
	}
	if p.FromCategoryID == p.ToCategoryID {
		return nil, fmt.Errorf("%w: category %d", core.ErrInvalidTransfer, p.FromCategoryID)
	}

	occurred := p.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transfers (user_id, from_category_id, to_category_id, amount, description, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, p.FromCategoryID, p.ToCategoryID, p.Amount.String(), p.Description, formatTime(occurred), now())
	if err != nil {
		return nil, storageErr("insert transfer", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("insert transfer", err)
	}

	slog.InfoContext(ctx, "Transfer saved",
		"id", id,
		"user_id", userID,
		"from_category_id", p.FromCategoryID,
		"to_category_id", p.ToCategoryID,
		"amount", p.Amount.String())

	return s.getTransfer(ctx, userID, id)
}

// DeleteTransfer removes a transfer owned by userID.
func (s *Store) DeleteTransfer(ctx context.Context, userID, id int64) error {
	return s.execOwned(ctx, "delete transfer",
		`DELETE FROM transfers WHERE id = ? AND user_id = ?`, userID, id)
}

// ListTransfers returns all of the owner's transfers, newest first.
func (s *Store) ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, transferSelect+` WHERE t.user_id = ? ORDER BY t.occurred_at DESC`, userID)
	if err != nil {
		return nil, storageErr("list transfers", err)
	}
	defer rows.Close()

	transfers := []core.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transfers", err)
	}
	return transfers, nil
}

// TransferAmounts returns the raw amounts of the owner's transfers whose
// occurred-at date falls inside [start, end].
func (s *Store) TransferAmounts(ctx context.Context, userID int64, start, end string) ([]decimal.Decimal, error) {
	return s.amountsBetween(ctx,
		`SELECT amount FROM transfers WHERE user_id = ? AND date(occurred_at) BETWEEN ? AND ?`,
		userID, start, end)
}

func (s *Store) getTransfer(ctx context.Context, userID, id int64) (*core.Transfer, error) {
	row := s.db.QueryRowContext(ctx, transferSelect+` WHERE t.id = ? AND t.user_id = ?`, id, userID)
	return scanTransfer(row)
}

func scanTransfer(row rowScanner) (*core.Transfer, error) {
	var (
		t          core.Transfer
		amount     string
		occurredAt string
		createdAt  string
		fromName   sql.NullString
		toName     sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.FromCategoryID, &t.ToCategoryID, &amount, &t.Description, &occurredAt, &createdAt, &fromName, &toName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transfer", core.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("scan transfer", err)
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, storageErr("parse transfer amount", err)
	}
	if fromName.Valid {
		t.FromCategoryName = &fromName.String
	}
	if toName.Valid {
		t.ToCategoryName = &toName.String
	}
	if t.OccurredAt, err = parseTime(occurredAt); err != nil {
		return nil, storageErr("parse transfer timestamp", err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, storageErr("parse transfer timestamp", err)
	}
	return &t, nil
}
