package services

import (
	"context"
	"log/slog"

	"moneymap/internal/amqp"
	"moneymap/internal/core"
	"moneymap/internal/storage"
)

// Ledger records and retrieves individual financial events. Persistence goes
// to the store first; an event message is published afterwards, best-effort,
// so a broker outage never fails a committed write.
type Ledger struct {
	store  *storage.Store
	events *amqp.Client // nil disables publishing
}

func NewLedger(store *storage.Store, events *amqp.Client) *Ledger {
	return &Ledger{
		store:  store,
		events: events,
	}
}

// AddExpense persists a spending event and announces it.
func (l *Ledger) AddExpense(ctx context.Context, userID int64, p storage.ExpenseParams) (*core.Expense, error) {
	expense, err := l.store.AddExpense(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, amqp.EventExpenseCreated, expense.ID, userID)
	return expense, nil
}

// UpdateExpense merges a partial update into an existing expense.
func (l *Ledger) UpdateExpense(ctx context.Context, userID, id int64, patch core.ExpensePatch) (*core.Expense, error) {
	expense, err := l.store.UpdateExpense(ctx, userID, id, patch)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, amqp.EventExpenseUpdated, expense.ID, userID)
	return expense, nil
}

// DeleteExpense removes an expense owned by userID.
func (l *Ledger) DeleteExpense(ctx context.Context, userID, id int64) error {
	if err := l.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	l.publish(ctx, amqp.EventExpenseDeleted, id, userID)
	return nil
}

// ListExpenses returns the owner's expenses, newest first.
func (l *Ledger) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return l.store.ListExpenses(ctx, userID)
}

// AddTransfer persists a category-to-category transfer and announces it.
func (l *Ledger) AddTransfer(ctx context.Context, userID int64, p storage.TransferParams) (*core.Transfer, error) {
	transfer, err := l.store.AddTransfer(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, amqp.EventTransferCreated, transfer.ID, userID)
	return transfer, nil
}

// DeleteTransfer removes a transfer owned by userID.
func (l *Ledger) DeleteTransfer(ctx context.Context, userID, id int64) error {
	if err := l.store.DeleteTransfer(ctx, userID, id); err != nil {
		return err
	}
	l.publish(ctx, amqp.EventTransferDeleted, id, userID)
	return nil
}

// ListTransfers returns the owner's transfers, newest first.
func (l *Ledger) ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error) {
	return l.store.ListTransfers(ctx, userID)
}

func (l *Ledger) publish(ctx context.Context, kind string, id, userID int64) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishLedgerEvent(ctx, kind, id, userID); err != nil {
		// The write already committed; the event is advisory.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind,
			"id", id,
			"error", err)
	}
}
