package storage

import (
	"context"
	"testing"
	"time"

	"moneymap/internal/core"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestAddExpense(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	food := seedCategory(t, store, 1, "Food")

	expense, err := store.AddExpense(ctx, 1, ExpenseParams{
		Amount:      decimal.RequireFromString("42.50"),
		CategoryID:  &food,
		Description: "groceries",
		OccurredAt:  time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	assert.True(t, expense.Amount.Equal(decimal.RequireFromString("42.50")))
	assert.Equal(t, "groceries", expense.Description)
	assert.NotZero(t, expense.CategoryName)
	assert.Equal(t, "Food", *expense.CategoryName)
	assert.Equal(t, 2024, expense.OccurredAt.Year())
}

func TestAddExpenseDefaultsOccurredAt(t *testing.T) {
	store := newTestStore(t)

	before := time.Now().UTC().Add(-time.Minute)
	expense, err := store.AddExpense(context.Background(), 1, ExpenseParams{
		Amount: decimal.NewFromInt(10),
	})
	assert.NoError(t, err)
	assert.True(t, expense.OccurredAt.After(before))
	// No category is a legal expense.
	assert.Zero(t, expense.CategoryID)
	assert.Zero(t, expense.CategoryName)
}

func TestAddExpenseValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddExpense(ctx, 1, ExpenseParams{Amount: decimal.Zero})
	assert.IsError(t, err, core.ErrValidation)

	_, err = store.AddExpense(ctx, 1, ExpenseParams{Amount: decimal.NewFromInt(-3)})
	assert.IsError(t, err, core.ErrValidation)
}

func TestUpdateExpensePartialFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	food := seedCategory(t, store, 1, "Food")

	created, err := store.AddExpense(ctx, 1, ExpenseParams{
		Amount:      decimal.NewFromInt(10),
		CategoryID:  &food,
		Description: "lunch",
		OccurredAt:  time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	newAmount := decimal.NewFromInt(99)
	updated, err := store.UpdateExpense(ctx, 1, created.ID, core.ExpensePatch{Amount: &newAmount})
	assert.NoError(t, err)

	// Only the amount changed; everything else kept its prior value.
	assert.True(t, updated.Amount.Equal(newAmount))
	assert.NotZero(t, updated.CategoryID)
	assert.Equal(t, food, *updated.CategoryID)
	assert.Equal(t, "lunch", updated.Description)
	assert.True(t, updated.OccurredAt.Equal(created.OccurredAt))
}

func TestUpdateExpenseClearsCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	food := seedCategory(t, store, 1, "Food")

	created, err := store.AddExpense(ctx, 1, ExpenseParams{
		Amount:     decimal.NewFromInt(10),
		CategoryID: &food,
	})
	assert.NoError(t, err)

	var clear int64 = 0
	updated, err := store.UpdateExpense(ctx, 1, created.ID, core.ExpensePatch{CategoryID: &clear})
	assert.NoError(t, err)
	assert.Zero(t, updated.CategoryID)
	assert.Zero(t, updated.CategoryName)
}

func TestUpdateExpenseNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.AddExpense(ctx, 1, ExpenseParams{Amount: decimal.NewFromInt(10)})
	assert.NoError(t, err)

	amount := decimal.NewFromInt(50)
	_, err = store.UpdateExpense(ctx, 1, 999, core.ExpensePatch{Amount: &amount})
	assert.IsError(t, err, core.ErrNotFound)

	// Another owner cannot reach the row.
	_, err = store.UpdateExpense(ctx, 2, created.ID, core.ExpensePatch{Amount: &amount})
	assert.IsError(t, err, core.ErrNotFound)
}

func TestUpdateExpenseRejectsInvalidAmount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.AddExpense(ctx, 1, ExpenseParams{Amount: decimal.NewFromInt(10)})
	assert.NoError(t, err)

	bad := decimal.Zero
	_, err = store.UpdateExpense(ctx, 1, created.ID, core.ExpensePatch{Amount: &bad})
	assert.IsError(t, err, core.ErrValidation)

	// The stored row is untouched.
	got, err := store.GetExpense(ctx, 1, created.ID)
	assert.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(10)))
}

func TestDeleteExpense(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.AddExpense(ctx, 1, ExpenseParams{Amount: decimal.NewFromInt(10)})
	assert.NoError(t, err)

	assert.IsError(t, store.DeleteExpense(ctx, 2, created.ID), core.ErrNotFound)
	assert.IsError(t, store.DeleteExpense(ctx, 1, 999), core.ErrNotFound)
	assert.NoError(t, store.DeleteExpense(ctx, 1, created.ID))
	assert.IsError(t, store.DeleteExpense(ctx, 1, created.ID), core.ErrNotFound)
}

func TestListExpensesNewestFirstAndScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		_, err := store.AddExpense(ctx, 1, ExpenseParams{
			Amount:     decimal.NewFromInt(int64(day)),
			OccurredAt: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		})
		assert.NoError(t, err)
	}
	_, err := store.AddExpense(ctx, 2, ExpenseParams{Amount: decimal.NewFromInt(77)})
	assert.NoError(t, err)

	expenses, err := store.ListExpenses(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(expenses))
	assert.Equal(t, 3, expenses[0].OccurredAt.Day())
	assert.Equal(t, 1, expenses[2].OccurredAt.Day())
}

func TestExpenseAmountsWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	add := func(amount string, when time.Time) {
		t.Helper()
		_, err := store.AddExpense(ctx, 1, ExpenseParams{
			Amount:     decimal.RequireFromString(amount),
			OccurredAt: when,
		})
		assert.NoError(t, err)
	}

	add("42.50", time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC))
	// The leap day sits inside the literal day-31 window.
	add("7.25", time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC))
	add("100.00", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	amounts, err := store.ExpenseAmounts(ctx, 1, "2024-02-01", "2024-02-31")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(amounts))

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("49.75")))

	// Empty window yields no rows, not an error.
	amounts, err = store.ExpenseAmounts(ctx, 1, "2023-01-01", "2023-01-31")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(amounts))
}
