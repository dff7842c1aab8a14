package services

import (
	"context"
	"fmt"

	"moneymap/internal/core"
	"moneymap/internal/storage"

	"github.com/shopspring/decimal"
)

// Summary derives monthly reports from raw rows on every read. It holds no
// state of its own and never mutates the store.
type Summary struct {
	store *storage.Store
}

func NewSummary(store *storage.Store) *Summary {
	return &Summary{store: store}
}

// Monthly reports the owner's expense and transfer totals for a month plus
// the budgets whose windows overlap it. The window's upper bound is a
// literal day 31 for every month (see core.MonthWindow). Totals over zero
// rows are zero, never absent.
func (s *Summary) Monthly(ctx context.Context, userID int64, month, year int) (*core.MonthlySummary, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: owner is required", core.ErrValidation)
	}
	if err := core.ValidateMonth(year, month); err != nil {
		return nil, err
	}

	start, end := core.MonthWindow(year, month)

	expenseAmounts, err := s.store.ExpenseAmounts(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	transferAmounts, err := s.store.TransferAmounts(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	budgets, err := s.store.QueryBudgets(ctx, userID, &core.DateRange{Start: start, End: end})
	if err != nil {
		return nil, err
	}

	return &core.MonthlySummary{
		Month:          month,
		Year:           year,
		TotalExpenses:  sum(expenseAmounts),
		TotalTransfers: sum(transferAmounts),
		Budgets:        budgets,
	}, nil
}

func sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
