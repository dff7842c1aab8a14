package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonthlySummary is a point-in-time report derived from raw rows. Totals are
// recomputed on every read; nothing is cached.
type MonthlySummary struct {
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	TotalTransfers decimal.Decimal `json:"totalTransactions"`
	Budgets        []Budget        `json:"budgets"`
}

// MonthWindow returns the summary window bounds for a month as YYYY-MM-DD
// strings. The upper bound is a literal day 31 for every month, including
// February; bounds are compared lexically against normalized dates, so short
// months fall entirely inside the window. Changing this to the calendar last
// day would alter which rows February through November summaries include.
func MonthWindow(year, month int) (start, end string) {
	start = fmt.Sprintf("%04d-%02d-01", year, month)
	end = fmt.Sprintf("%04d-%02d-31", year, month)
	return start, end
}

// ValidateMonth rejects out-of-range month/year pairs.
func ValidateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrValidation, month)
	}
	if year < 1 {
		return fmt.Errorf("%w: year %d out of range", ErrValidation, year)
	}
	return nil
}
