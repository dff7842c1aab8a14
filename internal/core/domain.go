package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar day without a time component. Budget windows are
	// closed intervals of Dates.
	Date struct {
		time.Time
	}

	// Category maps an id to an owner-scoped name. Financial rows reference
	// categories by id and tolerate the category being deleted afterwards.
	Category struct {
		ID        int64     `json:"id"`
		UserID    int64     `json:"user_id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Expense is a single spending event. CategoryName is resolved by a left
	// join and is nil when the category was deleted or never set.
	Expense struct {
		ID           int64           `json:"id"`
		UserID       int64           `json:"user_id"`
		CategoryID   *int64          `json:"category_id"`
		CategoryName *string         `json:"category_name"`
		Amount       decimal.Decimal `json:"amount"`
		Description  string          `json:"description"`
		OccurredAt   time.Time       `json:"date"`
		CreatedAt    time.Time       `json:"created_at"`
	}

	// Transfer moves an allocated amount from one category to another.
	// Transfers are immutable once created; they can only be deleted.
	Transfer struct {
		ID               int64           `json:"id"`
		UserID           int64           `json:"user_id"`
		FromCategoryID   int64           `json:"from_category_id"`
		ToCategoryID     int64           `json:"to_category_id"`
		FromCategoryName *string         `json:"from_category_name"`
		ToCategoryName   *string         `json:"to_category_name"`
		Amount           decimal.Decimal `json:"amount"`
		Description      string          `json:"description"`
		OccurredAt       time.Time       `json:"date"`
		CreatedAt        time.Time       `json:"created_at"`
	}

	// Budget caps spending for one category over a closed date window.
	// At most one budget row exists per (owner, category) for any set of
	// mutually overlapping windows; overlapping writes merge in place.
	Budget struct {
		ID           int64           `json:"id"`
		UserID       int64           `json:"user_id"`
		CategoryID   int64           `json:"category_id"`
		CategoryName *string         `json:"category_name"`
		Amount       decimal.Decimal `json:"amount"`
		StartDate    Date            `json:"start_date"`
		EndDate      Date            `json:"end_date"`
		CreatedAt    time.Time       `json:"created_at"`
	}

	// ExpensePatch carries a partial expense update. Nil fields keep the
	// stored value. A CategoryID of 0 clears the category association.
	ExpensePatch struct {
		Amount      *decimal.Decimal `json:"amount"`
		CategoryID  *int64           `json:"category_id"`
		Description *string          `json:"description"`
		OccurredAt  *time.Time       `json:"date"`
	}

	// DateRange is a closed interval used to filter budget queries. Bounds
	// are YYYY-MM-DD strings compared lexically against stored dates, which
	// admits the monthly summary's literal day-31 upper bound ("2024-02-31")
	// that no calendar date type could carry.
	DateRange struct {
		Start string
		End   string
	}
)

// NewDate builds a Date in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrValidation, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Overlaps reports whether two closed date windows intersect:
// max(start1, start2) <= min(end1, end2).
func Overlaps(start1, end1, start2, end2 Date) bool {
	return !start1.After(end2.Time) && !start2.After(end1.Time)
}

// ValidateAmount rejects missing, zero, and negative amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrValidation, amount)
	}
	return nil
}

// Validate rejects a patch whose present fields are invalid. An empty patch
// is legal and leaves the row untouched.
func (p ExpensePatch) Validate() error {
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			return err
		}
	}
	return nil
}
