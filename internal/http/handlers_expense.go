package http

import (
	"fmt"
	"net/http"
	"time"

	"moneymap/internal/core"
	"moneymap/internal/storage"

	"github.com/shopspring/decimal"
)

type addExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  *int64          `json:"category_id"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

type updateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	CategoryID  *int64           `json:"category_id"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	occurred, err := parseWhen(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.ledger.AddExpense(r.Context(), userFrom(r), storage.ExpenseParams{
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		OccurredAt:  occurred,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.ListExpenses(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := core.ExpensePatch{
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Description: req.Description,
	}
	if req.Date != nil {
		occurred, err := parseWhen(*req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.OccurredAt = &occurred
	}

	expense, err := s.ledger.UpdateExpense(r.Context(), userFrom(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), userFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}

// parseWhen accepts an RFC3339 timestamp or a bare YYYY-MM-DD day. An empty
// string returns the zero time, which the ledger replaces with now.
func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := core.ParseDate(s); err == nil {
		return d.Time, nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q is neither RFC3339 nor YYYY-MM-DD", core.ErrValidation, s)
}
