package http

import (
	"fmt"
	"net/http"

	"moneymap/internal/core"

	"github.com/shopspring/decimal"
)

type upsertBudgetRequest struct {
	CategoryID int64           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
}

// handleUpsertBudget writes a budget cap; an overlapping window for the same
// category merges into the existing row instead of creating a duplicate.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req upsertBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, fmt.Errorf("start_date: %w", err))
		return
	}
	end, err := core.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, fmt.Errorf("end_date: %w", err))
		return
	}

	budget, err := s.store.UpsertBudget(r.Context(), userFrom(r), req.CategoryID, req.Amount, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	var rng *core.DateRange
	startRaw := r.URL.Query().Get("start_date")
	endRaw := r.URL.Query().Get("end_date")
	if startRaw != "" && endRaw != "" {
		start, err := core.ParseDate(startRaw)
		if err != nil {
			writeError(w, r, fmt.Errorf("start_date: %w", err))
			return
		}
		end, err := core.ParseDate(endRaw)
		if err != nil {
			writeError(w, r, fmt.Errorf("end_date: %w", err))
			return
		}
		rng = &core.DateRange{Start: start.String(), End: end.String()}
	}

	budgets, err := s.store.QueryBudgets(r.Context(), userFrom(r), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteBudget(r.Context(), userFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted"})
}
