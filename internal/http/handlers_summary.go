package http

import (
	"fmt"
	"net/http"
	"strconv"

	"moneymap/internal/core"
)

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	month, err := queryInt(r, "month")
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.summary.Monthly(r.Context(), userFrom(r), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", core.ErrValidation, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", core.ErrValidation, name)
	}
	return v, nil
}
