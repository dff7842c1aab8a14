package http

import (
	"net/http"

	"moneymap/internal/storage"

	"github.com/shopspring/decimal"
)

type addTransferRequest struct {
	FromCategoryID int64           `json:"from_category_id"`
	ToCategoryID   int64           `json:"to_category_id"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Date           string          `json:"date"`
}

func (s *Server) handleAddTransfer(w http.ResponseWriter, r *http.Request) {
	var req addTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	occurred, err := parseWhen(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transfer, err := s.ledger.AddTransfer(r.Context(), userFrom(r), storage.TransferParams{
		FromCategoryID: req.FromCategoryID,
		ToCategoryID:   req.ToCategoryID,
		Amount:         req.Amount,
		Description:    req.Description,
		OccurredAt:     occurred,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transfer)
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.ledger.ListTransfers(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (s *Server) handleDeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteTransfer(r.Context(), userFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}
