// Package http is the thin request/response boundary over the budget store,
// ledger, and summary aggregator. It resolves the authenticated owner id,
// decodes requests, and maps error kinds to status codes; it holds no
// financial logic of its own.
package http

import (
	"net/http"
	"time"

	"moneymap/internal/services"
	"moneymap/internal/storage"
)

type Server struct {
	http.Server
	store   *storage.Store
	ledger  *services.Ledger
	summary *services.Summary
}

func NewServer(addr string, store *storage.Store, ledger *services.Ledger, summary *services.Summary) *Server {
	s := &Server{
		store:   store,
		ledger:  ledger,
		summary: summary,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/budgets", s.handleUpsertBudget)
	api.HandleFunc("GET /api/budgets", s.handleListBudgets)
	api.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	api.HandleFunc("POST /api/expenses", s.handleAddExpense)
	api.HandleFunc("GET /api/expenses", s.handleListExpenses)
	api.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	api.HandleFunc("POST /api/transactions", s.handleAddTransfer)
	api.HandleFunc("GET /api/transactions", s.handleListTransfers)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransfer)

	api.HandleFunc("GET /api/summary/monthly", s.handleMonthlySummary)

	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.Handle("/api/", requireUser(api))

	s.Server = http.Server{
		Addr:           addr,
		Handler:        trace(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
