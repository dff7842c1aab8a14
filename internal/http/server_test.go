package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"moneymap/internal/core"
	"moneymap/internal/services"
	"moneymap/internal/storage"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "moneymap.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ledger := services.NewLedger(store, nil)
	summary := services.NewSummary(store)
	return NewServer("127.0.0.1:0", store, ledger, summary)
}

// do issues a request against the server's handler as the given user. A
// userID of 0 leaves the identity header off.
func do(t *testing.T, s *Server, userID int64, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if userID > 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", userID))
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func createCategory(t *testing.T, s *Server, userID int64, name string) int64 {
	t.Helper()
	rec := do(t, s, userID, http.MethodPost, "/api/categories", map[string]string{"name": name})
	assert.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody[core.Category](t, rec).ID
}

func TestHealthSkipsAuth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, 0, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])
}

func TestAPIRequiresUserHeader(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, 0, http.MethodGet, "/api/expenses", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Garbage and non-positive ids are rejected the same way.
	for _, raw := range []string{"abc", "-1", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("X-User-ID", raw)
		got := httptest.NewRecorder()
		s.Handler.ServeHTTP(got, req)
		assert.Equal(t, http.StatusForbidden, got.Code)
	}
}

func TestBudgetUpsertMergesOverlap(t *testing.T) {
	s := newTestServer(t)
	food := createCategory(t, s, 1, "Food")

	rec := do(t, s, 1, http.MethodPost, "/api/budgets", map[string]any{
		"category_id": food,
		"amount":      "300",
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	first := decodeBody[core.Budget](t, rec)

	rec = do(t, s, 1, http.MethodPost, "/api/budgets", map[string]any{
		"category_id": food,
		"amount":      "400",
		"start_date":  "2024-01-15",
		"end_date":    "2024-02-15",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	merged := decodeBody[core.Budget](t, rec)

	// Same row, rewritten in place.
	assert.Equal(t, first.ID, merged.ID)
	assert.True(t, merged.Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "2024-01-15", merged.StartDate.String())
	assert.Equal(t, "2024-02-15", merged.EndDate.String())

	rec = do(t, s, 1, http.MethodGet, "/api/budgets", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, len(decodeBody[[]core.Budget](t, rec)))
}

func TestBudgetValidation(t *testing.T) {
	s := newTestServer(t)
	food := createCategory(t, s, 1, "Food")

	cases := []map[string]any{
		{"category_id": food, "amount": "0", "start_date": "2024-01-01", "end_date": "2024-01-31"},
		{"category_id": 0, "amount": "100", "start_date": "2024-01-01", "end_date": "2024-01-31"},
		{"category_id": food, "amount": "100", "start_date": "not-a-date", "end_date": "2024-01-31"},
		{"category_id": food, "amount": "100", "start_date": "2024-01-01", "end_date": "31/01/2024"},
	}
	for _, body := range cases {
		rec := do(t, s, 1, http.MethodPost, "/api/budgets", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestBudgetDelete(t *testing.T) {
	s := newTestServer(t)
	food := createCategory(t, s, 1, "Food")

	rec := do(t, s, 1, http.MethodPost, "/api/budgets", map[string]any{
		"category_id": food,
		"amount":      "300",
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	budget := decodeBody[core.Budget](t, rec)

	// Another owner sees not-found, not forbidden.
	rec = do(t, s, 2, http.MethodDelete, fmt.Sprintf("/api/budgets/%d", budget.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, 1, http.MethodDelete, fmt.Sprintf("/api/budgets/%d", budget.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, 1, http.MethodDelete, fmt.Sprintf("/api/budgets/%d", budget.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseLifecycleOverAPI(t *testing.T) {
	s := newTestServer(t)
	food := createCategory(t, s, 1, "Food")

	rec := do(t, s, 1, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      "42.50",
		"category_id": food,
		"description": "groceries",
		"date":        "2024-01-10",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[core.Expense](t, rec)
	assert.NotZero(t, created.CategoryName)
	assert.Equal(t, "Food", *created.CategoryName)

	rec = do(t, s, 1, http.MethodPut, fmt.Sprintf("/api/expenses/%d", created.ID), map[string]any{
		"description": "weekly groceries",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[core.Expense](t, rec)
	assert.Equal(t, "weekly groceries", updated.Description)
	assert.True(t, updated.Amount.Equal(created.Amount))

	rec = do(t, s, 1, http.MethodGet, "/api/expenses", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, len(decodeBody[[]core.Expense](t, rec)))

	rec = do(t, s, 1, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, 1, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseBadRequests(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, 1, http.MethodPost, "/api/expenses", map[string]any{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-User-ID", "1")
	got := httptest.NewRecorder()
	s.Handler.ServeHTTP(got, req)
	assert.Equal(t, http.StatusBadRequest, got.Code)

	rec = do(t, s, 1, http.MethodPut, "/api/expenses/abc", map[string]any{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferSameCategoryRejected(t *testing.T) {
	s := newTestServer(t)
	food := createCategory(t, s, 1, "Food")
	savings := createCategory(t, s, 1, "Savings")

	rec := do(t, s, 1, http.MethodPost, "/api/transactions", map[string]any{
		"from_category_id": food,
		"to_category_id":   food,
		"amount":           "10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, 1, http.MethodPost, "/api/transactions", map[string]any{
		"from_category_id": savings,
		"to_category_id":   food,
		"amount":           "25",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[core.Transfer](t, rec)

	rec = do(t, s, 1, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMonthlySummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	food := createCategory(t, s, 1, "Food")

	rec := do(t, s, 1, http.MethodPost, "/api/expenses", map[string]any{
		"amount": "42.50",
		"date":   "2024-01-10",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, 1, http.MethodPost, "/api/budgets", map[string]any{
		"category_id": food,
		"amount":      "300",
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, 1, http.MethodGet, "/api/summary/monthly?month=1&year=2024", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[core.MonthlySummary](t, rec)
	assert.True(t, summary.TotalExpenses.Equal(decimal.RequireFromString("42.50")))
	assert.True(t, summary.TotalTransfers.IsZero())
	assert.Equal(t, 1, len(summary.Budgets))

	// Missing and out-of-range parameters are client errors.
	rec = do(t, s, 1, http.MethodGet, "/api/summary/monthly?month=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, 1, http.MethodGet, "/api/summary/monthly?month=13&year=2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoriesScopedPerOwner(t *testing.T) {
	s := newTestServer(t)
	createCategory(t, s, 1, "Food")

	rec := do(t, s, 2, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, len(decodeBody[[]core.Category](t, rec)))
}
