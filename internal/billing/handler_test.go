package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/ledgerdesk/ledgerdesk/testing"
)

func testRouter(t *testing.T) (http.Handler, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo(fixtureDocs(), map[string]string{"cust-1": "Acme Ltd"})
	svc := NewService(repo, nil, nil)
	handler := NewHandler(nil, svc)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, repo
}

func TestHandleLedger(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/billing/ledger?document=payment", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view LedgerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Entries, 2)
	for _, e := range view.Entries {
		require.Equal(t, "Payment", e.DocumentType)
	}
}

func TestHandleLedgerRejectsBadFilter(t *testing.T) {
	router, _ := testRouter(t)

	for _, query := range []string{
		"start=March+1st",
		"document=receipts",
		"type=profit",
	} {
		req := httptest.NewRequest(http.MethodGet, "/billing/ledger?"+query, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}

func TestHandleBalanceSheet(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/billing/reports/bs?currency=GBP", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Assets            float64 `json:"assets"`
		Liabilities       float64 `json:"liabilities"`
		Equity            float64 `json:"equity"`
		BalanceGap        float64 `json:"balanceGap"`
		ReportingCurrency string  `json:"reportingCurrency"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Zero(t, payload.BalanceGap)
	require.Equal(t, "GBP", payload.ReportingCurrency)
	require.Equal(t, payload.Assets, payload.Liabilities+payload.Equity)
}

func TestHandleRecordPayment(t *testing.T) {
	router, repo := testRouter(t)

	body := `{"amount": 50, "reference": "rcpt-1", "method": "BACS"}`
	req := httptest.NewRequest(http.MethodPost, "/billing/invoices/inv-001/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, repo.recorded["inv-001"], 1)

	// Same reference again conflicts.
	req = httptest.NewRequest(http.MethodPost, "/billing/invoices/inv-001/payments", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/billing/invoices/missing/payments", strings.NewReader(`{"amount": 50, "reference": "rcpt-2"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/billing/invoices/inv-001/payments", strings.NewReader(`{"amount": -5, "reference": "rcpt-3"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExportCSV(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/billing/ledger/export.csv?currency=GBP", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	body := rec.Body.String()
	require.Contains(t, body, "Account Code")
	require.Contains(t, body, "Sales Revenue")
	require.Contains(t, body, "Imbalance")
	require.Contains(t, body, "GBP")
}

func TestHandleReconciliation(t *testing.T) {
	docs := fixtureDocs()
	docs[0].Totals.Gross = 999
	repo := newMemoryRepo(docs, nil)
	handler := NewHandler(nil, NewService(repo, nil, nil))
	r := chi.NewRouter()
	handler.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/billing/reconciliation", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []ReconciliationRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "inv-001", rows[0].DocumentID)
}
