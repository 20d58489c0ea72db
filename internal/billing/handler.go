package billing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerdesk/ledgerdesk/internal/ledger"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/httpx"
)

// Handler wires the billing HTTP surface.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validate    *validator.Validate
	exportLimit func(http.Handler) http.Handler
}

// NewHandler constructs a billing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		service:     service,
		validate:    validator.New(),
		exportLimit: httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
}

// MountRoutes registers the billing endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/billing", func(r chi.Router) {
		r.Get("/ledger", h.handleLedger)
		r.With(h.exportLimit).Get("/ledger/export.csv", h.handleExportCSV)
		r.Get("/balances", h.handleBalances)
		r.Get("/reports/pl", h.handleProfitAndLoss)
		r.Get("/reports/bs", h.handleBalanceSheet)
		r.Get("/invoices", h.handleInvoices)
		r.Post("/invoices/{id}/payments", h.handleRecordPayment)
		r.Get("/customers/summary", h.handleCustomerSummaries)
		r.Get("/payments", h.handlePaymentHistory)
		r.Get("/reconciliation", h.handleReconciliation)
	})
}

// filterQuery mirrors the user-editable filter state of the ledger screen.
type filterQuery struct {
	Start    string `validate:"omitempty,datetime=2006-01-02"`
	End      string `validate:"omitempty,datetime=2006-01-02"`
	Account  string `validate:"omitempty,max=16"`
	Type     string `validate:"omitempty,oneof=all asset liability equity revenue expense"`
	Customer string `validate:"omitempty,max=64"`
	Currency string `validate:"omitempty,max=8"`
	Document string `validate:"omitempty,oneof=all invoice credit payment"`
	Search   string `validate:"omitempty,max=128"`
}

func (h *Handler) parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	fq := filterQuery{
		Start:    strings.TrimSpace(q.Get("start")),
		End:      strings.TrimSpace(q.Get("end")),
		Account:  strings.TrimSpace(q.Get("account")),
		Type:     strings.TrimSpace(q.Get("type")),
		Customer: strings.TrimSpace(q.Get("customer")),
		Currency: strings.TrimSpace(q.Get("currency")),
		Document: strings.TrimSpace(q.Get("document")),
		Search:   q.Get("q"),
	}
	if err := h.validate.Struct(fq); err != nil {
		return ledger.Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return ledger.Filter{
		StartDate:  fq.Start,
		EndDate:    fq.End,
		Account:    fq.Account,
		Type:       fq.Type,
		CustomerID: fq.Customer,
		Currency:   fq.Currency,
		Document:   fq.Document,
		Search:     fq.Search,
	}, nil
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	view, err := h.service.LedgerView(r.Context(), f)
	if err != nil {
		h.respondError(w, "build ledger view", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	view, err := h.service.LedgerView(r.Context(), f)
	if err != nil {
		h.respondError(w, "build ledger export", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	if err := writeLedgerCSV(w, view); err != nil {
		h.logger.Error("stream ledger csv", slog.Any("error", err))
	}
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	balances, err := h.service.Balances(r.Context(), f)
	if err != nil {
		h.respondError(w, "compute balances", err)
		return
	}
	httpx.JSON(w, http.StatusOK, balances)
}

func (h *Handler) handleProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	h.handleStatements(w, r, func(s Statements) any {
		return struct {
			ledger.ProfitAndLoss
			ReportingCurrency string `json:"reportingCurrency"`
			MultiCurrency     bool   `json:"multiCurrency"`
		}{s.ProfitAndLoss, s.ReportingCurrency, s.MultiCurrency}
	})
}

func (h *Handler) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	h.handleStatements(w, r, func(s Statements) any {
		return struct {
			ledger.BalanceSheet
			ReportingCurrency string `json:"reportingCurrency"`
			MultiCurrency     bool   `json:"multiCurrency"`
		}{s.BalanceSheet, s.ReportingCurrency, s.MultiCurrency}
	})
}

func (h *Handler) handleStatements(w http.ResponseWriter, r *http.Request, project func(Statements) any) {
	f, err := h.parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	statements, err := h.service.BuildStatements(r.Context(), f)
	if err != nil {
		h.respondError(w, "build statements", err)
		return
	}
	httpx.JSON(w, http.StatusOK, project(statements))
}

func (h *Handler) handleInvoices(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.InvoiceRegister(r.Context())
	if err != nil {
		h.respondError(w, "invoice register", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	var input PaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.RecordPayment(r.Context(), invoiceID, input); err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, ErrDuplicatePayment):
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
		case errors.Is(err, ErrInvalidPayment):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.respondError(w, "record payment", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCustomerSummaries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CustomerSummaries(r.Context())
	if err != nil {
		h.respondError(w, "customer summaries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.PaymentHistory(r.Context())
	if err != nil {
		h.respondError(w, "payment history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Reconcile(r.Context())
	if err != nil {
		h.respondError(w, "reconciliation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
