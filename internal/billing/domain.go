// Package billing wraps the ledger core with the application-facing
// services of the invoicing console: document supply, derived views,
// reports, and payment capture.
package billing

import (
	"errors"

	"github.com/ledgerdesk/ledgerdesk/internal/ledger"
)

var (
	// ErrInvoiceNotFound indicates the referenced invoice does not exist.
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
	// ErrDuplicatePayment indicates a payment reference was already recorded.
	ErrDuplicatePayment = errors.New("billing: payment already recorded")
	// ErrInvalidFilter indicates the ledger filter failed validation.
	ErrInvalidFilter = errors.New("billing: invalid ledger filter")
	// ErrInvalidPayment indicates the payment input failed validation.
	ErrInvalidPayment = errors.New("billing: invalid payment")
)

// LedgerView is the full payload backing the accounting ledger screen.
type LedgerView struct {
	Entries           []ledger.Entry         `json:"entries"`
	Totals            ledger.LedgerTotals    `json:"totals"`
	AccountOptions    []ledger.AccountOption `json:"accountOptions"`
	Currencies        []string               `json:"currencies"`
	ReportingCurrency string                 `json:"reportingCurrency"`
	MultiCurrency     bool                   `json:"multiCurrency"`
}

// InvoiceRow is one line of the invoice register: signed gross, paid, and
// outstanding per document, credit notes negated.
type InvoiceRow struct {
	ID           string  `json:"id"`
	Reference    string  `json:"reference"`
	IssueDate    string  `json:"issueDate"`
	CustomerName string  `json:"customerName"`
	Gross        float64 `json:"gross"`
	Paid         float64 `json:"paid"`
	Outstanding  float64 `json:"outstanding"`
	Status       string  `json:"status"`
	DocumentType string  `json:"documentType"`
	Currency     string  `json:"currency"`
}

// CustomerSummary aggregates the invoice register per customer.
type CustomerSummary struct {
	CustomerID   string  `json:"customerId"`
	CustomerName string  `json:"customerName"`
	Invoices     int     `json:"invoices"`
	TotalGross   float64 `json:"totalGross"`
	TotalPaid    float64 `json:"totalPaid"`
	Balance      float64 `json:"balance"`
	Currency     string  `json:"currency"`
}

// PaymentRecord is one row of the flattened payment history.
type PaymentRecord struct {
	ID               string  `json:"id"`
	InvoiceReference string  `json:"invoiceReference"`
	CustomerName     string  `json:"customerName"`
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	Method           string  `json:"method"`
	Note             string  `json:"note"`
	Currency         string  `json:"currency"`
}

// ReconciliationRow flags a document whose stored totals diverge from a
// line-level recomputation. Stale totals silently skew the ledger fallback
// path, so divergence is surfaced rather than repaired.
type ReconciliationRow struct {
	DocumentID    string  `json:"documentId"`
	Reference     string  `json:"reference"`
	StoredNet     float64 `json:"storedNet"`
	ComputedNet   float64 `json:"computedNet"`
	StoredTax     float64 `json:"storedTax"`
	ComputedTax   float64 `json:"computedTax"`
	StoredGross   float64 `json:"storedGross"`
	ComputedGross float64 `json:"computedGross"`
}

// PaymentInput captures a payment to record against an invoice.
type PaymentInput struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Date      string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Method    string  `json:"method" validate:"omitempty,max=64"`
	Note      string  `json:"note" validate:"omitempty,max=256"`
	Reference string  `json:"reference" validate:"required,max=64"`
}
