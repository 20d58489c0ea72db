// Package ledger derives balanced double-entry postings, account balances,
// and financial statements from invoice and credit-note documents. Every
// function is a pure reduction over its inputs; nothing here performs I/O or
// holds state between calls, so callers may invoke the package concurrently.
package ledger

import "math"

// DefaultCurrency is assumed when a document carries no currency code.
const DefaultCurrency = "GBP"

// AccountType enumerates the ledger account categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Document kinds as stored on the source records.
const (
	DocTypeInvoice    = "Invoice"
	DocTypeCreditNote = "CreditNote"
	DocTypePayment    = "Payment"
)

// LineItem is a single sold line on an invoice or credit note.
type LineItem struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	LineDate    string  `json:"lineDate"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
	ISOWeek     string  `json:"isoWeek"`
}

// Totals is the precomputed fallback used when a document has no lines.
type Totals struct {
	Net   float64 `json:"net"`
	Tax   float64 `json:"tax"`
	Gross float64 `json:"gross"`
}

// Payment is a settlement sub-record embedded in a document.
type Payment struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Method string  `json:"method"`
	Note   string  `json:"note"`
}

// Document is an invoice or credit note as supplied by the caller. The
// ledger never mutates it.
type Document struct {
	ID           string     `json:"id"`
	Reference    string     `json:"reference"`
	DocumentType string     `json:"documentType"`
	IssueDate    string     `json:"issueDate"`
	Currency     string     `json:"currency"`
	CustomerID   string     `json:"customerId"`
	Status       string     `json:"status"`
	Lines        []LineItem `json:"lines"`
	Totals       Totals     `json:"totals"`
	Payments     []Payment  `json:"payments"`
}

// IsCreditNote reports whether the document inverts normal posting polarity.
func (d Document) IsCreditNote() bool {
	return d.DocumentType == DocTypeCreditNote
}

// Ref returns the human label for the document, falling back to its id.
func (d Document) Ref() string {
	if d.Reference != "" {
		return d.Reference
	}
	return d.ID
}

// Entry is one derived ledger posting. At most one of Debit and Credit is
// non-zero and both are non-negative.
type Entry struct {
	ID           string      `json:"id"`
	Date         string      `json:"date"`
	AccountCode  string      `json:"accountCode"`
	AccountName  string      `json:"accountName"`
	Type         AccountType `json:"type"`
	Debit        float64     `json:"debit"`
	Credit       float64     `json:"credit"`
	Memo         string      `json:"memo"`
	DocumentRef  string      `json:"documentRef"`
	DocumentType string      `json:"documentType"`
	Counterparty string      `json:"counterparty"`
	CustomerID   string      `json:"customerId"`
	Currency     string      `json:"currency"`
	Source       string      `json:"source"`
	Status       string      `json:"status"`
}

// CustomerLookup resolves a customer id to a display name.
type CustomerLookup func(id string) (string, bool)

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
