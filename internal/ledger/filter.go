package ledger

import "strings"

// Document scope values accepted by Filter.Document.
const (
	ScopeAll     = "all"
	ScopeInvoice = "invoice"
	ScopeCredit  = "credit"
	ScopePayment = "payment"
)

// Filter narrows a generated entry set. Empty or "all" fields impose no
// constraint; active constraints combine with logical AND. Dates are ISO
// YYYY-MM-DD strings and compare lexically.
type Filter struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Account    string `json:"account"`
	Type       string `json:"type"`
	CustomerID string `json:"customerId"`
	Currency   string `json:"currency"`
	Document   string `json:"document"`
	Search     string `json:"search"`
}

// IsZero reports whether the filter imposes no constraint at all.
func (f Filter) IsZero() bool {
	return !active(f.Account) && !active(f.Type) && !active(f.CustomerID) &&
		!active(f.Currency) && !active(f.Document) &&
		f.StartDate == "" && f.EndDate == "" && strings.TrimSpace(f.Search) == ""
}

// Matches reports whether a single entry satisfies every active constraint.
func (f Filter) Matches(e Entry) bool {
	if active(f.Account) && e.AccountCode != f.Account {
		return false
	}
	if active(f.Type) && string(e.Type) != f.Type {
		return false
	}
	if active(f.CustomerID) && e.CustomerID != f.CustomerID {
		return false
	}
	if active(f.Currency) && e.Currency != f.Currency {
		return false
	}
	// Entries without a date are never excluded by date bounds.
	if f.StartDate != "" && e.Date != "" && e.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && e.Date != "" && e.Date > f.EndDate {
		return false
	}
	if active(f.Document) {
		docType := strings.ToLower(e.DocumentType)
		switch f.Document {
		case ScopeInvoice:
			if docType == "payment" {
				return false
			}
		case ScopePayment:
			if docType != "payment" {
				return false
			}
		case ScopeCredit:
			if docType != "creditnote" {
				return false
			}
		}
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		haystack := strings.ToLower(e.Memo + " " + e.AccountName + " " + e.DocumentRef + " " + e.DocumentType + " " + e.Counterparty)
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}

// Apply returns the subset of entries matching the filter, preserving the
// original relative order.
func Apply(entries []Entry, f Filter) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func active(v string) bool {
	return v != "" && v != ScopeAll
}
