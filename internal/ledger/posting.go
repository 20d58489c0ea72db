package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Entry sources.
const (
	SourceInvoice        = "Invoice"
	SourcePaymentReceipt = "Payment receipt"
)

// Generate expands every document into the balanced ledger entries it
// implies. Credit notes post with inverted polarity, zero amounts are
// suppressed, and each payment sub-record produces a cash entry plus the
// matching receivable settlement. The result is ordered by date descending,
// tie-broken by document reference descending.
func Generate(docs []Document, lookup CustomerLookup) []Entry {
	var entries []Entry
	for _, doc := range docs {
		entries = append(entries, generateDocument(doc, lookup)...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].DocumentRef > entries[j].DocumentRef
	})
	return entries
}

func generateDocument(doc Document, lookup CustomerLookup) []Entry {
	direction := 1.0
	if doc.IsCreditNote() {
		direction = -1
	}

	docID := doc.ID
	if docID == "" {
		docID = uuid.NewString()
	}
	docType := doc.DocumentType
	if docType == "" {
		docType = DocTypeInvoice
	}
	currency := doc.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	status := doc.Status
	if status == "" {
		status = "Draft"
	}
	reference := doc.Ref()
	if reference == "" {
		reference = docID
	}
	counterparty := resolveCounterparty(doc.CustomerID, lookup)

	base := Entry{
		DocumentRef:  reference,
		DocumentType: docType,
		Counterparty: counterparty,
		CustomerID:   doc.CustomerID,
		Currency:     currency,
		Source:       SourceInvoice,
		Status:       status,
	}

	var entries []Entry
	var netAccumulator, taxAccumulator float64

	if len(doc.Lines) > 0 {
		for idx, line := range doc.Lines {
			net := line.Quantity * line.UnitPrice * direction
			tax := net * (line.TaxRate / 100)
			netAccumulator += net
			taxAccumulator += tax
			if net == 0 {
				continue
			}
			e := base
			e.ID = fmt.Sprintf("inv-%s-rev-%d", docID, idx)
			e.Date = firstNonEmpty(line.LineDate, doc.IssueDate)
			e.AccountCode = accountRevenue.Code
			e.AccountName = accountRevenue.Name
			e.Type = accountRevenue.Type
			e.Debit, e.Credit = split(net)
			e.Memo = lineMemo(line)
			entries = append(entries, e)
		}
	} else {
		net := doc.Totals.Net * direction
		netAccumulator = net
		taxAccumulator = doc.Totals.Tax * direction
		if net != 0 {
			e := base
			e.ID = fmt.Sprintf("inv-%s-rev", docID)
			e.Date = doc.IssueDate
			e.AccountCode = accountRevenue.Code
			e.AccountName = accountRevenue.Name
			e.Type = accountRevenue.Type
			e.Debit, e.Credit = split(net)
			e.Memo = "Invoice " + reference
			entries = append(entries, e)
		}
	}

	if taxAccumulator != 0 {
		e := base
		e.ID = fmt.Sprintf("inv-%s-tax", docID)
		e.Date = doc.IssueDate
		e.AccountCode = accountSalesTax.Code
		e.AccountName = accountSalesTax.Name
		e.Type = accountSalesTax.Type
		e.Debit, e.Credit = split(taxAccumulator)
		e.Memo = "Tax on " + reference
		entries = append(entries, e)
	}

	effectiveGross := netAccumulator + taxAccumulator
	if len(doc.Lines) == 0 {
		effectiveGross = doc.Totals.Gross * direction
	}
	if effectiveGross != 0 {
		e := base
		e.ID = fmt.Sprintf("inv-%s-ar", docID)
		e.Date = doc.IssueDate
		e.AccountCode = accountAR.Code
		e.AccountName = accountAR.Name
		e.Type = accountAR.Type
		// Receivable moves opposite to revenue: debit when the customer
		// owes more, credit when a credit note reduces what they owe.
		e.Credit, e.Debit = split(effectiveGross)
		if doc.IsCreditNote() {
			e.Memo = "Credit note " + reference
		} else {
			e.Memo = "Invoice " + reference
		}
		entries = append(entries, e)
	}

	for idx, payment := range doc.Payments {
		amount := payment.Amount * direction
		if amount == 0 {
			continue
		}
		date := firstNonEmpty(payment.Date, doc.IssueDate)

		cash := base
		cash.ID = fmt.Sprintf("pay-%s-%d-cash", docID, idx)
		cash.Date = date
		cash.AccountCode = accountCashBank.Code
		cash.AccountName = accountCashBank.Name
		cash.Type = accountCashBank.Type
		cash.Credit, cash.Debit = split(amount)
		cash.Memo = paymentMemo(payment)
		cash.DocumentType = DocTypePayment
		cash.Source = SourcePaymentReceipt
		entries = append(entries, cash)

		settle := base
		settle.ID = fmt.Sprintf("pay-%s-%d-ar", docID, idx)
		settle.Date = date
		settle.AccountCode = accountAR.Code
		settle.AccountName = accountAR.Name
		settle.Type = accountAR.Type
		settle.Debit, settle.Credit = split(amount)
		settle.Memo = "Settlement for " + reference
		settle.DocumentType = DocTypePayment
		settle.Source = SourcePaymentReceipt
		entries = append(entries, settle)
	}

	return entries
}

// split maps a signed amount onto the debit/credit pair: positive amounts
// post as credits, negative amounts as debits.
func split(amount float64) (debit, credit float64) {
	if amount > 0 {
		return 0, amount
	}
	return -amount, 0
}

func resolveCounterparty(customerID string, lookup CustomerLookup) string {
	if lookup != nil {
		if name, ok := lookup(customerID); ok && name != "" {
			return name
		}
	}
	if customerID != "" {
		return "Customer"
	}
	return "Unassigned"
}

func lineMemo(line LineItem) string {
	desc := line.Description
	if desc == "" {
		desc = "Line item"
	}
	if line.SKU != "" {
		return strings.TrimSpace(line.SKU + " - " + desc)
	}
	return strings.TrimSpace(desc)
}

func paymentMemo(p Payment) string {
	method := p.Method
	if method == "" {
		method = "Payment"
	}
	if p.Note != "" {
		return method + " - " + p.Note
	}
	return method
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
