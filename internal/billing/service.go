package billing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/ledgerdesk/ledgerdesk/internal/ledger"
)

// reconcileTolerance is the absolute divergence, in currency units, below
// which stored totals and line-level recomputation are considered equal.
const reconcileTolerance = 0.01

// Service derives ledger views, balances, and statements from the document
// collection. Every derivation is a fresh reduction over the latest
// repository snapshot; the redis cache and singleflight group only
// deduplicate identical report builds.
type Service struct {
	repo   RepositoryPort
	cache  *ReportCache
	logger *slog.Logger
	sf     singleflight.Group
}

// NewService builds a Service instance. cache may be nil.
func NewService(repo RepositoryPort, cache *ReportCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Snapshot materializes the current documents and the customer lookup.
func (s *Service) Snapshot(ctx context.Context) ([]ledger.Document, ledger.CustomerLookup, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("billing: list documents: %w", err)
	}
	names, err := s.repo.CustomerNames(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("billing: customer names: %w", err)
	}
	lookup := func(id string) (string, bool) {
		name, ok := names[id]
		return name, ok
	}
	return docs, lookup, nil
}

// LedgerView generates, filters, and summarises the accounting ledger.
func (s *Service) LedgerView(ctx context.Context, f ledger.Filter) (LedgerView, error) {
	docs, lookup, err := s.Snapshot(ctx)
	if err != nil {
		return LedgerView{}, err
	}
	entries := ledger.Generate(docs, lookup)
	filtered := ledger.Apply(entries, f)
	reporting, multi := ledger.ResolveReportingCurrency(f, entries)
	return LedgerView{
		Entries:           filtered,
		Totals:            ledger.ComputeTotals(filtered),
		AccountOptions:    ledger.AccountOptions(entries),
		Currencies:        ledger.Currencies(entries),
		ReportingCurrency: reporting,
		MultiCurrency:     multi,
	}, nil
}

// Balances returns per-account running balances for the filtered ledger.
func (s *Service) Balances(ctx context.Context, f ledger.Filter) ([]ledger.AccountBalance, error) {
	filtered, err := s.filteredEntries(ctx, f)
	if err != nil {
		return nil, err
	}
	return ledger.ComputeAccountBalances(filtered), nil
}

// Statements bundles the P&L and balance sheet for one filtered view.
type Statements struct {
	ProfitAndLoss     ledger.ProfitAndLoss `json:"profitAndLoss"`
	BalanceSheet      ledger.BalanceSheet  `json:"balanceSheet"`
	ReportingCurrency string               `json:"reportingCurrency"`
	MultiCurrency     bool                 `json:"multiCurrency"`
}

// BuildStatements computes both financial statements, deduplicating
// concurrent identical builds and caching the result.
func (s *Service) BuildStatements(ctx context.Context, f ledger.Filter) (Statements, error) {
	key, err := s.statementsCacheKey(ctx, f)
	if err != nil {
		return Statements{}, err
	}
	var out Statements
	loader := func(ctx context.Context) (any, error) {
		result, err, _ := s.sf.Do(key, func() (any, error) {
			return s.buildStatements(ctx, f)
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := s.cache.FetchJSON(ctx, key, &out, loader); err != nil {
		return Statements{}, err
	}
	return out, nil
}

func (s *Service) buildStatements(ctx context.Context, f ledger.Filter) (Statements, error) {
	docs, lookup, err := s.Snapshot(ctx)
	if err != nil {
		return Statements{}, err
	}
	entries := ledger.Generate(docs, lookup)
	filtered := ledger.Apply(entries, f)
	pl := ledger.ComputeProfitAndLoss(filtered)
	bs := ledger.ComputeBalanceSheet(filtered, pl)
	if bs.BalanceGap != 0 {
		s.logger.Warn("balance sheet gap detected",
			slog.Float64("gap", bs.BalanceGap),
			slog.Int("entries", len(filtered)))
	}
	reporting, multi := ledger.ResolveReportingCurrency(f, entries)
	return Statements{
		ProfitAndLoss:     pl,
		BalanceSheet:      bs,
		ReportingCurrency: reporting,
		MultiCurrency:     multi,
	}, nil
}

func (s *Service) statementsCacheKey(ctx context.Context, f ledger.Filter) (string, error) {
	parts := []string{
		"billing", "statements",
		f.StartDate, f.EndDate, f.Account, f.Type, f.CustomerID, f.Currency, f.Document,
		strings.ToLower(strings.TrimSpace(f.Search)),
	}
	return s.cache.BuildKey(ctx, parts...)
}

func (s *Service) filteredEntries(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	docs, lookup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Apply(ledger.Generate(docs, lookup), f), nil
}

// RecordPayment validates and stores a payment, then invalidates cached
// reports so the next build reflects it.
func (s *Service) RecordPayment(ctx context.Context, invoiceID string, input PaymentInput) error {
	if invoiceID == "" {
		return ErrInvoiceNotFound
	}
	if input.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if err := s.repo.RecordPayment(ctx, invoiceID, input); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
	return nil
}

// InvoiceRegister lists one row per document with signed gross, paid, and
// outstanding amounts, issue-date descending.
func (s *Service) InvoiceRegister(ctx context.Context) ([]InvoiceRow, error) {
	docs, lookup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]InvoiceRow, 0, len(docs))
	for _, doc := range docs {
		direction := 1.0
		if doc.IsCreditNote() {
			direction = -1
		}
		var paid float64
		for _, p := range doc.Payments {
			paid += p.Amount
		}
		paid *= direction
		gross := doc.Totals.Gross * direction
		docType := doc.DocumentType
		if docType == "" {
			docType = ledger.DocTypeInvoice
		}
		rows = append(rows, InvoiceRow{
			ID:           doc.ID,
			Reference:    doc.Ref(),
			IssueDate:    doc.IssueDate,
			CustomerName: counterpartyName(doc.CustomerID, lookup),
			Gross:        ledger.Round2(gross),
			Paid:         ledger.Round2(paid),
			Outstanding:  ledger.Round2(gross - paid),
			Status:       statusOrDraft(doc.Status),
			DocumentType: docType,
			Currency:     currencyOrDefault(doc.Currency),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].IssueDate > rows[j].IssueDate })
	return rows, nil
}

// CustomerSummaries aggregates the register per customer, sorted by balance
// descending. Documents without a customer share the "Unassigned" bucket.
func (s *Service) CustomerSummaries(ctx context.Context) ([]CustomerSummary, error) {
	register, err := s.InvoiceRegister(ctx)
	if err != nil {
		return nil, err
	}
	docs, _, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	customerByDoc := make(map[string]string, len(docs))
	for _, doc := range docs {
		customerByDoc[doc.ID] = doc.CustomerID
	}

	summaries := make(map[string]*CustomerSummary)
	var order []string
	for _, row := range register {
		customerID := customerByDoc[row.ID]
		key := customerID
		if key == "" {
			key = "__unassigned__"
		}
		summary, ok := summaries[key]
		if !ok {
			name := row.CustomerName
			if customerID == "" {
				name = "Unassigned"
			}
			summary = &CustomerSummary{CustomerID: customerID, CustomerName: name, Currency: row.Currency}
			summaries[key] = summary
			order = append(order, key)
		}
		summary.Invoices++
		summary.TotalGross += row.Gross
		summary.TotalPaid += row.Paid
	}

	out := make([]CustomerSummary, 0, len(order))
	for _, key := range order {
		summary := summaries[key]
		summary.TotalGross = ledger.Round2(summary.TotalGross)
		summary.TotalPaid = ledger.Round2(summary.TotalPaid)
		summary.Balance = ledger.Round2(summary.TotalGross - summary.TotalPaid)
		out = append(out, *summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	return out, nil
}

// PaymentHistory flattens every payment sub-record, date descending.
func (s *Service) PaymentHistory(ctx context.Context) ([]PaymentRecord, error) {
	docs, lookup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var records []PaymentRecord
	for _, doc := range docs {
		for idx, p := range doc.Payments {
			method := p.Method
			if method == "" {
				method = "Payment"
			}
			records = append(records, PaymentRecord{
				ID:               fmt.Sprintf("%s-%d", doc.ID, idx),
				InvoiceReference: doc.Ref(),
				CustomerName:     counterpartyName(doc.CustomerID, lookup),
				Date:             p.Date,
				Amount:           p.Amount,
				Method:           method,
				Note:             p.Note,
				Currency:         currencyOrDefault(doc.Currency),
			})
		}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	return records, nil
}

// Reconcile recomputes net/tax/gross from line detail for every document
// that has lines and reports those whose stored totals diverge beyond the
// tolerance. The ledger's no-lines fallback trusts stored totals, so a
// divergence here means the two paths would disagree.
func (s *Service) Reconcile(ctx context.Context) ([]ReconciliationRow, error) {
	docs, _, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var rows []ReconciliationRow
	for _, doc := range docs {
		if len(doc.Lines) == 0 {
			continue
		}
		var net, tax float64
		for _, line := range doc.Lines {
			lineNet := line.Quantity * line.UnitPrice
			net += lineNet
			tax += lineNet * (line.TaxRate / 100)
		}
		gross := net + tax
		if diverges(net, doc.Totals.Net) || diverges(tax, doc.Totals.Tax) || diverges(gross, doc.Totals.Gross) {
			rows = append(rows, ReconciliationRow{
				DocumentID:    doc.ID,
				Reference:     doc.Ref(),
				StoredNet:     doc.Totals.Net,
				ComputedNet:   ledger.Round2(net),
				StoredTax:     doc.Totals.Tax,
				ComputedTax:   ledger.Round2(tax),
				StoredGross:   doc.Totals.Gross,
				ComputedGross: ledger.Round2(gross),
			})
		}
	}
	return rows, nil
}

func diverges(computed, stored float64) bool {
	return math.Abs(ledger.Round2(computed)-ledger.Round2(stored)) > reconcileTolerance
}

func counterpartyName(customerID string, lookup ledger.CustomerLookup) string {
	if lookup != nil {
		if name, ok := lookup(customerID); ok && name != "" {
			return name
		}
	}
	return "Unassigned"
}

func statusOrDraft(status string) string {
	if status == "" {
		return "Draft"
	}
	return status
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return ledger.DefaultCurrency
	}
	return currency
}
