package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/ledger"
	_ "github.com/ledgerdesk/ledgerdesk/testing"
)

type memoryRepo struct {
	docs     []ledger.Document
	names    map[string]string
	recorded map[string][]PaymentInput
}

func newMemoryRepo(docs []ledger.Document, names map[string]string) *memoryRepo {
	return &memoryRepo{docs: docs, names: names, recorded: make(map[string][]PaymentInput)}
}

func (r *memoryRepo) ListDocuments(ctx context.Context) ([]ledger.Document, error) {
	out := make([]ledger.Document, len(r.docs))
	copy(out, r.docs)
	return out, nil
}

func (r *memoryRepo) CustomerNames(ctx context.Context) (map[string]string, error) {
	return r.names, nil
}

func (r *memoryRepo) RecordPayment(ctx context.Context, invoiceID string, input PaymentInput) error {
	var found bool
	for _, doc := range r.docs {
		if doc.ID == invoiceID {
			found = true
			break
		}
	}
	if !found {
		return ErrInvoiceNotFound
	}
	for _, existing := range r.recorded[invoiceID] {
		if existing.Reference == input.Reference {
			return ErrDuplicatePayment
		}
	}
	r.recorded[invoiceID] = append(r.recorded[invoiceID], input)
	return nil
}

func fixtureDocs() []ledger.Document {
	return []ledger.Document{
		{
			ID:         "inv-001",
			Reference:  "INV-001",
			IssueDate:  "2024-03-01",
			Currency:   "GBP",
			CustomerID: "cust-1",
			Status:     "Sent",
			Lines: []ledger.LineItem{
				{SKU: "WID-1", Description: "Widget", Quantity: 2, UnitPrice: 100, TaxRate: 20},
			},
			Totals:   ledger.Totals{Net: 200, Tax: 40, Gross: 240},
			Payments: []ledger.Payment{{Amount: 240, Date: "2024-03-05", Method: "BACS"}},
		},
		{
			ID:           "cn-001",
			Reference:    "CN-001",
			DocumentType: ledger.DocTypeCreditNote,
			IssueDate:    "2024-03-10",
			Currency:     "GBP",
			CustomerID:   "cust-1",
			Lines: []ledger.LineItem{
				{Description: "Refund", Quantity: 1, UnitPrice: 50, TaxRate: 20},
			},
			Totals: ledger.Totals{Net: 50, Tax: 10, Gross: 60},
		},
		{
			ID:        "inv-002",
			Reference: "INV-002",
			IssueDate: "2024-02-15",
			Currency:  "USD",
			Totals:    ledger.Totals{Net: 100, Tax: 0, Gross: 100},
		},
	}
}

func fixtureService() (*Service, *memoryRepo) {
	repo := newMemoryRepo(fixtureDocs(), map[string]string{"cust-1": "Acme Ltd"})
	return NewService(repo, nil, nil), repo
}

func TestLedgerView(t *testing.T) {
	svc, _ := fixtureService()
	view, err := svc.LedgerView(context.Background(), ledger.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, view.Entries)
	require.Zero(t, view.Totals.Imbalance)
	require.True(t, view.MultiCurrency)
	require.Equal(t, []string{"GBP", "USD"}, view.Currencies)
	require.Equal(t, "GBP", view.ReportingCurrency)

	payments, err := svc.LedgerView(context.Background(), ledger.Filter{Document: ledger.ScopePayment})
	require.NoError(t, err)
	require.Len(t, payments.Entries, 2)
	// Options describe the full ledger, not the filtered slice.
	require.Len(t, payments.AccountOptions, 4)
}

func TestBuildStatements(t *testing.T) {
	svc, _ := fixtureService()
	stmts, err := svc.BuildStatements(context.Background(), ledger.Filter{Currency: "GBP"})
	require.NoError(t, err)
	// 200 invoice revenue less 50 credited.
	require.Equal(t, 150.0, stmts.ProfitAndLoss.Revenue)
	require.Equal(t, 150.0, stmts.ProfitAndLoss.Net)
	require.Zero(t, stmts.BalanceSheet.BalanceGap)
	require.Equal(t, "GBP", stmts.ReportingCurrency)
	require.False(t, stmts.MultiCurrency)
}

func TestRecordPayment(t *testing.T) {
	svc, repo := fixtureService()
	ctx := context.Background()

	err := svc.RecordPayment(ctx, "inv-001", PaymentInput{Amount: 50, Reference: "rcpt-1"})
	require.NoError(t, err)
	require.Len(t, repo.recorded["inv-001"], 1)

	err = svc.RecordPayment(ctx, "inv-001", PaymentInput{Amount: 50, Reference: "rcpt-1"})
	require.ErrorIs(t, err, ErrDuplicatePayment)

	err = svc.RecordPayment(ctx, "missing", PaymentInput{Amount: 50, Reference: "rcpt-2"})
	require.ErrorIs(t, err, ErrInvoiceNotFound)

	err = svc.RecordPayment(ctx, "inv-001", PaymentInput{Amount: 0, Reference: "rcpt-3"})
	require.ErrorIs(t, err, ErrInvalidPayment)
}

func TestInvoiceRegisterSignsCreditNotes(t *testing.T) {
	svc, _ := fixtureService()
	rows, err := svc.InvoiceRegister(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Issue-date descending: credit note first.
	require.Equal(t, "CN-001", rows[0].Reference)
	require.Equal(t, -60.0, rows[0].Gross)
	require.Equal(t, -60.0, rows[0].Outstanding)

	require.Equal(t, "INV-001", rows[1].Reference)
	require.Equal(t, 240.0, rows[1].Gross)
	require.Equal(t, 240.0, rows[1].Paid)
	require.Zero(t, rows[1].Outstanding)
	require.Equal(t, "Acme Ltd", rows[1].CustomerName)

	require.Equal(t, "Unassigned", rows[2].CustomerName)
	require.Equal(t, "Draft", rows[2].Status)
}

func TestCustomerSummaries(t *testing.T) {
	svc, _ := fixtureService()
	summaries, err := svc.CustomerSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byName := make(map[string]CustomerSummary)
	for _, s := range summaries {
		byName[s.CustomerName] = s
	}

	acme := byName["Acme Ltd"]
	require.Equal(t, 2, acme.Invoices)
	require.Equal(t, 180.0, acme.TotalGross)
	require.Equal(t, 240.0, acme.TotalPaid)
	require.Equal(t, -60.0, acme.Balance)

	unassigned := byName["Unassigned"]
	require.Equal(t, 1, unassigned.Invoices)
	require.Equal(t, 100.0, unassigned.Balance)

	// Sorted by balance descending.
	require.Equal(t, "Unassigned", summaries[0].CustomerName)
}

func TestPaymentHistory(t *testing.T) {
	svc, _ := fixtureService()
	records, err := svc.PaymentHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "INV-001", records[0].InvoiceReference)
	require.Equal(t, "BACS", records[0].Method)
	require.Equal(t, 240.0, records[0].Amount)
	require.Equal(t, "Acme Ltd", records[0].CustomerName)
}

func TestReconcileFlagsStaleTotals(t *testing.T) {
	docs := fixtureDocs()
	// Drift the stored totals away from the line data.
	docs[0].Totals = ledger.Totals{Net: 180, Tax: 36, Gross: 216}
	repo := newMemoryRepo(docs, nil)
	svc := NewService(repo, nil, nil)

	rows, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "inv-001", rows[0].DocumentID)
	require.Equal(t, 180.0, rows[0].StoredNet)
	require.Equal(t, 200.0, rows[0].ComputedNet)
	require.Equal(t, 240.0, rows[0].ComputedGross)
}

func TestReconcileCleanWhenTotalsMatch(t *testing.T) {
	svc, _ := fixtureService()
	rows, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.Empty(t, rows)
}
