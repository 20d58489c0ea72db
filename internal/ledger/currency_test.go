package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/ledgerdesk/ledgerdesk/testing"
)

func TestResolveReportingCurrencyMultiCurrency(t *testing.T) {
	gbp := invoiceFixture()
	usd := invoiceFixture()
	usd.ID = "inv-002"
	usd.Reference = "INV-2024-002"
	usd.Currency = "USD"
	usd.IssueDate = "2024-02-01"

	entries := Generate([]Document{gbp, usd}, nil)

	currency, multi := ResolveReportingCurrency(Filter{}, entries)
	require.True(t, multi)
	require.Equal(t, entries[0].Currency, currency)

	currency, multi = ResolveReportingCurrency(Filter{Currency: "USD"}, entries)
	require.False(t, multi)
	require.Equal(t, "USD", currency)
}

func TestResolveReportingCurrencyDefaults(t *testing.T) {
	currency, multi := ResolveReportingCurrency(Filter{}, nil)
	require.False(t, multi)
	require.Equal(t, DefaultCurrency, currency)
}

func TestCurrenciesFirstSeenOrder(t *testing.T) {
	entries := []Entry{
		{Currency: "USD"},
		{Currency: ""},
		{Currency: "EUR"},
		{Currency: "USD"},
	}
	require.Equal(t, []string{"USD", "GBP", "EUR"}, Currencies(entries))
}

func TestAccountOptions(t *testing.T) {
	entries := paidInvoiceEntries(t)
	opts := AccountOptions(entries)
	require.Equal(t, []AccountOption{
		{Code: "1000", Name: "Cash & Bank"},
		{Code: "1100", Name: "Accounts Receivable"},
		{Code: "2100", Name: "Sales Tax Payable"},
		{Code: "4000", Name: "Sales Revenue"},
	}, opts)
}

func TestAccountRegistry(t *testing.T) {
	accounts := Accounts()
	require.Len(t, accounts, 4)

	acc, ok := Classify("4000")
	require.True(t, ok)
	require.Equal(t, "Sales Revenue", acc.Name)
	require.Equal(t, AccountTypeRevenue, acc.Type)

	_, ok = Classify("9999")
	require.False(t, ok)
}
