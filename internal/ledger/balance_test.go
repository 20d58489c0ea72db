package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/ledgerdesk/ledgerdesk/testing"
)

func TestNormalizedAmountSignConvention(t *testing.T) {
	cases := []struct {
		name  string
		entry Entry
		want  float64
	}{
		{"asset debit increases", Entry{Type: AccountTypeAsset, Debit: 100}, 100},
		{"asset credit decreases", Entry{Type: AccountTypeAsset, Credit: 40}, -40},
		{"expense debit increases", Entry{Type: AccountTypeExpense, Debit: 25}, 25},
		{"liability credit increases", Entry{Type: AccountTypeLiability, Credit: 60}, 60},
		{"revenue credit increases", Entry{Type: AccountTypeRevenue, Credit: 200}, 200},
		{"equity debit decreases", Entry{Type: AccountTypeEquity, Debit: 10}, -10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizedAmount(tc.entry))
		})
	}
}

func TestComputeAccountBalancesGroupsAndSorts(t *testing.T) {
	entries := paidInvoiceEntries(t)
	balances := ComputeAccountBalances(entries)
	require.Len(t, balances, 3)
	for i := 1; i < len(balances); i++ {
		require.Less(t, balances[i-1].AccountCode, balances[i].AccountCode)
	}

	byCode := make(map[string]AccountBalance)
	for _, b := range balances {
		byCode[b.AccountCode] = b
	}
	require.InDelta(t, 240, byCode["1000"].Balance, 0.001)
	require.InDelta(t, 0, byCode["1100"].Balance, 0.001)
	require.InDelta(t, 40, byCode["2100"].Balance, 0.001)
}

func TestComputeAccountBalancesFallbackKeys(t *testing.T) {
	entries := []Entry{
		{AccountName: "Petty Cash", Type: AccountTypeAsset, Debit: 5, Currency: "GBP"},
		{Type: AccountTypeAsset, Debit: 7},
	}
	balances := ComputeAccountBalances(entries)
	require.Len(t, balances, 2)

	var uncategorized bool
	for _, b := range balances {
		if b.AccountCode == "uncategorized" {
			uncategorized = true
			require.Equal(t, 7.0, b.Balance)
			require.Equal(t, DefaultCurrency, b.Currency)
		}
	}
	require.True(t, uncategorized)
}

func TestComputeAccountBalancesCurrencyIsLastSeen(t *testing.T) {
	entries := []Entry{
		{AccountCode: "1000", Type: AccountTypeAsset, Debit: 5, Currency: "GBP"},
		{AccountCode: "1000", Type: AccountTypeAsset, Debit: 5, Currency: "USD"},
	}
	balances := ComputeAccountBalances(entries)
	require.Len(t, balances, 1)
	require.Equal(t, "USD", balances[0].Currency)
}

func TestComputeTotalsReportsImbalance(t *testing.T) {
	balanced := paidInvoiceEntries(t)
	totals := ComputeTotals(balanced)
	require.Equal(t, 480.0, totals.Debit)
	require.Equal(t, 480.0, totals.Credit)
	require.Zero(t, totals.Imbalance)

	skewed := append(append([]Entry{}, balanced...), Entry{Type: AccountTypeAsset, Debit: 0.25})
	totals = ComputeTotals(skewed)
	require.InDelta(t, 0.25, totals.Imbalance, 0.001)
}

func TestAggregationMatchesBalanceSheetAssets(t *testing.T) {
	entries := paidInvoiceEntries(t)
	balances := ComputeAccountBalances(entries)
	var assetSum float64
	for _, b := range balances {
		if b.Type == AccountTypeAsset {
			assetSum += b.Balance
		}
	}
	bs := ComputeBalanceSheet(entries, ComputeProfitAndLoss(entries))
	require.InDelta(t, bs.Assets, Round2(assetSum), 0.001)
}
