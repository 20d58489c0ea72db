package ledger

import "sort"

// AccountBalance is the running balance for one account over a filtered
// entry set. Currency is the last-seen entry currency; mixed-currency sets
// are flagged by the reporting currency resolver, not prevented here.
type AccountBalance struct {
	AccountCode string      `json:"accountCode"`
	AccountName string      `json:"accountName"`
	Type        AccountType `json:"type"`
	Balance     float64     `json:"balance"`
	Currency    string      `json:"currency"`
}

// NormalizedAmount applies the debit/credit sign convention: assets and
// expenses increase with debits, everything else with credits.
func NormalizedAmount(e Entry) float64 {
	diff := e.Debit - e.Credit
	if e.Type == AccountTypeAsset || e.Type == AccountTypeExpense {
		return diff
	}
	return -diff
}

// ComputeAccountBalances reduces entries to one balance row per distinct
// account, sorted by account code ascending.
func ComputeAccountBalances(entries []Entry) []AccountBalance {
	balances := make(map[string]*AccountBalance)
	for _, e := range entries {
		key := e.AccountCode
		if key == "" {
			key = e.AccountName
		}
		if key == "" {
			key = "uncategorized"
		}
		row, ok := balances[key]
		if !ok {
			row = &AccountBalance{
				AccountCode: firstNonEmpty(e.AccountCode, key),
				AccountName: firstNonEmpty(e.AccountName, key),
				Type:        e.Type,
				Currency:    firstNonEmpty(e.Currency, DefaultCurrency),
			}
			if row.Type == "" {
				row.Type = AccountTypeAsset
			}
			balances[key] = row
		}
		row.Balance += NormalizedAmount(e)
		if e.Currency != "" {
			row.Currency = e.Currency
		}
	}

	out := make([]AccountBalance, 0, len(balances))
	for _, row := range balances {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })
	return out
}

// LedgerTotals sums raw debits and credits over a filtered set. Imbalance
// should be zero for any ledger generated by this package.
type LedgerTotals struct {
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	Imbalance float64 `json:"imbalance"`
}

// ComputeTotals returns debit/credit sums rounded to two decimals.
func ComputeTotals(entries []Entry) LedgerTotals {
	var debit, credit float64
	for _, e := range entries {
		debit += e.Debit
		credit += e.Credit
	}
	return LedgerTotals{
		Debit:     Round2(debit),
		Credit:    Round2(credit),
		Imbalance: Round2(debit - credit),
	}
}
