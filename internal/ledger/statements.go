package ledger

// ProfitAndLoss is the income statement for a filtered entry set.
type ProfitAndLoss struct {
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// ComputeProfitAndLoss sums normalized revenue and expense amounts, rounded
// to two decimals.
func ComputeProfitAndLoss(entries []Entry) ProfitAndLoss {
	var revenue, expenses float64
	for _, e := range entries {
		switch e.Type {
		case AccountTypeRevenue:
			revenue += NormalizedAmount(e)
		case AccountTypeExpense:
			expenses += NormalizedAmount(e)
		}
	}
	return ProfitAndLoss{
		Revenue:  Round2(revenue),
		Expenses: Round2(expenses),
		Net:      Round2(revenue - expenses),
	}
}

// BalanceSheet is the position statement for a filtered entry set. Equity
// includes the current period's net income (retained-earnings convention).
// BalanceGap must be zero for a correctly generated ledger; a non-zero gap
// signals a posting bug and is surfaced rather than hidden.
type BalanceSheet struct {
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	Equity      float64 `json:"equity"`
	BalanceGap  float64 `json:"balanceGap"`
}

// ComputeBalanceSheet folds the period's profit into equity and reports the
// accounting-equation residual.
func ComputeBalanceSheet(entries []Entry, pl ProfitAndLoss) BalanceSheet {
	var assets, liabilities, equity float64
	for _, e := range entries {
		amount := NormalizedAmount(e)
		switch e.Type {
		case AccountTypeAsset:
			assets += amount
		case AccountTypeLiability:
			liabilities += amount
		case AccountTypeEquity:
			equity += amount
		}
	}
	equityWithIncome := equity + pl.Net
	return BalanceSheet{
		Assets:      Round2(assets),
		Liabilities: Round2(liabilities),
		Equity:      Round2(equityWithIncome),
		BalanceGap:  Round2(assets - liabilities - equityWithIncome),
	}
}
