package ledger

// Account is a node in the fixed chart of accounts used by the posting
// generator. Entries contributed by external callers may reference accounts
// outside this registry; downstream aggregation treats those as pass-through.
type Account struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

var (
	accountCashBank = Account{Code: "1000", Name: "Cash & Bank", Type: AccountTypeAsset}
	accountAR       = Account{Code: "1100", Name: "Accounts Receivable", Type: AccountTypeAsset}
	accountSalesTax = Account{Code: "2100", Name: "Sales Tax Payable", Type: AccountTypeLiability}
	accountRevenue  = Account{Code: "4000", Name: "Sales Revenue", Type: AccountTypeRevenue}
)

var registry = []Account{accountCashBank, accountAR, accountSalesTax, accountRevenue}

// Accounts returns the fixed account registry ordered by code.
func Accounts() []Account {
	out := make([]Account, len(registry))
	copy(out, registry)
	return out
}

// Classify looks up a registry account by code.
func Classify(code string) (Account, bool) {
	for _, acc := range registry {
		if acc.Code == code {
			return acc, true
		}
	}
	return Account{}, false
}
