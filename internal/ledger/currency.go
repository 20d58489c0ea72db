package ledger

import "sort"

// Currencies returns the distinct entry currencies in first-seen order,
// substituting the default for entries without one.
func Currencies(entries []Entry) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		cur := e.Currency
		if cur == "" {
			cur = DefaultCurrency
		}
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
	}
	return out
}

// ResolveReportingCurrency determines which currency a statement over the
// entries is expressed in. When the filter pins a currency that wins;
// otherwise the first-seen currency is used and multi is set when more than
// one distinct currency remains unfiltered, telling the UI that totals are
// not comparable.
func ResolveReportingCurrency(f Filter, entries []Entry) (currency string, multi bool) {
	currencies := Currencies(entries)
	if active(f.Currency) {
		return f.Currency, false
	}
	if len(currencies) == 0 {
		return DefaultCurrency, false
	}
	return currencies[0], len(currencies) > 1
}

// AccountOption is a code/name pair for filter dropdowns.
type AccountOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// AccountOptions lists the distinct accounts present in the entries, sorted
// by code.
func AccountOptions(entries []Entry) []AccountOption {
	seen := make(map[string]string)
	for _, e := range entries {
		if e.AccountCode == "" {
			continue
		}
		name := e.AccountName
		if name == "" {
			name = e.AccountCode
		}
		seen[e.AccountCode] = name
	}
	out := make([]AccountOption, 0, len(seen))
	for code, name := range seen {
		out = append(out, AccountOption{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
