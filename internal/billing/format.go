package billing

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var englishPrinter = message.NewPrinter(language.BritishEnglish)

// FormatMoney renders an amount with its ISO currency code and grouped
// thousands, e.g. "GBP 12,340.50". Unknown codes pass through verbatim.
func FormatMoney(code string, amount float64) string {
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}
	return englishPrinter.Sprintf("%s %.2f", code, amount)
}
