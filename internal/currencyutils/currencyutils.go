// Package currencyutils formats money amounts for messages and reports.
package currencyutils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var codeSymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"CHF": "CHF ",
}

// FormatPlain renders amount with exactly two decimals and no separators.
func FormatPlain(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatAmount prefixes the plain amount with a currency symbol. Known ISO
// codes map to their symbol, other three-letter codes are followed by a
// space and anything else is used verbatim.
// Returns strings like "₹5000.00", "$12.50" or "SEK 3.00".
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := FormatPlain(amount)
	if currency == "" {
		return formatted
	}
	if symbol, ok := codeSymbols[strings.ToUpper(currency)]; ok {
		return symbol + formatted
	}
	if isCurrencyCode(currency) {
		return currency + " " + formatted
	}
	return currency + formatted
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
