package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.Spanish)

// FormatCurrency renders an amount in Colombian pesos without decimals,
// using period thousands separators ("$ 250.000").
func FormatCurrency(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	rounded := int64(math.Round(value))
	if rounded < 0 {
		return currencyPrinter.Sprintf("-$ %d", -rounded)
	}
	return currencyPrinter.Sprintf("$ %d", rounded)
}
