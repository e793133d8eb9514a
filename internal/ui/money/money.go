// Package money formats currency amounts for table cells.
package money

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCode is the currency used when a column does not name one.
const DefaultCode = "NGN"

var symbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

var printer = message.NewPrinter(language.English)

// Format renders amount in the ISO 4217 currency code with digit grouping
// and the currency's standard number of decimals, e.g. "₦1,234.50".
// Unknown codes fall back to two decimals followed by the code.
func Format(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return printer.Sprintf("%.2f", amount) + " " + code
	}
	scale, _ := currency.Standard.Rounding(unit)

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	sym, ok := symbols[unit.String()]
	if !ok {
		sym = unit.String() + " "
	}
	return sign + sym + printer.Sprintf(fmt.Sprintf("%%.%df", scale), amount)
}
