package payroll

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var wonPrinter = message.NewPrinter(language.Korean)

// FormatWon renders an amount with thousands separators, e.g. "2,870,258원".
func FormatWon(amount int64) string {
	return wonPrinter.Sprintf("%d원", amount)
}

// FormatNumber renders an amount with thousands separators and no unit.
func FormatNumber(amount int64) string {
	return wonPrinter.Sprintf("%d", amount)
}
