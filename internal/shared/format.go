package shared

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var viPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount as Vietnamese dong, e.g. "1.250.000 ₫".
func FormatVND(d decimal.Decimal) string {
	return viPrinter.Sprintf("%v ₫", number.Decimal(d.Round(0).IntPart()))
}

// FormatCount renders an integer with Vietnamese digit grouping.
func FormatCount(n int64) string {
	return viPrinter.Sprintf("%v", number.Decimal(n))
}
