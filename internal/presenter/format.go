// Package presenter renders resolved inventory items on a scan station.
package presenter

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency selects the symbol printed in front of an amount.
type Currency string

const (
	VES Currency = "VES"
	USD Currency = "USD"
)

// Placeholder is printed for absent values.
const Placeholder = "—"

var (
	locale  = language.MustParse("es-VE")
	printer = message.NewPrinter(locale)
)

func (c Currency) symbol() string {
	switch c {
	case VES:
		return "Bs."
	case USD:
		return "$"
	}
	return string(c)
}

// FormatCurrency formats v with two decimals in es-VE notation ("Bs. 116,00").
func FormatCurrency(v *float64, c Currency) string {
	if v == nil {
		return Placeholder
	}
	return c.symbol() + " " + printer.Sprintf("%v", number.Decimal(*v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// FormatQuantity formats a stock quantity in es-VE notation.
func FormatQuantity(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return printer.Sprintf("%v", number.Decimal(*v, number.MaxFractionDigits(3)))
}
