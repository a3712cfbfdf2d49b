package models

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DisplayCurrency is the currency tracker prices are stored and shown in
const DisplayCurrency = "INR"

// NoPrice is shown in place of a missing price
const NoPrice = "—"

// FormatMoney renders amount with the currency's symbol, grouping and minor
// units. Unknown currencies fall back to a plain two-decimal number.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// FormatPrice renders an optional price in DisplayCurrency
func FormatPrice(p *float64) string {
	if p == nil {
		return NoPrice
	}
	return FormatMoney(decimal.NewFromFloat(*p), DisplayCurrency)
}
