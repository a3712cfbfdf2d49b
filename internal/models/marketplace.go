package models

import (
	"github.com/shopspring/decimal"
)

// MarketplaceFee represents the fees a marketplace takes from a sale
type MarketplaceFee struct {
	Name               string
	TransactionPercent float64
	GamePercent        float64
}

// SteamFee is the Steam community market fee: 5% transaction plus 10% game fee
var SteamFee = MarketplaceFee{
	Name:               "Steam",
	TransactionPercent: 5,
	GamePercent:        10,
}

// Rate returns the total fee as a fraction of the sale price
func (f MarketplaceFee) Rate() decimal.Decimal {
	return decimal.NewFromFloat(f.TransactionPercent + f.GamePercent).Div(decimal.NewFromInt(100))
}

// Fee returns the part of gross the marketplace keeps
func (f MarketplaceFee) Fee(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(f.Rate())
}

// Net returns what the seller receives from gross
func (f MarketplaceFee) Net(gross decimal.Decimal) decimal.Decimal {
	return gross.Sub(f.Fee(gross))
}
