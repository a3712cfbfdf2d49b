package tracker

import (
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Status is the condition a tracker's last price is in relative to its targets
type Status string

const (
	StatusDown    Status = "down"
	StatusUp      Status = "up"
	StatusNeutral Status = "neutral"
)

// StatusOf classifies t. The down target is checked first, so a price that
// satisfies both targets is "down". Without a known price the status is
// always neutral.
func StatusOf(t models.Tracker) Status {
	if t.LastKnownPrice == nil {
		return StatusNeutral
	}
	price := *t.LastKnownPrice
	if t.TargetDown != nil && price <= *t.TargetDown {
		return StatusDown
	}
	if t.TargetUp != nil && price >= *t.TargetUp {
		return StatusUp
	}
	return StatusNeutral
}

// Highlight is how a status reads for the user's side of the trade
type Highlight string

const (
	HighlightGood    Highlight = "good"
	HighlightBad     Highlight = "bad"
	HighlightNeutral Highlight = "neutral"
)

// HighlightOf is good when the price moved the way the interest wants
// (up for sellers, down for buyers) and bad when it moved the other way
func HighlightOf(t models.Tracker) Highlight {
	switch s := StatusOf(t); {
	case (s == StatusUp && t.Interest == models.InterestSell) || (s == StatusDown && t.Interest == models.InterestBuy):
		return HighlightGood
	case (s == StatusUp && t.Interest == models.InterestBuy) || (s == StatusDown && t.Interest == models.InterestSell):
		return HighlightBad
	default:
		return HighlightNeutral
	}
}

// SellTotal is the value of all sell trackers with a known price
type SellTotal struct {
	Gross decimal.Decimal `json:"gross"`
	Fee   decimal.Decimal `json:"fee"`
	Net   decimal.Decimal `json:"net"`
}

// Totals aggregates the list. A side without any contributing tracker is nil.
type Totals struct {
	Sell *SellTotal       `json:"sell,omitempty"`
	Buy  *decimal.Decimal `json:"buy,omitempty"`
}

// ComputeTotals sums the last known prices of sell trackers, net of the
// Steam fee, and of buy trackers, unreduced
func ComputeTotals(list []models.Tracker) Totals {
	var totals Totals
	sellGross, buy := decimal.Zero, decimal.Zero
	var sellSeen, buySeen bool

	for _, t := range list {
		if t.LastKnownPrice == nil {
			continue
		}
		price := decimal.NewFromFloat(*t.LastKnownPrice)
		switch t.Interest {
		case models.InterestSell:
			sellGross = sellGross.Add(price)
			sellSeen = true
		case models.InterestBuy:
			buy = buy.Add(price)
			buySeen = true
		}
	}

	if sellSeen {
		totals.Sell = &SellTotal{
			Gross: sellGross,
			Fee:   models.SteamFee.Fee(sellGross),
			Net:   models.SteamFee.Net(sellGross),
		}
	}
	if buySeen {
		totals.Buy = &buy
	}
	return totals
}
