package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(nil); got != NoPrice {
		t.Errorf("FormatPrice(nil) = %q", got)
	}
	got := FormatPrice(Float(1234.5))
	if !strings.Contains(got, "1,234.50") || !strings.Contains(got, "₹") {
		t.Errorf("FormatPrice(1234.5) = %q", got)
	}
}

func TestFormatMoneyUnknownCurrency(t *testing.T) {
	if got := FormatMoney(decimal.NewFromFloat(3.1), "XXX-NOPE"); got != "3.10" {
		t.Errorf("FormatMoney() = %q", got)
	}
}

func TestSteamFee(t *testing.T) {
	gross := decimal.NewFromInt(1000)
	if !SteamFee.Fee(gross).Equal(decimal.NewFromInt(150)) {
		t.Errorf("Fee() = %s", SteamFee.Fee(gross))
	}
	if !SteamFee.Net(gross).Equal(decimal.NewFromInt(850)) {
		t.Errorf("Net() = %s", SteamFee.Net(gross))
	}
}

func TestListingURL(t *testing.T) {
	tests := map[string]string{
		"AK-47 | Redline (Field-Tested)":          "AK-47%20%7C%20Redline%20(Field-Tested)",
		"StatTrak™ M4A1-S | Hot Rod (Factory New)": "StatTrak%E2%84%A2%20M4A1-S%20%7C%20Hot%20Rod%20(Factory%20New)",
		"Sticker | Kawaii Killer CT!'s*":           "Sticker%20%7C%20Kawaii%20Killer%20CT!'s*",
		"A+B/C?d=1&e":                             "A%2BB%2FC%3Fd%3D1%26e",
	}
	for name, want := range tests {
		if got := ListingURL(name); got != SteamListingURL+want {
			t.Errorf("ListingURL(%q) = %q, want %q", name, got, SteamListingURL+want)
		}
	}
}

func TestImageURL(t *testing.T) {
	if got := ImageURL("abc"); got != SteamImageCDN+"abc" {
		t.Errorf("ImageURL(hash) = %q", got)
	}
	if got := ImageURL("https://x/y.png"); got != "https://x/y.png" {
		t.Errorf("ImageURL(url) = %q", got)
	}
	if got := ImageURL(""); got != "" {
		t.Errorf("ImageURL(\"\") = %q", got)
	}
}
