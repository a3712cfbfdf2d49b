package search

import (
	"testing"

	"github.com/mswatii/cs2-tracker/internal/models"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantWear models.Wear
		wantOK   bool
	}{
		{"AK-47 | Redline (Field-Tested)", "AK-47 | Redline", models.FieldTested, true},
		{"StatTrak™ AWP | Asiimov (Battle-Scarred)", "StatTrak™ AWP | Asiimov", models.BattleScarred, true},
		{"★ Karambit | Doppler (Factory New) ", "★ Karambit | Doppler", models.FactoryNew, true},
		{"Sticker | Crown (Foil)", "", "", false},
		{"Operation Breakout Weapon Case", "", "", false},
		{"M4A4 | Howl (Minimal Wear) souvenir", "", "", false},
		{"(Factory New)", "", "", false},
		{"   (Field-Tested)", "", "", false},
	}
	for _, tt := range tests {
		base, wear, ok := SplitName(tt.name)
		if base != tt.wantBase || wear != tt.wantWear || ok != tt.wantOK {
			t.Errorf("SplitName(%q) = %q, %q, %v; want %q, %q, %v",
				tt.name, base, wear, ok, tt.wantBase, tt.wantWear, tt.wantOK)
		}
	}
}

func TestRarityColor(t *testing.T) {
	tests := map[string]string{
		"Covert Sniper Rifle":           "#eb4b4b",
		"StatTrak™ Classified Rifle":    "#d32ce6",
		"mil-spec grade pistol":         "#4b69ff",
		"Industrial Grade SMG":          "#5e98d9",
		"Contraband Rifle":              "#e4ae39",
		"Base Grade Container":          "",
		"":                              "",
	}
	for in, want := range tests {
		if got := RarityColor(in); got != want {
			t.Errorf("RarityColor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeSynthesizesLadder(t *testing.T) {
	raw := []models.SearchItem{
		{Name: "AK-47 | Redline (Field-Tested)", SellPriceText: "$12.34", Type: "Classified Rifle", IconURL: "hashA"},
		{Name: "AK-47 | Redline (Minimal Wear)", SellPriceText: "$30.00", Type: "Classified Rifle", IconURL: "hashB"},
		{Name: "AWP | Asiimov (Battle-Scarred)", SellPriceText: "$70.10",
			AssetDescription: &models.AssetDescription{Type: "Covert Sniper Rifle", IconURL: "hashC"}},
		{Name: "Operation Riptide Case", SellPriceText: "$0.50"},
		{Name: "Sticker | Crown (Foil)", SellPriceText: "$900.00"},
	}

	got := Normalize(raw)
	if len(got) != 10 {
		t.Fatalf("Normalize() returned %d candidates, want 10", len(got))
	}

	for i, c := range got {
		if _, ok := models.ParseWear(string(c.Wear)); !ok {
			t.Errorf("candidate %d has unknown wear %q", i, c.Wear)
		}
		if i > 0 {
			prev := got[i-1]
			if prev.BaseName > c.BaseName || (prev.BaseName == c.BaseName && prev.Wear.Rank() >= c.Wear.Rank()) {
				t.Errorf("candidates %d and %d out of order: %q, %q", i-1, i, prev.Name, c.Name)
			}
		}
	}

	first := got[0]
	if first.Name != "AK-47 | Redline (Factory New)" || first.Price != "" {
		t.Errorf("first candidate = %+v", first)
	}
	if first.ImageURL != models.SteamImageCDN+"hashA" || first.RarityColor != "#d32ce6" {
		t.Errorf("base-level image/color not shared: %+v", first)
	}
	if got[1].Name != "AK-47 | Redline (Minimal Wear)" || got[1].Price != "$30.00" {
		t.Errorf("minimal wear candidate = %+v", got[1])
	}
	if got[2].Price != "$12.34" {
		t.Errorf("field-tested price = %q", got[2].Price)
	}
	awp := got[9]
	if awp.Name != "AWP | Asiimov (Battle-Scarred)" || awp.Price != "$70.10" ||
		awp.RarityColor != "#eb4b4b" || awp.ImageURL != models.SteamImageCDN+"hashC" {
		t.Errorf("AWP battle-scarred = %+v", awp)
	}
}

func TestNormalizeDropsUnqualified(t *testing.T) {
	raw := []models.SearchItem{
		{Name: "Glove Case Key"},
		{Name: "Music Kit | Darude, Sandstorm"},
		{Name: "Sealed Graffiti | Lambda (Blood Red)"},
		{Name: "(Factory New)"},
	}
	if got := Normalize(raw); len(got) != 0 {
		t.Errorf("Normalize() = %+v, want none", got)
	}
}

func TestNormalizeDeduplicates(t *testing.T) {
	raw := []models.SearchItem{
		{Name: "USP-S | Kill Confirmed (Factory New)", SellPriceText: "$90.00"},
		{Name: "USP-S | Kill Confirmed (Factory New)", SellPriceText: "$95.00"},
		{HashName: "USP-S | Kill Confirmed (Well-Worn)"},
	}
	got := Normalize(raw)
	if len(got) != len(models.WearLadder) {
		t.Fatalf("Normalize() returned %d candidates, want %d", len(got), len(models.WearLadder))
	}
	if got[0].Price != "$90.00" {
		t.Errorf("factory new price = %q, want first seen", got[0].Price)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"$1,234.56", "1234.56", true},
		{"₹ 1,850.00", "1850", true},
		{"$0.03 USD", "0.03", true},
		{"$0.00", "0", false},
		{"", "0", false},
		{"Sold out", "0", false},
		{"-$5.00", "0", false},
		{"$1.2.3", "0", false},
		{"1.234,56€", "0", false},
		{"$1,234", "1234", true},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if ok != tt.wantOK || got.String() != tt.want {
			t.Errorf("ParsePrice(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
