package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// wearSuffix matches a parenthesized qualifier at the end of a market name
var wearSuffix = regexp.MustCompile(`^(.*?)\s*\(([^()]+)\)\s*$`)

type rarity struct {
	name  string
	color string
}

// rarities maps rarity names (matched case-insensitively as substrings of
// the item type) to display colors. Order matters: the first match wins.
var rarities = []rarity{
	{"covert", "#eb4b4b"},
	{"classified", "#d32ce6"},
	{"restricted", "#8847ff"},
	{"mil-spec", "#4b69ff"},
	{"industrial grade", "#5e98d9"},
	{"consumer grade", "#b0c3d9"},
	{"contraband", "#e4ae39"},
}

// SplitName splits a market name into its base name and wear. ok is false
// when the name has no recognized wear suffix or nothing before it.
func SplitName(name string) (base string, wear models.Wear, ok bool) {
	m := wearSuffix.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	wear, ok = models.ParseWear(strings.TrimSpace(m[2]))
	if !ok {
		return "", "", false
	}
	base = strings.TrimSpace(m[1])
	if base == "" {
		return "", "", false
	}
	return base, wear, true
}

// RarityColor returns the color of the first rarity named in itemType, or ""
func RarityColor(itemType string) string {
	t := strings.ToLower(itemType)
	for _, r := range rarities {
		if strings.Contains(t, r.name) {
			return r.color
		}
	}
	return ""
}

// Normalize turns a raw search payload into the full wear ladder of every
// base name it mentions. Items without a recognized wear are dropped. Image
// and rarity are shared by all wears of a base name (first seen wins); the
// price belongs to the exact name only.
func Normalize(raw []models.SearchItem) []models.SearchCandidate {
	images := make(map[string]string)
	colors := make(map[string]string)
	prices := make(map[string]string)
	var bases []string

	for _, item := range raw {
		name := strings.TrimSpace(item.DisplayName())
		base, wear, ok := SplitName(name)
		if !ok {
			continue
		}
		if _, seen := images[base]; !seen {
			bases = append(bases, base)
			images[base] = item.Image()
		} else if images[base] == "" {
			images[base] = item.Image()
		}
		if colors[base] == "" {
			colors[base] = RarityColor(item.RarityText())
		}
		full := models.FullName(base, wear)
		if _, seen := prices[full]; !seen && item.SellPriceText != "" {
			prices[full] = item.SellPriceText
		}
	}

	byName := make(map[string]models.SearchCandidate)
	for _, base := range bases {
		for _, wear := range models.WearLadder {
			full := models.FullName(base, wear)
			byName[full] = models.SearchCandidate{
				Name:        full,
				BaseName:    base,
				Wear:        wear,
				ImageURL:    images[base],
				RarityColor: colors[base],
				Price:       prices[full],
			}
		}
	}

	out := make([]models.SearchCandidate, 0, len(byName))
	for _, c := range byName {
		out = append(out, c)
	}
	SortCandidates(out)
	return out
}

// SortCandidates orders candidates by base name, then best to worst wear
func SortCandidates(c []models.SearchCandidate) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].BaseName != c[j].BaseName {
			return c[i].BaseName < c[j].BaseName
		}
		return c[i].Wear.Rank() < c[j].Wear.Rank()
	})
}

// ParsePrice parses a formatted market price such as "$1,234.56" or
// "₹ 1,850.00". Only comma-grouped, dot-decimal amounts are read; ok is false
// for "1.234,56" style amounts and when no positive amount can be read.
func ParsePrice(s string) (decimal.Decimal, bool) {
	if dot := strings.LastIndex(s, "."); dot >= 0 && strings.LastIndex(s, ",") > dot {
		return decimal.Zero, false
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// PriceOf returns the parsed price of a candidate, if any
func PriceOf(c models.SearchCandidate) (decimal.Decimal, bool) {
	if c.Price == "" {
		return decimal.Zero, false
	}
	return ParsePrice(c.Price)
}
