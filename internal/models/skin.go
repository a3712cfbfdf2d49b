package models

import (
	"net/url"
	"strings"
)

// Wear is the condition qualifier at the end of a skin's market name,
// e.g. "AK-47 | Redline (Field-Tested)"
type Wear string

const (
	FactoryNew    Wear = "Factory New"
	MinimalWear   Wear = "Minimal Wear"
	FieldTested   Wear = "Field-Tested"
	WellWorn      Wear = "Well-Worn"
	BattleScarred Wear = "Battle-Scarred"
)

// WearLadder lists the qualifiers from best to worst condition
var WearLadder = []Wear{FactoryNew, MinimalWear, FieldTested, WellWorn, BattleScarred}

// ParseWear returns the qualifier matching s, if it is one of the ladder's
func ParseWear(s string) (Wear, bool) {
	for _, w := range WearLadder {
		if string(w) == s {
			return w, true
		}
	}
	return "", false
}

// Rank returns the position of w on the ladder, or len(WearLadder) when unknown
func (w Wear) Rank() int {
	for i, l := range WearLadder {
		if l == w {
			return i
		}
	}
	return len(WearLadder)
}

// FullName joins a base name and a qualifier the way the market names items
func FullName(base string, w Wear) string {
	return base + " (" + string(w) + ")"
}

const (
	SteamAppID      = 730
	SteamListingURL = "https://steamcommunity.com/market/listings/730/"
	SteamImageCDN   = "https://steamcommunity-a.akamaihd.net/economy/image/"
)

// ListingURL returns the public Steam market page of an item. The name is
// escaped like encodeURIComponent, so image lookups key on the same URL the
// web front-end uses.
func ListingURL(name string) string {
	return SteamListingURL + listingEscaper.Replace(url.QueryEscape(name))
}

// QueryEscape escapes everything outside A-Z a-z 0-9 -_.~ and writes spaces
// as "+"; these put back the marks encodeURIComponent leaves alone.
var listingEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ImageURL expands a Steam icon hash to a CDN URL. Values that are already
// URLs are returned unchanged.
func ImageURL(iconOrURL string) string {
	if iconOrURL == "" {
		return ""
	}
	if strings.HasPrefix(iconOrURL, "http://") || strings.HasPrefix(iconOrURL, "https://") {
		return iconOrURL
	}
	return SteamImageCDN + iconOrURL
}
