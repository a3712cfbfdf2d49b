package tracker

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mswatii/cs2-tracker/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the order trackers are displayed in
type SortKey string

const (
	SortNameAsc       SortKey = "name-asc"
	SortNameDesc      SortKey = "name-desc"
	SortPriceAsc      SortKey = "price-asc"
	SortPriceDesc     SortKey = "price-desc"
	SortDateNewest    SortKey = "date-newest"
	SortDateOldest    SortKey = "date-oldest"
	SortTargetDownAsc SortKey = "target-down-asc"
	SortTargetUpAsc   SortKey = "target-up-asc"

	DefaultSort = SortDateNewest
)

// SortKeys lists every key with its label, in menu order
var SortKeys = []struct {
	Key   SortKey
	Label string
}{
	{SortNameAsc, "Name (A-Z)"},
	{SortNameDesc, "Name (Z-A)"},
	{SortPriceAsc, "Price (Low to High)"},
	{SortPriceDesc, "Price (High to Low)"},
	{SortDateNewest, "Date Added (Newest)"},
	{SortDateOldest, "Date Added (Oldest)"},
	{SortTargetDownAsc, "Target Down (Low to High)"},
	{SortTargetUpAsc, "Target Up (Low to High)"},
}

// ParseSortKey validates s. An empty string yields the default key.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSort, nil
	}
	for _, k := range SortKeys {
		if string(k.Key) == s {
			return k.Key, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

func orInf(v *float64) float64 {
	if v == nil {
		return math.Inf(1)
	}
	return *v
}

func createdAt(t models.Tracker) time.Time {
	if t.CreatedAt == nil {
		return time.Time{}
	}
	return *t.CreatedAt
}

// Sort returns a sorted copy of list. Missing prices and targets count as
// infinite, so they sort last in ascending orders and first in descending
// ones; missing dates count as the oldest possible date. Ties keep their
// server order.
func Sort(list []models.Tracker, key SortKey) []models.Tracker {
	sorted := append([]models.Tracker(nil), list...)

	var less func(a, b models.Tracker) bool
	switch key {
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.English)
		if key == SortNameAsc {
			less = func(a, b models.Tracker) bool { return col.CompareString(a.SkinName, b.SkinName) < 0 }
		} else {
			less = func(a, b models.Tracker) bool { return col.CompareString(b.SkinName, a.SkinName) < 0 }
		}
	case SortPriceAsc:
		less = func(a, b models.Tracker) bool {
			return orInf(a.LastKnownPrice) < orInf(b.LastKnownPrice)
		}
	case SortPriceDesc:
		less = func(a, b models.Tracker) bool {
			return orInf(a.LastKnownPrice) > orInf(b.LastKnownPrice)
		}
	case SortDateNewest:
		less = func(a, b models.Tracker) bool { return createdAt(a).After(createdAt(b)) }
	case SortDateOldest:
		less = func(a, b models.Tracker) bool { return createdAt(a).Before(createdAt(b)) }
	case SortTargetDownAsc:
		less = func(a, b models.Tracker) bool {
			return orInf(a.TargetDown) < orInf(b.TargetDown)
		}
	case SortTargetUpAsc:
		less = func(a, b models.Tracker) bool {
			return orInf(a.TargetUp) < orInf(b.TargetUp)
		}
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}
