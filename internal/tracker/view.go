package tracker

import (
	"github.com/mswatii/cs2-tracker/internal/models"
)

// Row is a tracker with everything needed to display it
type Row struct {
	models.Tracker
	Image      string    `json:"image,omitempty"`
	Status     Status    `json:"status"`
	Highlight  Highlight `json:"highlight"`
	ListingURL string    `json:"listingUrl"`
}

// View is a display snapshot of the list
type View struct {
	UserID   string   `json:"userId"`
	SortKey  SortKey  `json:"sort"`
	ViewMode ViewMode `json:"view"`
	Rows     []Row    `json:"trackers"`
	Totals   Totals   `json:"totals"`
}

// View derives the sorted rows and the totals from the current list, using
// the stored sort key and view mode. Nothing derived is stored between calls.
func (s *Synchronizer) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked(s.sortKey, s.view)
}

// ViewAs is View with a sort key and view mode for this call only. The
// stored settings are left alone; an unknown mode falls back to the stored one.
func (s *Synchronizer) ViewAs(key SortKey, mode ViewMode) View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if mode != ViewTile && mode != ViewList {
		mode = s.view
	}
	return s.viewLocked(key, mode)
}

func (s *Synchronizer) viewLocked(key SortKey, mode ViewMode) View {
	sorted := Sort(s.trackers, key)
	rows := make([]Row, 0, len(sorted))
	for _, t := range sorted {
		rows = append(rows, Row{
			Tracker:    t,
			Image:      s.imageLocked(t),
			Status:     StatusOf(t),
			Highlight:  HighlightOf(t),
			ListingURL: models.ListingURL(t.SkinName),
		})
	}

	return View{
		UserID:   s.userID,
		SortKey:  key,
		ViewMode: mode,
		Rows:     rows,
		Totals:   ComputeTotals(s.trackers),
	}
}
