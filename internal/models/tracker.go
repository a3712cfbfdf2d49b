package models

import (
	"time"
)

// Interest is the side of the market a tracker watches
type Interest string

const (
	InterestBuy  Interest = "buy"
	InterestSell Interest = "sell"
)

// Valid reports whether the interest is one the backend accepts
func (i Interest) Valid() bool {
	return i == InterestBuy || i == InterestSell
}

// Tracker represents one watched skin for one user and one interest side.
// Price and alert fields are written by the backend only.
type Tracker struct {
	ID                 string     `json:"_id"`
	UserID             string     `json:"userId"`
	SkinName           string     `json:"skinName"`
	Interest           Interest   `json:"interest"`
	TargetDown         *float64   `json:"targetDown"`
	TargetUp           *float64   `json:"targetUp"`
	LastKnownPrice     *float64   `json:"lastKnownPrice"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
	DownAlertSent      bool       `json:"downAlertSent,omitempty"`
	UpAlertSent        bool       `json:"upAlertSent,omitempty"`
	LastDownAlertPrice *float64   `json:"lastDownAlertPrice,omitempty"`
	LastUpAlertPrice   *float64   `json:"lastUpAlertPrice,omitempty"`
	ImageURL           string     `json:"imageUrl,omitempty"`
	IconURL            string     `json:"iconUrl,omitempty"` // Steam CDN image hash
}

// HasServerImage reports whether the backend supplied an image reference or hash
func (t *Tracker) HasServerImage() bool {
	return t.ImageURL != "" || t.IconURL != ""
}

// NewTracker is the body of a create request
type NewTracker struct {
	UserID     string   `json:"userId"`
	SkinName   string   `json:"skinName"`
	Interest   Interest `json:"interest"`
	TargetDown *float64 `json:"targetDown"`
	TargetUp   *float64 `json:"targetUp"`
}

// TrackerUpdate is the body of an update request. The skin name is not part
// of it: a tracker's item cannot change after creation.
type TrackerUpdate struct {
	Interest   Interest `json:"interest"`
	TargetDown *float64 `json:"targetDown"`
	TargetUp   *float64 `json:"targetUp"`
}

// Float returns a pointer to v, for optional thresholds
func Float(v float64) *float64 {
	return &v
}
