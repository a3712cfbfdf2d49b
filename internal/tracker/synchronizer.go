package tracker

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Remote is the part of the backend client the synchronizer needs
type Remote interface {
	ListTrackers(ctx context.Context, userID string) ([]models.Tracker, error)
	CreateTracker(ctx context.Context, t models.NewTracker) (*models.Tracker, error)
	UpdateTracker(ctx context.Context, id, userID string, u models.TrackerUpdate) (*models.Tracker, error)
	DeleteTracker(ctx context.Context, id, userID string) error
	FetchListingImage(ctx context.Context, listingURL string) (string, error)
}

// Identity resolves whose trackers to load
type Identity interface {
	UserID() string
}

// ViewMode is how the list is laid out; it has no effect on the data
type ViewMode string

const (
	ViewTile ViewMode = "tile"
	ViewList ViewMode = "list"
)

// Synchronizer owns the in-memory copy of the user's trackers. The copy is
// only ever replaced wholesale by Load; mutations go to the backend and are
// followed by a reload.
type Synchronizer struct {
	remote      Remote
	identity    Identity
	concurrency int
	log         *logrus.Entry

	loadMu sync.Mutex // serializes loads so the last one started wins

	mu       sync.RWMutex
	userID   string
	trackers []models.Tracker
	images   map[string]string
	sortKey  SortKey
	view     ViewMode
}

// NewSynchronizer creates a synchronizer; concurrency bounds the image lookups
// a load runs at once
func NewSynchronizer(remote Remote, identity Identity, concurrency int, log *logger.Log) *Synchronizer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Synchronizer{
		remote:      remote,
		identity:    identity,
		concurrency: concurrency,
		log:         log.WithComponent("tracker"),
		images:      make(map[string]string),
		sortKey:     DefaultSort,
		view:        ViewTile,
	}
}

// Load replaces the list with the backend's current one and looks up images
// for trackers that have none. Without a user the list is emptied.
// Image lookups never fail the load.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	userID := s.identity.UserID()
	if userID == "" {
		s.replace("", nil, map[string]string{})
		return nil
	}

	trackers, err := s.remote.ListTrackers(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("Error loading trackers")
		return err
	}

	s.replace(userID, trackers, s.fetchImages(ctx, trackers))
	s.log.WithFields(logrus.Fields{"user_id": userID, "count": len(trackers)}).Debug("Loaded trackers")
	return nil
}

func (s *Synchronizer) replace(userID string, trackers []models.Tracker, images map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.trackers = trackers
	s.images = images
}

// fetchImages runs one lookup per tracker without a server image and
// returns the ones that succeeded, keyed by tracker id
func (s *Synchronizer) fetchImages(ctx context.Context, trackers []models.Tracker) map[string]string {
	images := make(map[string]string)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, t := range trackers {
		if t.HasServerImage() || t.ID == "" {
			continue
		}
		t := t
		g.Go(func() error {
			img, err := s.remote.FetchListingImage(ctx, models.ListingURL(t.SkinName))
			if err != nil {
				s.log.WithError(err).WithField("skin", t.SkinName).Debug("Could not fetch image")
				return nil
			}
			mu.Lock()
			images[t.ID] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return images
}

// Trackers returns the list in server order
func (s *Synchronizer) Trackers() []models.Tracker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Tracker(nil), s.trackers...)
}

// Sorted returns the list in the current sort order
func (s *Synchronizer) Sorted() []models.Tracker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Sort(s.trackers, s.sortKey)
}

// ImageFor returns the image to show for t: the server's image URL, then its
// icon hash on the CDN, then the looked-up listing image
func (s *Synchronizer) ImageFor(t models.Tracker) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.imageLocked(t)
}

func (s *Synchronizer) imageLocked(t models.Tracker) string {
	if t.ImageURL != "" {
		return t.ImageURL
	}
	if t.IconURL != "" {
		return models.ImageURL(t.IconURL)
	}
	return s.images[t.ID]
}

// Totals is recomputed from the current list on every call
func (s *Synchronizer) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeTotals(s.trackers)
}

func (s *Synchronizer) SortKey() SortKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortKey
}

func (s *Synchronizer) SetSortKey(k SortKey) {
	s.mu.Lock()
	s.sortKey = k
	s.mu.Unlock()
}

func (s *Synchronizer) ViewMode() ViewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetViewMode switches the layout; unknown modes are ignored
func (s *Synchronizer) SetViewMode(v ViewMode) {
	if v != ViewTile && v != ViewList {
		return
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// TrackerInput is what a user fills in to add or edit a tracker. Targets
// are raw text; blank means unset.
type TrackerInput struct {
	SkinName   string
	Interest   string
	TargetDown string
	TargetUp   string
}

// ParseTarget reads an optional threshold. Blank input yields nil.
func ParseTarget(field, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apierror.Validation(field, fmt.Sprintf("%s must be a number", field))
	}
	return &v, nil
}

func parseInterest(s string) (models.Interest, error) {
	if s == "" {
		return models.InterestSell, nil
	}
	i := models.Interest(strings.ToLower(strings.TrimSpace(s)))
	if !i.Valid() {
		return "", apierror.Validation("interest", "Interest must be buy or sell")
	}
	return i, nil
}

func (s *Synchronizer) requireUser() (string, error) {
	userID := s.identity.UserID()
	if userID == "" {
		return "", apierror.Validation("userId", "Please configure your settings first")
	}
	return userID, nil
}

// reload follows a successful mutation. Its failure leaves the previous
// snapshot in place and is logged, not returned: the mutation itself went through.
func (s *Synchronizer) reload(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		s.log.WithError(err).Warn("Reload after mutation failed")
	}
}

// Create adds a tracker for the current user, then reloads the list
func (s *Synchronizer) Create(ctx context.Context, in TrackerInput) (*models.Tracker, error) {
	name := strings.TrimSpace(in.SkinName)
	if name == "" {
		return nil, apierror.Validation("skinName", "Skin name is required")
	}
	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	interest, err := parseInterest(in.Interest)
	if err != nil {
		return nil, err
	}
	down, err := ParseTarget("targetDown", in.TargetDown)
	if err != nil {
		return nil, err
	}
	up, err := ParseTarget("targetUp", in.TargetUp)
	if err != nil {
		return nil, err
	}

	created, err := s.remote.CreateTracker(ctx, models.NewTracker{
		UserID:     userID,
		SkinName:   name,
		Interest:   interest,
		TargetDown: down,
		TargetUp:   up,
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"id": created.ID, "skin": name}).Info("Tracker created")
	s.reload(ctx)
	return created, nil
}

// Update changes the interest and targets of tracker id, then reloads the
// list. The skin name in the input is ignored. Targets are not checked
// against each other.
func (s *Synchronizer) Update(ctx context.Context, id string, in TrackerInput) (*models.Tracker, error) {
	if id == "" {
		return nil, apierror.Validation("id", "Tracker id is required")
	}
	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	interest, err := parseInterest(in.Interest)
	if err != nil {
		return nil, err
	}
	down, err := ParseTarget("targetDown", in.TargetDown)
	if err != nil {
		return nil, err
	}
	up, err := ParseTarget("targetUp", in.TargetUp)
	if err != nil {
		return nil, err
	}

	updated, err := s.remote.UpdateTracker(ctx, id, userID, models.TrackerUpdate{
		Interest:   interest,
		TargetDown: down,
		TargetUp:   up,
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("id", id).Info("Tracker updated")
	s.reload(ctx)
	return updated, nil
}

// Delete removes tracker id, then reloads the list
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apierror.Validation("id", "Tracker id is required")
	}
	userID, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := s.remote.DeleteTracker(ctx, id, userID); err != nil {
		return err
	}
	s.log.WithField("id", id).Info("Tracker deleted")
	s.reload(ctx)
	return nil
}

// Find returns the tracker with id from the current list
func (s *Synchronizer) Find(id string) (models.Tracker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trackers {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tracker{}, false
}

// InputFor pre-fills an edit form from t
func InputFor(t models.Tracker) TrackerInput {
	in := TrackerInput{SkinName: t.SkinName, Interest: string(t.Interest)}
	if in.Interest == "" {
		in.Interest = string(models.InterestSell)
	}
	if t.TargetDown != nil {
		in.TargetDown = strconv.FormatFloat(*t.TargetDown, 'f', -1, 64)
	}
	if t.TargetUp != nil {
		in.TargetUp = strconv.FormatFloat(*t.TargetUp, 'f', -1, 64)
	}
	return in
}
