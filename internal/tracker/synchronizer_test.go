package tracker_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/backend"
	"github.com/mswatii/cs2-tracker/internal/backend/backendtest"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/mswatii/cs2-tracker/internal/tracker"
)

type staticIdentity string

func (s staticIdentity) UserID() string { return string(s) }

func newSynchronizer(t *testing.T, user string) (*tracker.Synchronizer, *backendtest.Server) {
	t.Helper()
	srv := backendtest.NewServer()
	t.Cleanup(srv.Close)
	client := backend.NewClient(srv.URL, 0, logger.Discard())
	return tracker.NewSynchronizer(client, staticIdentity(user), 4, logger.Discard()), srv
}

func TestLoadWithoutUser(t *testing.T) {
	s, srv := newSynchronizer(t, "")
	srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "AWP | Asiimov (Field-Tested)"})

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n := len(s.Trackers()); n != 0 {
		t.Errorf("Trackers() = %d, want 0", n)
	}
	if n := srv.RequestCount("/track"); n != 0 {
		t.Errorf("backend hit %d times without a user", n)
	}
}

func TestCreateThenLoad(t *testing.T) {
	ctx := context.Background()
	s, srv := newSynchronizer(t, "u1")
	name := "AK-47 | Redline (Field-Tested)"
	srv.Images[models.ListingURL(name)] = "https://cdn.example/redline.png"

	created, err := s.Create(ctx, tracker.TrackerInput{
		SkinName:   "  " + name + " ",
		TargetDown: "1800",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Interest != models.InterestSell {
		t.Errorf("interest = %q, want sell by default", created.Interest)
	}

	list := s.Trackers()
	if len(list) != 1 || list[0].ID != created.ID || list[0].SkinName != name {
		t.Fatalf("Trackers() = %+v", list)
	}
	if got := s.ImageFor(list[0]); got != "https://cdn.example/redline.png" {
		t.Errorf("ImageFor() = %q", got)
	}
	if list[0].TargetDown == nil || *list[0].TargetDown != 1800 || list[0].TargetUp != nil {
		t.Errorf("targets = %v/%v", list[0].TargetDown, list[0].TargetUp)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	s, srv := newSynchronizer(t, "u1")

	cases := []tracker.TrackerInput{
		{SkinName: "   "},
		{SkinName: "AWP | Asiimov (Field-Tested)", TargetDown: "cheap"},
		{SkinName: "AWP | Asiimov (Field-Tested)", TargetUp: "NaN"},
		{SkinName: "AWP | Asiimov (Field-Tested)", Interest: "hold"},
	}
	for _, in := range cases {
		if _, err := s.Create(ctx, in); !apierror.IsValidation(err) {
			t.Errorf("Create(%+v) error = %v, want validation", in, err)
		}
	}
	if n := srv.RequestCount("/track"); n != 0 {
		t.Errorf("backend hit %d times for invalid input", n)
	}

	noUser, _ := newSynchronizer(t, "")
	_, err := noUser.Create(ctx, tracker.TrackerInput{SkinName: "AWP | Asiimov (Field-Tested)"})
	if got := apierror.UserMessage(err, ""); got != "Please configure your settings first" {
		t.Errorf("Create() without user message = %q", got)
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s, srv := newSynchronizer(t, "u1")
	orig := srv.AddTracker(models.Tracker{
		UserID:     "u1",
		SkinName:   "M4A1-S | Printstream (Minimal Wear)",
		Interest:   models.InterestSell,
		TargetDown: models.Float(100),
		ImageURL:   "https://cdn.example/print.png",
	})
	other := srv.AddTracker(models.Tracker{
		UserID:   "u1",
		SkinName: "Glock-18 | Fade (Factory New)",
		Interest: models.InterestBuy,
		TargetUp: models.Float(900),
		ImageURL: "https://cdn.example/fade.png",
	})
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}
	otherBefore, ok := s.Find(other.ID)
	if !ok {
		t.Fatal("Find() missed the second tracker")
	}
	countBefore := len(s.Trackers())

	found, ok := s.Find(orig.ID)
	if !ok {
		t.Fatal("Find() missed the loaded tracker")
	}
	in := tracker.InputFor(found)
	if in.TargetDown != "100" || in.Interest != "sell" {
		t.Errorf("InputFor() = %+v", in)
	}
	in.SkinName = "something else"
	in.Interest = "buy"
	in.TargetDown = ""
	in.TargetUp = "250.5"

	if _, err := s.Update(ctx, orig.ID, in); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, ok := s.Find(orig.ID)
	if !ok {
		t.Fatal("tracker gone after update")
	}
	if got.SkinName != orig.SkinName {
		t.Errorf("skin name = %q, want %q", got.SkinName, orig.SkinName)
	}
	if got.Interest != models.InterestBuy || got.TargetDown != nil || got.TargetUp == nil || *got.TargetUp != 250.5 {
		t.Errorf("updated = %+v", got)
	}
	if n := srv.RequestCount("/steam-image"); n != 0 {
		t.Errorf("image looked up %d times for a tracker with a server image", n)
	}

	if n := len(s.Trackers()); n != countBefore {
		t.Errorf("len(Trackers()) = %d after update, want %d", n, countBefore)
	}
	otherAfter, ok := s.Find(other.ID)
	if !ok {
		t.Fatal("second tracker gone after update")
	}
	if !reflect.DeepEqual(otherAfter, otherBefore) {
		t.Errorf("second tracker changed:\nbefore %+v\nafter  %+v", otherBefore, otherAfter)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, srv := newSynchronizer(t, "u1")
	a := srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "AWP | Asiimov (Field-Tested)"})
	b := srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "Glock-18 | Fade (Factory New)"})
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list := s.Trackers()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("Trackers() = %+v", list)
	}
	if err := s.Delete(ctx, a.ID); !apierror.IsNotFound(err) {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestImageLookupFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	s, srv := newSynchronizer(t, "u1")
	withIcon := srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "AWP | Asiimov (Field-Tested)", IconURL: "abc123"})
	missing := srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "Glock-18 | Fade (Factory New)"})
	srv.Fail = "/steam-image"

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n := len(s.Trackers()); n != 2 {
		t.Fatalf("Trackers() = %d, want 2", n)
	}
	if got := s.ImageFor(missing); got != "" {
		t.Errorf("ImageFor(missing) = %q, want empty", got)
	}
	if got := s.ImageFor(withIcon); got != models.SteamImageCDN+"abc123" {
		t.Errorf("ImageFor(icon) = %q", got)
	}
	if n := srv.RequestCount("/steam-image"); n != 1 {
		t.Errorf("image lookups = %d, want 1", n)
	}
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	s, srv := newSynchronizer(t, "u1")
	srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "AWP | Asiimov (Field-Tested)", ImageURL: "x"})
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}

	srv.Fail = "/track"
	if err := s.Load(ctx); err == nil {
		t.Fatal("Load() expected error")
	}
	if n := len(s.Trackers()); n != 1 {
		t.Errorf("Trackers() = %d after failed load, want 1", n)
	}
}

func TestView(t *testing.T) {
	ctx := context.Background()
	s, srv := newSynchronizer(t, "u1")
	srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "B", Interest: models.InterestSell, LastKnownPrice: models.Float(1000), TargetUp: models.Float(900), ImageURL: "x"})
	srv.AddTracker(models.Tracker{UserID: "u1", SkinName: "A", Interest: models.InterestBuy, LastKnownPrice: models.Float(500), ImageURL: "y"})
	if err := s.Load(ctx); err != nil {
		t.Fatal(err)
	}

	s.SetSortKey(tracker.SortNameAsc)
	s.SetViewMode(tracker.ViewList)
	s.SetViewMode("grid")

	v := s.View()
	if v.UserID != "u1" || v.ViewMode != tracker.ViewList || v.SortKey != tracker.SortNameAsc {
		t.Errorf("View() header = %+v", v)
	}
	if len(v.Rows) != 2 || v.Rows[0].SkinName != "A" {
		t.Fatalf("View() rows = %+v", v.Rows)
	}
	sell := v.Rows[1]
	if sell.Status != tracker.StatusUp || sell.Highlight != tracker.HighlightGood {
		t.Errorf("sell row = %s/%s", sell.Status, sell.Highlight)
	}
	if sell.ListingURL != models.ListingURL("B") || sell.Image != "x" {
		t.Errorf("sell row links = %q %q", sell.ListingURL, sell.Image)
	}
	if v.Totals.Sell == nil || v.Totals.Sell.Net.String() != "850" {
		t.Errorf("sell totals = %+v", v.Totals.Sell)
	}
	if v.Totals.Buy == nil || v.Totals.Buy.String() != "500" {
		t.Errorf("buy totals = %v", v.Totals.Buy)
	}
}
