package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mswatii/cs2-tracker/internal/config"
	"github.com/mswatii/cs2-tracker/internal/database"
	"github.com/mswatii/cs2-tracker/internal/logger"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newTestCache(store database.Store, fetch RateFetcher) *RateCache {
	return NewRateCache(store, config.ExchangeConfig{FallbackRate: DefaultUSDtoINRRate}, logger.Discard()).
		WithFetcher(fetch).
		WithClock(func() time.Time { return testNow })
}

func seed(t *testing.T, store database.Store, date string, rate float64) {
	t.Helper()
	data, _ := json.Marshal(rateCacheEntry{Date: date, Rate: rate})
	if err := store.Set(context.Background(), ExchangeRateCacheKey, string(data)); err != nil {
		t.Fatal(err)
	}
}

func failing(calls *int) RateFetcher {
	return func(context.Context) (float64, error) {
		*calls++
		return 0, errors.New("provider down")
	}
}

func TestGetRateUsesTodaysEntry(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, "2026-10-17", 83)
	calls := 0
	c := newTestCache(store, failing(&calls))

	if got := c.GetRate(context.Background()); got != 83 {
		t.Errorf("GetRate() = %v, want 83", got)
	}
	if calls != 0 {
		t.Errorf("fetch called %d times, want 0", calls)
	}
}

func TestGetRateRefreshesStaleEntry(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seed(t, store, "2026-10-16", 80)
	c := newTestCache(store, func(context.Context) (float64, error) { return 84.5, nil })

	if got := c.GetRate(ctx); got != 84.5 {
		t.Errorf("GetRate() = %v, want 84.5", got)
	}
	raw, err := store.Get(ctx, ExchangeRateCacheKey)
	if err != nil {
		t.Fatal(err)
	}
	var entry rateCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Date != "2026-10-17" || entry.Rate != 84.5 {
		t.Errorf("cached entry = %+v", entry)
	}
}

func TestGetRateStaleButAvailable(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, "2026-10-10", 80)
	calls := 0
	c := newTestCache(store, failing(&calls))

	if got := c.GetRate(context.Background()); got != 80 {
		t.Errorf("GetRate() = %v, want stale 80", got)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestGetRateFallback(t *testing.T) {
	calls := 0
	c := newTestCache(database.NewMemoryStore(), failing(&calls))
	if got := c.GetRate(context.Background()); got != DefaultUSDtoINRRate {
		t.Errorf("GetRate() = %v, want fallback %v", got, DefaultUSDtoINRRate)
	}
}

func TestGetRateIgnoresCorruptEntry(t *testing.T) {
	store := database.NewMemoryStore()
	_ = store.Set(context.Background(), ExchangeRateCacheKey, "{not json")
	calls := 0
	c := newTestCache(store, failing(&calls))
	if got := c.GetRate(context.Background()); got != DefaultUSDtoINRRate {
		t.Errorf("GetRate() = %v, want fallback", got)
	}
}

func TestConvert(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, "2026-10-17", 83)
	calls := 0
	c := newTestCache(store, failing(&calls))
	ctx := context.Background()

	for _, usd := range []float64{0, -5} {
		if v, ok := c.Convert(ctx, usd); ok {
			t.Errorf("Convert(%v) = %v, want none", usd, v)
		}
	}
	if v, ok := c.Convert(ctx, 100); !ok || v != 8300 {
		t.Errorf("Convert(100) = %v, %v, want 8300", v, ok)
	}
	if v, ok := c.Convert(ctx, 1.5); !ok || v != 125 {
		t.Errorf("Convert(1.5) = %v, %v, want 125", v, ok)
	}
}

func TestProviderFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"base":"USD","rates":{"EUR":0.92,"INR":83.12}}`)
	}))
	defer srv.Close()

	rate, err := ProviderFetcher(srv.URL, "INR")(context.Background())
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}
	if rate != 83.12 {
		t.Errorf("rate = %v, want 83.12", rate)
	}

	if _, err := ProviderFetcher(srv.URL, "JPY")(context.Background()); err == nil {
		t.Error("expected error for missing currency")
	}
}

func TestProviderFetcherStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := ProviderFetcher(srv.URL, "INR")(context.Background()); err == nil {
		t.Error("expected error for 503")
	}
}
