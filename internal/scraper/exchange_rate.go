package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mswatii/cs2-tracker/internal/config"
	"github.com/mswatii/cs2-tracker/internal/database"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	// Store key of the cached rate
	ExchangeRateCacheKey = "cs2_exchange_rate_cache"
	// Rate used when the provider fails and nothing was ever cached
	DefaultUSDtoINRRate = 83
	dateLayout          = "2006-01-02"
)

// RateFetcher fetches the current rate from a provider
type RateFetcher func(ctx context.Context) (float64, error)

// rateCacheEntry is the single cached value, valid for the calendar day it was fetched on
type rateCacheEntry struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// RateCache returns the USD to INR rate, fetching it at most once per day
type RateCache struct {
	store    database.Store
	fetch    RateFetcher
	fallback float64
	now      func() time.Time
	mu       sync.Mutex
	log      *logrus.Entry
}

// NewRateCache creates a rate cache backed by store and the configured provider
func NewRateCache(store database.Store, cfg config.ExchangeConfig, log *logger.Log) *RateCache {
	fallback := cfg.FallbackRate
	if fallback <= 0 {
		fallback = DefaultUSDtoINRRate
	}
	return &RateCache{
		store:    store,
		fetch:    ProviderFetcher(cfg.URL, cfg.Currency),
		fallback: fallback,
		now:      time.Now,
		log:      log.WithComponent("exchange_rate"),
	}
}

// WithFetcher replaces the provider, for tests
func (r *RateCache) WithFetcher(f RateFetcher) *RateCache {
	r.fetch = f
	return r
}

// WithClock replaces the clock, for tests
func (r *RateCache) WithClock(now func() time.Time) *RateCache {
	r.now = now
	return r
}

func (r *RateCache) today() string {
	return r.now().UTC().Format(dateLayout)
}

func (r *RateCache) readEntry(ctx context.Context) (*rateCacheEntry, bool) {
	raw, err := r.store.Get(ctx, ExchangeRateCacheKey)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			r.log.WithError(err).Warn("Error reading cached exchange rate")
		}
		return nil, false
	}
	var entry rateCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Rate <= 0 {
		r.log.WithField("value", raw).Warn("Ignoring unparseable cached exchange rate")
		return nil, false
	}
	return &entry, true
}

// GetRate returns today's cached rate, or fetches a new one. When the fetch
// fails it falls back to the last cached rate of any day, then to the fixed
// default. It never fails.
func (r *RateCache) GetRate(ctx context.Context) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := r.today()
	cached, ok := r.readEntry(ctx)
	if ok && cached.Date == today {
		return cached.Rate
	}

	rate, err := r.fetch(ctx)
	if err == nil && rate > 0 {
		data, _ := json.Marshal(rateCacheEntry{Date: today, Rate: rate})
		if err := r.store.Set(ctx, ExchangeRateCacheKey, string(data)); err != nil {
			r.log.WithError(err).Warn("Error caching exchange rate")
		}
		r.log.WithField("rate", rate).Info("Updated USD to INR exchange rate")
		return rate
	}
	if err == nil {
		err = fmt.Errorf("provider returned non-positive rate %v", rate)
	}

	if ok {
		r.log.WithError(err).WithField("date", cached.Date).Warn("Using cached exchange rate from previous day due to API failure")
		return cached.Rate
	}
	r.log.WithError(err).Warn("Using fallback exchange rate")
	return r.fallback
}

// Convert converts a USD price to whole rupees. It reports false for
// missing or non-positive prices.
func (r *RateCache) Convert(ctx context.Context, usd float64) (int64, bool) {
	if !(usd > 0) {
		return 0, false
	}
	rate := r.GetRate(ctx)
	return decimal.NewFromFloat(usd).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart(), true
}

// providerResponse is the exchangerate-api.com latest rates payload
type providerResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// ProviderFetcher returns a fetcher reading rates[currency] from url
func ProviderFetcher(url, currency string) RateFetcher {
	return func(ctx context.Context) (float64, error) {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")

		var err error
		if deadline, ok := ctx.Deadline(); ok {
			err = fasthttp.DoDeadline(req, resp, deadline)
		} else {
			err = fasthttp.DoTimeout(req, resp, 10*time.Second)
		}
		if err != nil {
			return 0, fmt.Errorf("request to exchange rate API failed: %w", err)
		}

		if resp.StatusCode() != fasthttp.StatusOK {
			return 0, fmt.Errorf("exchange rate API returned non-200 status code: %d", resp.StatusCode())
		}

		var data providerResponse
		if err := json.Unmarshal(resp.Body(), &data); err != nil {
			return 0, fmt.Errorf("failed to parse exchange rate API response: %w", err)
		}

		rate, ok := data.Rates[currency]
		if !ok || rate <= 0 {
			return 0, fmt.Errorf("%s rate not found", currency)
		}
		return rate, nil
	}
}
