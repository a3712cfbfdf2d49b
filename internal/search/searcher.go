package search

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mswatii/cs2-tracker/internal/models"
)

// Catalog is the part of the backend client the searcher needs
type Catalog interface {
	SearchCatalog(ctx context.Context, query string, start, count int) (*models.SearchResult, error)
}

// Searcher runs catalog searches and normalizes their results
type Searcher struct {
	catalog Catalog
	count   int
}

func NewSearcher(catalog Catalog, count int) *Searcher {
	return &Searcher{catalog: catalog, count: count}
}

// Search returns the candidates for query. An empty query yields no candidates
// without calling the backend.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.SearchCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	res, err := s.catalog.SearchCatalog(ctx, query, 0, s.count)
	if err != nil {
		return nil, err
	}
	return Normalize(res.Results), nil
}

// Result is one search outcome delivered by a Debouncer
type Result struct {
	Generation uint64
	Query      string
	Candidates []models.SearchCandidate
	Err        error
}

// Debouncer delays searches until input has been quiet for a fixed delay,
// and drops responses that are overtaken by a newer search. Each issued
// search gets the next generation number; a response is delivered only if
// its generation is still the latest when it arrives.
type Debouncer struct {
	delay   time.Duration
	search  func(ctx context.Context, query string) ([]models.SearchCandidate, error)
	deliver func(Result)
	ctx     context.Context

	mu    sync.Mutex
	timer *time.Timer

	latest  atomic.Uint64
	applyMu sync.Mutex
}

// NewDebouncer creates a debouncer. deliver is called from a background
// goroutine, one result at a time, and must not call Submit.
func NewDebouncer(ctx context.Context, delay time.Duration, s *Searcher, deliver func(Result)) *Debouncer {
	return &Debouncer{
		delay:   delay,
		search:  s.Search,
		deliver: deliver,
		ctx:     ctx,
	}
}

// Submit records the current input. Any pending search is cancelled and the
// delay restarts. An empty query clears the results right away and
// invalidates in-flight searches.
func (d *Debouncer) Submit(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if strings.TrimSpace(query) == "" {
		gen := d.latest.Add(1)
		go d.apply(Result{Generation: gen, Query: query})
		return
	}

	d.timer = time.AfterFunc(d.delay, func() { d.fire(query) })
}

// Stop cancels any pending search. Responses still in flight are discarded.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.latest.Add(1)
}

// Latest returns the generation of the most recently issued search
func (d *Debouncer) Latest() uint64 {
	return d.latest.Load()
}

func (d *Debouncer) fire(query string) {
	gen := d.latest.Add(1)
	candidates, err := d.search(d.ctx, query)
	d.apply(Result{Generation: gen, Query: query, Candidates: candidates, Err: err})
}

func (d *Debouncer) apply(r Result) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()
	if r.Generation != d.latest.Load() {
		return
	}
	d.deliver(r)
}
