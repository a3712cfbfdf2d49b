package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mswatii/cs2-tracker/internal/models"
)

type fakeCatalog struct {
	mu      sync.Mutex
	queries []string
	// block holds responses for a query until the channel is closed
	block map[string]chan struct{}
}

func (f *fakeCatalog) SearchCatalog(ctx context.Context, query string, start, count int) (*models.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	ch := f.block[query]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return &models.SearchResult{Results: []models.SearchItem{{Name: query + " | Skin (Field-Tested)"}}}, nil
}

func (f *fakeCatalog) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func TestSearcherEmptyQuery(t *testing.T) {
	cat := &fakeCatalog{}
	s := NewSearcher(cat, 50)
	got, err := s.Search(context.Background(), "   ")
	if err != nil || got != nil {
		t.Errorf("Search(blank) = %v, %v", got, err)
	}
	if len(cat.calls()) != 0 {
		t.Error("blank query reached the backend")
	}
}

func TestDebouncerSendsOnlyLastOfBurst(t *testing.T) {
	cat := &fakeCatalog{}
	results := make(chan Result, 10)
	d := NewDebouncer(context.Background(), 100*time.Millisecond, NewSearcher(cat, 50), func(r Result) { results <- r })

	for _, q := range []string{"a", "ak", "ak-", "ak-47"} {
		d.Submit(q)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case r := <-results:
		if r.Query != "ak-47" || len(r.Candidates) != len(models.WearLadder) {
			t.Errorf("delivered %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for search result")
	}

	time.Sleep(150 * time.Millisecond)
	if calls := cat.calls(); len(calls) != 1 || calls[0] != "ak-47" {
		t.Errorf("backend calls = %v, want [ak-47]", calls)
	}
}

func TestDebouncerDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	cat := &fakeCatalog{block: map[string]chan struct{}{"slow": release}}
	results := make(chan Result, 10)
	d := NewDebouncer(context.Background(), 10*time.Millisecond, NewSearcher(cat, 50), func(r Result) { results <- r })

	d.Submit("slow")
	deadline := time.Now().Add(2 * time.Second)
	for len(cat.calls()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow search never issued")
		}
		time.Sleep(time.Millisecond)
	}

	d.Submit("fast")
	select {
	case r := <-results:
		if r.Query != "fast" {
			t.Fatalf("first delivered result = %q, want fast", r.Query)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for fast result")
	}

	close(release)
	select {
	case r := <-results:
		t.Errorf("stale result delivered: %+v", r)
	case <-time.After(100 * time.Millisecond):
	}
	if d.Latest() != 2 {
		t.Errorf("Latest() = %d, want 2", d.Latest())
	}
}

func TestDebouncerEmptyQueryClears(t *testing.T) {
	cat := &fakeCatalog{}
	results := make(chan Result, 10)
	d := NewDebouncer(context.Background(), 50*time.Millisecond, NewSearcher(cat, 50), func(r Result) { results <- r })

	d.Submit("awp")
	d.Submit("")

	select {
	case r := <-results:
		if r.Query != "" || r.Candidates != nil {
			t.Errorf("clear result = %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for clear")
	}
	time.Sleep(100 * time.Millisecond)
	if calls := cat.calls(); len(calls) != 0 {
		t.Errorf("backend calls = %v, want none", calls)
	}
}
