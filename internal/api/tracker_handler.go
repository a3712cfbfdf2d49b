package api

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/mswatii/cs2-tracker/internal/search"
	"github.com/mswatii/cs2-tracker/internal/tracker"
	"github.com/valyala/fasthttp"
)

// trackerRequest is the body of create and update calls. Targets may be
// numbers, numeric strings, "" or null; the last two leave the target unset.
type trackerRequest struct {
	SkinName   string          `json:"skinName"`
	Interest   string          `json:"interest"`
	TargetDown json.RawMessage `json:"targetDown"`
	TargetUp   json.RawMessage `json:"targetUp"`
}

func (r trackerRequest) input() (tracker.TrackerInput, error) {
	down, err := targetText("targetDown", r.TargetDown)
	if err != nil {
		return tracker.TrackerInput{}, err
	}
	up, err := targetText("targetUp", r.TargetUp)
	if err != nil {
		return tracker.TrackerInput{}, err
	}
	return tracker.TrackerInput{
		SkinName:   r.SkinName,
		Interest:   r.Interest,
		TargetDown: down,
		TargetUp:   up,
	}, nil
}

// targetText turns a JSON target into the text tracker.ParseTarget reads.
// Strings pass through unparsed so bad input is reported against its field.
func targetText(field string, raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return "", apierror.Validation(field, field+" must be a number")
}

// displayArgs reads the sort key and view mode for this request. Missing
// values fall back to the stored settings, which the request never changes.
func (h *Handler) displayArgs(ctx *fasthttp.RequestCtx) (tracker.SortKey, tracker.ViewMode, error) {
	key, mode := h.trackers.SortKey(), h.trackers.ViewMode()
	args := ctx.QueryArgs()
	if args.Has("sort") {
		k, err := tracker.ParseSortKey(string(args.Peek("sort")))
		if err != nil {
			return key, mode, apierror.Validation("sort", "Unknown sort key")
		}
		key = k
	}
	if args.Has("view") {
		mode = tracker.ViewMode(args.Peek("view"))
	}
	return key, mode, nil
}

func (h *Handler) handleListTrackers(ctx *fasthttp.RequestCtx) {
	key, mode, err := h.displayArgs(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := h.trackers.Load(ctx); err != nil {
		writeFailure(ctx, err, "Failed to load trackers")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, h.trackers.ViewAs(key, mode))
}

func (h *Handler) handleCreateTracker(ctx *fasthttp.RequestCtx) {
	var req trackerRequest
	if err := decodeBody(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(ctx, err)
		return
	}
	created, err := h.trackers.Create(ctx, in)
	if err != nil {
		writeFailure(ctx, err, "Failed to create tracker")
		return
	}
	writeJSON(ctx, fasthttp.StatusCreated, created)
}

func (h *Handler) handleUpdateTracker(ctx *fasthttp.RequestCtx, rawID string) {
	id, err := url.PathUnescape(rawID)
	if err != nil || id == "" {
		writeError(ctx, apierror.BadRequest("Invalid tracker id"))
		return
	}
	var req trackerRequest
	if err := decodeBody(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(ctx, err)
		return
	}
	updated, err := h.trackers.Update(ctx, id, in)
	if err != nil {
		writeFailure(ctx, err, "Failed to update tracker")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, updated)
}

func (h *Handler) handleDeleteTracker(ctx *fasthttp.RequestCtx, rawID string) {
	id, err := url.PathUnescape(rawID)
	if err != nil || id == "" {
		writeError(ctx, apierror.BadRequest("Invalid tracker id"))
		return
	}
	if err := h.trackers.Delete(ctx, id); err != nil {
		writeFailure(ctx, err, "Failed to delete tracker")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]bool{"success": true})
}

// suggestion is a search candidate with its price converted for display
type suggestion struct {
	models.SearchCandidate
	ListingURL string `json:"listingUrl"`
	PriceINR   *int64 `json:"priceInr,omitempty"`
}

func (h *Handler) handleSearch(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		methodNotAllowed(ctx)
		return
	}
	query := string(ctx.QueryArgs().Peek("q"))
	candidates, err := h.searcher.Search(ctx, query)
	if err != nil {
		writeFailure(ctx, err, "Search failed")
		return
	}

	out := make([]suggestion, 0, len(candidates))
	for _, c := range candidates {
		s := suggestion{SearchCandidate: c, ListingURL: models.ListingURL(c.Name)}
		// only dollar prices are converted; other currencies are shown as sent
		if usd, ok := search.PriceOf(c); ok && strings.Contains(c.Price, "$") {
			f, _ := usd.Float64()
			if inr, ok := h.rates.Convert(ctx, f); ok {
				s.PriceINR = &inr
			}
		}
		out = append(out, s)
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]interface{}{
		"query":   query,
		"results": out,
	})
}
