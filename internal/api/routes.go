package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/mswatii/cs2-tracker/internal/scraper"
	"github.com/mswatii/cs2-tracker/internal/search"
	"github.com/mswatii/cs2-tracker/internal/session"
	"github.com/mswatii/cs2-tracker/internal/tracker"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const requestIDKey = "request_id"

// Handler represents the API handler
type Handler struct {
	session   *session.Session
	trackers  *tracker.Synchronizer
	searcher  *search.Searcher
	rates     *scraper.RateCache
	index     *template.Template
	staticDir string
	log       *logrus.Entry
}

// Deps are the components the handler serves
type Deps struct {
	Session  *session.Session
	Trackers *tracker.Synchronizer
	Searcher *search.Searcher
	Rates    *scraper.RateCache
}

// NewHandler creates a new API handler, parsing the dashboard template from templateDir
func NewHandler(deps Deps, templateDir, staticDir string, log *logger.Log) (*Handler, error) {
	index, err := template.New("index.html").Funcs(templateFuncs).ParseFiles(filepath.Join(templateDir, "index.html"))
	if err != nil {
		return nil, fmt.Errorf("error parsing template: %w", err)
	}
	return &Handler{
		session:   deps.Session,
		trackers:  deps.Trackers,
		searcher:  deps.Searcher,
		rates:     deps.Rates,
		index:     index,
		staticDir: staticDir,
		log:       log.WithComponent("api"),
	}, nil
}

// HandleRequest tags the request with an id, dispatches it and logs the outcome
func (h *Handler) HandleRequest(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	requestID := string(ctx.Request.Header.Peek("X-Request-ID"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx.SetUserValue(requestIDKey, requestID)
	ctx.Response.Header.Set("X-Request-ID", requestID)

	defer func() {
		if rec := recover(); rec != nil {
			h.log.WithFields(logrus.Fields{"request_id": requestID, "panic": rec}).Errorf("PANIC\n%s", debug.Stack())
			writeError(ctx, apierror.InternalError("internal server error"))
		}
		h.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     string(ctx.Method()),
			"path":       string(ctx.Path()),
			"status":     ctx.Response.StatusCode(),
			"duration":   time.Since(start).String(),
		}).Debug("Request handled")
	}()

	h.route(ctx)
}

func (h *Handler) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())

	// Handle web routes first
	if path == "/" || path == "/index.html" {
		h.handleIndex(ctx)
		return
	}

	// Handle static files
	if strings.HasPrefix(path, "/static/") {
		h.handleStatic(ctx)
		return
	}

	// Handle API routes
	switch {
	case path == "/api/health":
		h.handleHealth(ctx)
	case path == "/api/exchange-rate":
		h.handleExchangeRate(ctx)
	case path == "/api/trackers":
		switch {
		case ctx.IsGet():
			h.handleListTrackers(ctx)
		case ctx.IsPost():
			h.handleCreateTracker(ctx)
		default:
			methodNotAllowed(ctx)
		}
	case strings.HasPrefix(path, "/api/trackers/"):
		id := strings.TrimPrefix(path, "/api/trackers/")
		switch {
		case ctx.IsPut():
			h.handleUpdateTracker(ctx, id)
		case ctx.IsDelete():
			h.handleDeleteTracker(ctx, id)
		default:
			methodNotAllowed(ctx)
		}
	case path == "/api/search":
		h.handleSearch(ctx)
	case path == "/api/session":
		h.handleGetSession(ctx)
	case path == "/api/session/setup":
		h.handleSetup(ctx)
	case path == "/api/session/recover":
		h.handleRecover(ctx)
	case path == "/api/session/logout":
		h.handleLogout(ctx)
	default:
		writeError(ctx, apierror.NotFound("Not Found"))
	}
}

// handleHealth handles the health check endpoint
func (h *Handler) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleExchangeRate handles the exchange rate endpoint
func (h *Handler) handleExchangeRate(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]interface{}{
		"usd_to_inr": h.rates.GetRate(ctx),
		"updated_at": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}

// writeError renders err in the structured error envelope. Errors that carry
// no classification become a generic internal error.
func writeError(ctx *fasthttp.RequestCtx, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.InternalError("")
	}
	ctx.ResetBody()
	ctx.SetStatusCode(apiErr.StatusCode)
	ctx.SetContentType("application/json")
	ctx.SetBody(apiErr.ToJSON())
}

// writeFailure is writeError with the message a user should see for err
func writeFailure(ctx *fasthttp.RequestCtx, err error, fallback string) {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.InternalError(fallback)
	}
	out := *apiErr
	out.Message = apierror.UserMessage(err, fallback)
	writeError(ctx, &out)
}

func methodNotAllowed(ctx *fasthttp.RequestCtx) {
	writeError(ctx, &apierror.Error{
		StatusCode: fasthttp.StatusMethodNotAllowed,
		Code:       apierror.CodeBadRequest,
		Message:    "Method not allowed",
	})
}

func decodeBody(ctx *fasthttp.RequestCtx, v interface{}) error {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		return apierror.BadRequest("Invalid request body")
	}
	return nil
}
