package api

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/mswatii/cs2-tracker/internal/tracker"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

var templateFuncs = template.FuncMap{
	"price": models.FormatPrice,
	"money": func(d decimal.Decimal) string { return models.FormatMoney(d, models.DisplayCurrency) },
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Local().Format("02 Jan 2006")
	},
}

// indexPage is the data the dashboard template renders
type indexPage struct {
	tracker.View
	Session  sessionResponse
	Rate     float64
	SortKeys []struct {
		Key   tracker.SortKey
		Label string
	}
	Error string
}

// Serve static files (CSS, JS, images)
func (h *Handler) handleStatic(ctx *fasthttp.RequestCtx) {
	filePath := strings.TrimPrefix(string(ctx.Path()), "/static/")
	fullPath := filepath.Join(h.staticDir, filepath.FromSlash(filePath))
	if rel, err := filepath.Rel(h.staticDir, fullPath); err != nil || strings.HasPrefix(rel, "..") {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("File not found")
		return
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("File not found")
		return
	}

	// Set content type based on file extension
	switch filepath.Ext(filePath) {
	case ".css":
		ctx.SetContentType("text/css")
	case ".js":
		ctx.SetContentType("application/javascript")
	case ".png":
		ctx.SetContentType("image/png")
	case ".jpg", ".jpeg":
		ctx.SetContentType("image/jpeg")
	case ".svg":
		ctx.SetContentType("image/svg+xml")
	default:
		ctx.SetContentType("application/octet-stream")
	}
	ctx.SetBody(content)
}

// Render the dashboard. A failed load still renders the last known list with
// the error shown above it.
func (h *Handler) handleIndex(ctx *fasthttp.RequestCtx) {
	page := indexPage{SortKeys: tracker.SortKeys}
	key, mode, err := h.displayArgs(ctx)
	if err != nil {
		page.Error = err.Error()
	}
	if err := h.trackers.Load(ctx); err != nil {
		page.Error = "Failed to load trackers"
	}
	page.View = h.trackers.ViewAs(key, mode)
	page.Session = h.sessionState(ctx)
	page.Rate = h.rates.GetRate(ctx)

	var buf bytes.Buffer
	if err := h.index.Execute(&buf, page); err != nil {
		h.log.WithError(err).Error("Error rendering template")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("Error rendering template")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}
