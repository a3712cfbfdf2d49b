package api

import (
	"github.com/mswatii/cs2-tracker/internal/models"
	"github.com/mswatii/cs2-tracker/internal/session"
	"github.com/valyala/fasthttp"
)

type sessionResponse struct {
	UserID     string `json:"userId"`
	NeedsSetup bool   `json:"needsSetup"`
	Webhook    string `json:"discordWebhook,omitempty"`
}

func (h *Handler) sessionState(ctx *fasthttp.RequestCtx) sessionResponse {
	resp := sessionResponse{UserID: h.session.UserID()}
	if resp.UserID == "" {
		resp.NeedsSetup = true
		return resp
	}
	hook, err := h.session.Webhook(ctx)
	if err != nil {
		h.log.WithError(err).Debug("Could not load user settings")
	}
	resp.Webhook = hook
	resp.NeedsSetup = err != nil || hook == ""
	return resp
}

func (h *Handler) handleGetSession(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		methodNotAllowed(ctx)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, h.sessionState(ctx))
}

func (h *Handler) handleSetup(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		methodNotAllowed(ctx)
		return
	}
	var req models.UserSettings
	if err := decodeBody(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	if _, err := h.session.Setup(ctx, req.DiscordWebhook); err != nil {
		writeFailure(ctx, err, session.MsgSaveFailed)
		return
	}
	h.afterIdentityChange(ctx)
}

func (h *Handler) handleRecover(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		methodNotAllowed(ctx)
		return
	}
	var req models.RecoverRequest
	if err := decodeBody(ctx, &req); err != nil {
		writeError(ctx, err)
		return
	}
	if _, err := h.session.Recover(ctx, req.UserID, req.DiscordWebhook); err != nil {
		writeFailure(ctx, err, session.MsgRecoverFailed)
		return
	}
	h.afterIdentityChange(ctx)
}

func (h *Handler) handleLogout(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		methodNotAllowed(ctx)
		return
	}
	if err := h.session.Clear(ctx); err != nil {
		writeFailure(ctx, err, "Failed to log out")
		return
	}
	h.afterIdentityChange(ctx)
}

// afterIdentityChange reloads the list for the new identity and reports the
// resulting session. A failed reload keeps the previous list and is logged.
func (h *Handler) afterIdentityChange(ctx *fasthttp.RequestCtx) {
	if err := h.trackers.Load(ctx); err != nil {
		h.log.WithError(err).Warn("Reload after session change failed")
	}
	writeJSON(ctx, fasthttp.StatusOK, h.sessionState(ctx))
}
