package handler

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/eventide-gm/internal/api/apierr"
	"github.com/mcoot/eventide-gm/internal/api/response"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/transport/telegram"
)

// maxUpdateSize bounds a single webhook body
const maxUpdateSize = 1 << 20

// WebhookHandler receives Bot API updates posted by Telegram
type WebhookHandler struct {
	secret  []byte
	updates telegram.Handler
	logger  *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. Only requests whose path
// carries secret are accepted.
func NewWebhookHandler(secret string, updates telegram.Handler, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{secret: []byte(secret), updates: updates, logger: logger}
}

// Receive handles POST /webhook/{secret}
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if subtle.ConstantTimeCompare([]byte(mux.Vars(r)["secret"]), h.secret) != 1 {
		apierr.WriteError(w, apierr.NewNotFoundError())
		return
	}

	u, err := telegram.DecodeUpdate(http.MaxBytesReader(w, r.Body, maxUpdateSize))
	if err != nil {
		h.logger.Warn("rejected webhook update", slog.String("error", err.Error()))
		apierr.WriteError(w, fmt.Errorf("%w: %w", model.ErrBadPayload, err))
		return
	}

	ev, ok := telegram.EventFromUpdate(u)
	if !ok {
		h.logger.Debug("ignoring update", slog.Int("update_id", u.UpdateID))
		response.NoContent(w)
		return
	}

	// Telegram may drop the connection once it has our answer; the event
	// still runs to completion.
	h.updates.Handle(context.WithoutCancel(r.Context()), ev)
	response.NoContent(w)
}
