package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/eventide-gm/internal/api/handler"
	"github.com/mcoot/eventide-gm/internal/api/middleware"
	"github.com/mcoot/eventide-gm/internal/dependencies/clock"
	"github.com/mcoot/eventide-gm/internal/transport/telegram"
)

// Update delivery modes shown on the status page
const (
	ModePolling = "long polling"
	ModeWebhook = "webhook"
)

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger    *slog.Logger
	Stats     handler.StatsSource
	Clock     clock.Clock
	StartedAt time.Time
	Mode      string

	// Updates receives webhook events. The webhook route is only mounted
	// when both Updates and WebhookSecret are set.
	Updates       telegram.Handler
	WebhookSecret string
}

// NewRouter creates the operational router: health, status and webhook
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger, "/healthz"))

	statusHandler := handler.NewStatusHandler(cfg.Stats, cfg.Clock, cfg.StartedAt, cfg.Mode, cfg.Logger)

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/status", statusHandler.Page).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/status", statusHandler.JSON).Methods(http.MethodGet)

	if cfg.Updates != nil && cfg.WebhookSecret != "" {
		webhookHandler := handler.NewWebhookHandler(cfg.WebhookSecret, cfg.Updates, cfg.Logger)
		r.HandleFunc("/webhook/{secret}", webhookHandler.Receive).Methods(http.MethodPost)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
