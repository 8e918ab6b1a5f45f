package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mcoot/eventide-gm/internal/api/response"
	"github.com/mcoot/eventide-gm/internal/dependencies/clock"
	"github.com/mcoot/eventide-gm/internal/store"
)

// StatsSource reports the current table sizes
type StatsSource interface {
	Stats() store.Stats
}

var _ StatsSource = (*store.Store)(nil)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Eventide GM status</title>
</head>
<body>
<h1>Eventide: Eclipse game master</h1>
<p id="mode">Receiving updates by {{.Mode}}</p>
<p id="uptime" title="{{.StartedAt}}">Started {{.Uptime}}</p>
<table>
<tr><th>Players</th><td id="players">{{.Players}}</td></tr>
<tr><th>Active players</th><td id="active-players">{{.ActivePlayers}}</td></tr>
<tr><th>Missions</th><td id="missions">{{.Missions}}</td></tr>
<tr><th>Secret missions</th><td id="secret-missions">{{.SecretMissions}}</td></tr>
<tr><th>Relay recipients</th><td id="recipients">{{.Recipients}}</td></tr>
<tr><th>Lore sections</th><td id="lore-sections">{{.LoreSections}}</td></tr>
</table>
{{if not .LoreAvailable}}<p id="lore-warning">Lore data is unavailable.</p>{{end}}
</body>
</html>
`))

type statusView struct {
	Mode           string
	StartedAt      string
	Uptime         string
	Players        string
	ActivePlayers  string
	Missions       string
	SecretMissions string
	Recipients     string
	LoreSections   string
	LoreAvailable  bool
}

// StatusHandler serves the operational status report
type StatusHandler struct {
	stats     StatsSource
	clock     clock.Clock
	startedAt time.Time
	mode      string
	logger    *slog.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(stats StatsSource, clk clock.Clock, startedAt time.Time, mode string, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{stats: stats, clock: clk, startedAt: startedAt, mode: mode, logger: logger}
}

// Page handles GET /status
func (h *StatusHandler) Page(w http.ResponseWriter, r *http.Request) {
	st := h.stats.Stats()
	view := statusView{
		Mode:           h.mode,
		StartedAt:      h.startedAt.UTC().Format(time.RFC3339),
		Uptime:         humanize.RelTime(h.startedAt, h.clock.Now(), "ago", "from now"),
		Players:        humanize.Comma(int64(st.Players)),
		ActivePlayers:  humanize.Comma(int64(st.ActivePlayers)),
		Missions:       humanize.Comma(int64(st.Missions)),
		SecretMissions: humanize.Comma(int64(st.SecretMissions)),
		Recipients:     humanize.Comma(int64(st.Recipients)),
		LoreSections:   humanize.Comma(int64(st.LoreSections)),
		LoreAvailable:  st.LoreAvailable,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusPage.Execute(w, view); err != nil {
		h.logger.Error("render status page", slog.String("error", err.Error()))
	}
}

// JSON handles GET /api/v1/status
func (h *StatusHandler) JSON(w http.ResponseWriter, r *http.Request) {
	st := h.stats.Stats()
	response.JSON(w, http.StatusOK, response.Status{
		Mode:           h.mode,
		StartedAt:      h.startedAt.UTC(),
		UptimeSeconds:  int64(clock.Since(h.clock, h.startedAt) / time.Second),
		Players:        st.Players,
		ActivePlayers:  st.ActivePlayers,
		Missions:       st.Missions,
		SecretMissions: st.SecretMissions,
		Recipients:     st.Recipients,
		LoreSections:   st.LoreSections,
		LoreAvailable:  st.LoreAvailable,
	})
}
