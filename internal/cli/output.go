package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mcoot/eventide-gm/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []PlayerRow:
		o.printPlayers(v)
	case RecipientList:
		o.printRecipients(v)
	case DataReport:
		o.printDataReport(v)
	case response.Status:
		o.printStatus(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// PlayerRow is one line of the player listing
type PlayerRow struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Active        bool   `json:"active"`
	Status        string `json:"status"`
	Mission       string `json:"mission"`
	SecretMission string `json:"secret_mission,omitempty"`
}

// RecipientList is the NPC roster
type RecipientList struct {
	Recipients []string `json:"recipients"`
}

// DataReport summarises a data check
type DataReport struct {
	Files          map[string]string `json:"files"`
	Players        int               `json:"players"`
	ActivePlayers  int               `json:"active_players"`
	Missions       int               `json:"missions"`
	SecretMissions int               `json:"secret_missions"`
	Recipients     int               `json:"recipients"`
	LoreSections   int               `json:"lore_sections"`
	LoreAvailable  bool              `json:"lore_available"`
	Problems       []string          `json:"problems"`
}

// HealthResult is the health endpoint response
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayers(rows []PlayerRow) {
	if len(rows) == 0 {
		fmt.Fprintln(o.w, "No players found.")
		return
	}
	for _, r := range rows {
		active := "inactive"
		if r.Active {
			active = "active"
		}
		fmt.Fprintf(o.w, "%d  %s (%s) - %s, %s, mission %s", r.ID, r.Name, r.Role, active, r.Status, r.Mission)
		if r.SecretMission != "" {
			fmt.Fprintf(o.w, ", secret: %s", r.SecretMission)
		}
		fmt.Fprintln(o.w)
	}
}

func (o *Output) printRecipients(l RecipientList) {
	if len(l.Recipients) == 0 {
		fmt.Fprintln(o.w, "The recipient list is empty.")
		return
	}
	for _, r := range l.Recipients {
		fmt.Fprintf(o.w, "- %s\n", r)
	}
}

func (o *Output) printDataReport(r DataReport) {
	keys := make([]string, 0, len(r.Files))
	for k := range r.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(o.w, "%-16s %s\n", k+":", r.Files[k])
	}

	fmt.Fprintf(o.w, "\nPlayers: %s (%s active)\n", humanize.Comma(int64(r.Players)), humanize.Comma(int64(r.ActivePlayers)))
	fmt.Fprintf(o.w, "Missions: %d, secret missions: %d\n", r.Missions, r.SecretMissions)
	fmt.Fprintf(o.w, "Recipients: %d\n", r.Recipients)
	if r.LoreAvailable {
		fmt.Fprintf(o.w, "Lore sections: %d\n", r.LoreSections)
	} else {
		fmt.Fprintln(o.w, "Lore: unavailable")
	}

	if len(r.Problems) == 0 {
		fmt.Fprintln(o.w, "\nNo problems found.")
		return
	}
	fmt.Fprintln(o.w, "\nProblems:")
	for _, p := range r.Problems {
		fmt.Fprintf(o.w, "  - %s\n", strings.TrimSpace(p))
	}
}

func (o *Output) printStatus(s response.Status) {
	fmt.Fprintf(o.w, "Mode: %s\n", s.Mode)
	uptime := humanize.RelTime(s.StartedAt, s.StartedAt.Add(time.Duration(s.UptimeSeconds)*time.Second), "", "")
	fmt.Fprintf(o.w, "Started: %s (up %s)\n", s.StartedAt.Format(time.RFC3339), strings.TrimSpace(uptime))
	fmt.Fprintf(o.w, "Players: %s (%s active)\n", humanize.Comma(int64(s.Players)), humanize.Comma(int64(s.ActivePlayers)))
	fmt.Fprintf(o.w, "Missions: %d, secret missions: %d\n", s.Missions, s.SecretMissions)
	fmt.Fprintf(o.w, "Recipients: %d\n", s.Recipients)
	fmt.Fprintf(o.w, "Lore sections: %d\n", s.LoreSections)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
