package response

import "time"

// Status is the JSON form of the operational status report
type Status struct {
	Mode           string    `json:"mode"`
	StartedAt      time.Time `json:"started_at"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	Players        int       `json:"players"`
	ActivePlayers  int       `json:"active_players"`
	Missions       int       `json:"missions"`
	SecretMissions int       `json:"secret_missions"`
	Recipients     int       `json:"recipients"`
	LoreSections   int       `json:"lore_sections"`
	LoreAvailable  bool      `json:"lore_available"`
}
