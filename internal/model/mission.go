package model

import (
	"encoding/json"

	"github.com/mcoot/eventide-gm/internal/model/ordered"
)

// DefaultMissionID is assigned to every newly registered player
const DefaultMissionID = "default_mission"

// Mission is a visible objective set assigned to players
type Mission struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives"`

	// extra holds record keys the bot does not use
	extra *ordered.Map[json.RawMessage]
}

// missionFields has Mission's JSON fields without its methods
type missionFields struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives"`
}

// UnmarshalJSON decodes a mission, keeping keys it does not know
func (m *Mission) UnmarshalJSON(data []byte) error {
	var f missionFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Mission{
		Title:       f.Title,
		Description: f.Description,
		Objectives:  f.Objectives,
		extra:       ordered.Unknown(data, "title", "description", "objectives"),
	}
	return nil
}

// MarshalJSON writes the known fields, then any unknown keys
func (m Mission) MarshalJSON() ([]byte, error) {
	body, err := ordered.Marshal(missionFields{Title: m.Title, Description: m.Description, Objectives: m.Objectives})
	if err != nil {
		return nil, err
	}
	return ordered.AppendEntries(body, m.extra)
}

// DefaultMission is the placeholder created on the first registration
func DefaultMission() *Mission {
	return &Mission{
		Title:       "Awaiting Instructions",
		Description: "Your mission has not been determined yet.",
		Objectives:  []string{},
	}
}

// SecretMission is a hidden objective attached to a single player
type SecretMission struct {
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`

	// extra holds record keys the bot does not use
	extra *ordered.Map[json.RawMessage]
}

type secretMissionFields struct {
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
}

// UnmarshalJSON decodes a secret mission, keeping keys it does not know
func (m *SecretMission) UnmarshalJSON(data []byte) error {
	var f secretMissionFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = SecretMission{Title: f.Title, Details: f.Details, extra: ordered.Unknown(data, "title", "details")}
	return nil
}

// MarshalJSON writes the known fields, then any unknown keys
func (m SecretMission) MarshalJSON() ([]byte, error) {
	body, err := ordered.Marshal(secretMissionFields{Title: m.Title, Details: m.Details})
	if err != nil {
		return nil, err
	}
	return ordered.AppendEntries(body, m.extra)
}

// Missions is the mission table in file order
type Missions = ordered.Map[*Mission]

// SecretMissions is the secret mission table in file order
type SecretMissions = ordered.Map[*SecretMission]
