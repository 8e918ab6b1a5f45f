package model

import (
	"encoding/json"
	"strconv"

	"github.com/mcoot/eventide-gm/internal/model/ordered"
)

// PlayerID is the chat account identifier of a player
type PlayerID int64

// String formats the id the way it appears in callback payloads
func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParsePlayerID parses a decimal player id
func ParsePlayerID(s string) (PlayerID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return PlayerID(n), nil
}

// DefaultSheetVersion is shown when a character sheet carries no version
const DefaultSheetVersion = "1.0.0"

// Player is a registered participant and their character sheet.
// Empty image and secret mission fields are written as null, as in the
// player data file.
type Player struct {
	ID                   PlayerID
	CharacterName        string
	CharacterRole        string
	CharacterBio         string
	CharacterImageURL    string
	CharacterImageFileID string
	IsActive             bool
	Status               Status
	SecretMissionID      string
	CurrentMissionID     string
	Version              string

	// extra holds record keys the bot does not use; it is never modified
	extra *ordered.Map[json.RawMessage]
}

type playerJSON struct {
	ID                   PlayerID `json:"telegram_user_id"`
	CharacterName        string   `json:"character_name"`
	CharacterRole        string   `json:"character_role"`
	CharacterBio         string   `json:"character_bio"`
	CharacterImageURL    *string  `json:"character_image_url"`
	CharacterImageFileID *string  `json:"character_image_file_id"`
	IsActive             bool     `json:"is_active"`
	Status               Status   `json:"status"`
	SecretMissionID      *string  `json:"secret_mission_id"`
	CurrentMissionID     string   `json:"current_mission_id,omitempty"`
	Version              string   `json:"ver,omitempty"`
}

var playerKeys = []string{
	"telegram_user_id", "character_name", "character_role", "character_bio",
	"character_image_url", "character_image_file_id", "is_active", "status",
	"secret_mission_id", "current_mission_id", "ver",
}

// UnmarshalJSON decodes a player record, keeping keys it does not know
func (p *Player) UnmarshalJSON(data []byte) error {
	var raw playerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Player{
		ID:                   raw.ID,
		CharacterName:        raw.CharacterName,
		CharacterRole:        raw.CharacterRole,
		CharacterBio:         raw.CharacterBio,
		CharacterImageURL:    deref(raw.CharacterImageURL),
		CharacterImageFileID: deref(raw.CharacterImageFileID),
		IsActive:             raw.IsActive,
		Status:               raw.Status,
		SecretMissionID:      deref(raw.SecretMissionID),
		CurrentMissionID:     raw.CurrentMissionID,
		Version:              raw.Version,
		extra:                ordered.Unknown(data, playerKeys...),
	}
	return nil
}

// MarshalJSON writes the known fields in file order, then any unknown keys
func (p Player) MarshalJSON() ([]byte, error) {
	body, err := ordered.Marshal(playerJSON{
		ID:                   p.ID,
		CharacterName:        p.CharacterName,
		CharacterRole:        p.CharacterRole,
		CharacterBio:         p.CharacterBio,
		CharacterImageURL:    nullable(p.CharacterImageURL),
		CharacterImageFileID: nullable(p.CharacterImageFileID),
		IsActive:             p.IsActive,
		Status:               p.Status,
		SecretMissionID:      nullable(p.SecretMissionID),
		CurrentMissionID:     p.CurrentMissionID,
		Version:              p.Version,
	})
	if err != nil {
		return nil, err
	}
	return ordered.AppendEntries(body, p.extra)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewPlayer builds the record created on first contact
func NewPlayer(id PlayerID, firstName string) *Player {
	return &Player{
		ID:               id,
		CharacterName:    "New Player " + firstName,
		CharacterRole:    "Undefined",
		CharacterBio:     "No information.",
		IsActive:         false,
		Status:           StatusUndefined,
		CurrentMissionID: DefaultMissionID,
	}
}

// DisplayName returns the character name, falling back to the account id
func (p *Player) DisplayName() string {
	if p.CharacterName != "" {
		return p.CharacterName
	}
	return "Player " + p.ID.String()
}

// GameStatus returns the player's status, treating a missing value as Undefined
func (p *Player) GameStatus() Status {
	if p.Status == "" {
		return StatusUndefined
	}
	return p.Status
}

// SheetVersion returns the sheet version or the default
func (p *Player) SheetVersion() string {
	if p.Version == "" {
		return DefaultSheetVersion
	}
	return p.Version
}

// Clone returns a copy that can be restored after a failed save
func (p *Player) Clone() *Player {
	c := *p
	return &c
}
