package store

import (
	"context"
	"slices"
	"strings"

	"github.com/mcoot/eventide-gm/internal/model"
)

// Character sheet fields an admin may change
const (
	FieldCharacterName     = "character_name"
	FieldCharacterRole     = "character_role"
	FieldCharacterBio      = "character_bio"
	FieldCharacterImageURL = "character_image_url"
	FieldIsActive          = "is_active"
	FieldStatus            = "status"
	FieldSecretMissionID   = "secret_mission_id"
)

// CharacterFields is the update allow-list in display order
var CharacterFields = []string{
	FieldCharacterName,
	FieldCharacterRole,
	FieldCharacterBio,
	FieldCharacterImageURL,
	FieldIsActive,
	FieldStatus,
	FieldSecretMissionID,
}

var (
	trueTokens  = []string{"true", "1", "yes", "on"}
	clearTokens = []string{"none", "clear", "null", "remove"}
)

// IsClearToken reports whether value asks for a secret mission to be removed
func IsClearToken(value string) bool {
	return slices.Contains(clearTokens, strings.ToLower(value))
}

// UpdateCharacter sets one allow-listed field from its textual value and
// returns the updated player together with the value as applied. Changing
// the image URL drops the cached attachment handle.
func (s *Store) UpdateCharacter(ctx context.Context, id model.PlayerID, field, value string) (*model.Player, string, error) {
	field = strings.ToLower(field)
	if !slices.Contains(CharacterFields, field) {
		// A rejected field never reaches storage.
		if _, ok := s.Player(id); !ok {
			return nil, "", model.ErrPlayerNotFound
		}
		return nil, "", model.ErrInvalidField
	}

	applied := value
	p, err := s.mutatePlayer(ctx, id, func(p *model.Player) (bool, error) {
		switch field {
		case FieldCharacterName:
			p.CharacterName = value
		case FieldCharacterRole:
			p.CharacterRole = value
		case FieldCharacterBio:
			p.CharacterBio = value
		case FieldCharacterImageURL:
			p.CharacterImageURL = value
			p.CharacterImageFileID = ""
		case FieldIsActive:
			p.IsActive = slices.Contains(trueTokens, strings.ToLower(value))
			if p.IsActive {
				applied = "true"
			} else {
				applied = "false"
			}
		case FieldStatus:
			st, err := model.ParseStatus(value)
			if err != nil {
				return false, err
			}
			p.Status = st
		case FieldSecretMissionID:
			if IsClearToken(value) {
				p.SecretMissionID = ""
				applied = "none"
				break
			}
			if !s.secretMissions.Has(value) {
				return false, model.ErrSecretMissionNotFound
			}
			p.SecretMissionID = value
		}
		return true, nil
	})
	if err != nil {
		return nil, "", err
	}
	return p, applied, nil
}
