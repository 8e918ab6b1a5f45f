package bot

import (
	"strings"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
)

// Callback payload vocabulary. Player ids always follow a fixed prefix so
// they never sit behind a variable-length label.
const (
	prefixActivate         = "activate"
	prefixDeactivate       = "deactivate"
	prefixSetStatus        = "setstatus"
	prefixSecretMission    = "secretmission"
	prefixSecretMissionSet = "secretmission_set"
	prefixDMSelect         = "dmselect"
	prefixBroadcastTarget  = "broadcast_target"

	suffixCancel          = "_cancel"
	suffixCancelSelection = "_cancel_selection"
	secretClearToken      = "clear"

	payloadSecretNone      = "secretmission_none"
	payloadBroadcastCancel = "broadcast_cancel"
	payloadBroadcastYes    = "broadcast_confirm_yes"
	payloadBroadcastNo     = "broadcast_confirm_no"
	payloadDMYes           = "dm_confirm_yes"
	payloadDMNo            = "dm_confirm_no"
)

// payload joins parts with underscores and caps the length
func payload(parts ...string) string {
	return messenger.TruncatePayload(strings.Join(parts, "_"))
}

// parsePlayerPayload reads "<prefix>_<id>"
func parsePlayerPayload(prefix, p string) (model.PlayerID, error) {
	rest, ok := strings.CutPrefix(p, prefix+"_")
	if !ok {
		return 0, model.ErrBadPayload
	}
	id, err := model.ParsePlayerID(rest)
	if err != nil {
		return 0, model.ErrBadPayload
	}
	return id, nil
}

// parsePlayerTail reads "<prefix>_<id>_<tail>" where tail may itself contain
// underscores
func parsePlayerTail(prefix, p string) (model.PlayerID, string, error) {
	rest, ok := strings.CutPrefix(p, prefix+"_")
	if !ok {
		return 0, "", model.ErrBadPayload
	}
	idPart, tail, ok := strings.Cut(rest, "_")
	if !ok || tail == "" {
		return 0, "", model.ErrBadPayload
	}
	id, err := model.ParsePlayerID(idPart)
	if err != nil {
		return 0, "", model.ErrBadPayload
	}
	return id, tail, nil
}
