package bot

import (
	"fmt"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/services/broadcast"
)

func mainKeyboard(admin bool) messenger.ReplyKeyboard {
	rows := [][]string{
		{LabelLore},
		{LabelCharacter, LabelMission},
		{LabelSendMessage},
	}
	if admin {
		rows = append(rows, []string{LabelAdminPanel})
	}
	return messenger.ReplyKeyboard{Rows: rows}
}

func adminKeyboard() messenger.ReplyKeyboard {
	return messenger.ReplyKeyboard{
		Rows: [][]string{
			{LabelListPlayers, LabelActivate, LabelDeactivate},
			{LabelSetStatus, LabelSecretMission},
			{LabelBroadcast, LabelDirectMessage},
			{LabelUpdateMission, LabelUpdateChar, LabelRecipients},
			{LabelBackToMain},
		},
		OneTime: true,
	}
}

// recipientKeyboard lists relay recipients one per row, then Back
func recipientKeyboard(names []string) messenger.ReplyKeyboard {
	rows := make([][]string, 0, len(names)+1)
	for _, n := range names {
		rows = append(rows, []string{n})
	}
	rows = append(rows, []string{LabelRelayBack})
	return messenger.ReplyKeyboard{Rows: rows, OneTime: true}
}

// annotation selects the extra detail shown on player selection buttons
type annotation int

const (
	annotateNone annotation = iota
	annotateActivation
	annotateStatus
	annotateSecretMission
)

// playerSelection builds one button per player, sorted by character name,
// followed by a cancel button. ok is false when there are no players.
func (d *Dispatcher) playerSelection(prefix string, ann annotation) (messenger.InlineKeyboard, bool) {
	players := d.store.Players()
	if len(players) == 0 {
		return nil, false
	}

	var buttons []messenger.Button
	for _, p := range players {
		label := fmt.Sprintf("%s (ID: %s)", p.DisplayName(), p.ID)
		switch ann {
		case annotateActivation:
			label += " - " + activeLabel(p.IsActive)
		case annotateStatus:
			label += " - Status: " + string(p.GameStatus())
		case annotateSecretMission:
			if p.SecretMissionID == "" {
				break
			}
			if sm, ok := d.store.SecretMission(p.SecretMissionID); ok {
				label += fmt.Sprintf(" (SM: %s...)", clip(secretTitle(p.SecretMissionID, sm), 10))
			} else {
				label += fmt.Sprintf(" (SM: ID %s)", p.SecretMissionID)
			}
		}
		buttons = append(buttons, messenger.Button{Label: label, Payload: payload(prefix, p.ID.String())})
	}
	buttons = append(buttons, messenger.Button{Label: labelCancelAction, Payload: prefix + suffixCancel})
	return messenger.Column(buttons...), true
}

func statusKeyboard(id model.PlayerID) messenger.InlineKeyboard {
	buttons := make([]messenger.Button, 0, len(model.Statuses)+1)
	for _, st := range model.Statuses {
		buttons = append(buttons, messenger.Button{
			Label:   string(st),
			Payload: payload(prefixSetStatus, id.String(), model.EncodeStatus(st)),
		})
	}
	buttons = append(buttons, messenger.Button{
		Label:   labelCancelStatusChange,
		Payload: payload(prefixSetStatus, id.String()) + suffixCancel,
	})
	return messenger.Column(buttons...)
}

func (d *Dispatcher) secretMissionKeyboard(id model.PlayerID) messenger.InlineKeyboard {
	var buttons []messenger.Button
	entries := d.store.SecretMissions()
	if len(entries) == 0 {
		buttons = append(buttons, messenger.Button{Label: labelSecretNone, Payload: payloadSecretNone})
	}
	for _, e := range entries {
		title := e.Mission.Title
		if title == "" {
			title = "Mission " + e.ID
		}
		buttons = append(buttons, messenger.Button{
			Label:   clip(title, 40),
			Payload: payload(prefixSecretMissionSet, id.String(), e.ID),
		})
	}
	buttons = append(buttons,
		messenger.Button{Label: labelSecretClear, Payload: payload(prefixSecretMissionSet, id.String(), secretClearToken)},
		messenger.Button{Label: labelSecretCancel, Payload: payload(prefixSecretMissionSet, id.String()) + suffixCancelSelection},
	)
	return messenger.Column(buttons...)
}

func broadcastTargetKeyboard() messenger.InlineKeyboard {
	return messenger.Column(
		messenger.Button{Label: labelBroadcastAll, Payload: payload(prefixBroadcastTarget, string(broadcast.TargetAll))},
		messenger.Button{Label: labelBroadcastActive, Payload: payload(prefixBroadcastTarget, string(broadcast.TargetActive))},
		messenger.Button{Label: labelBroadcastInactive, Payload: payload(prefixBroadcastTarget, string(broadcast.TargetInactive))},
		messenger.Button{Label: labelBroadcastCancel, Payload: payloadBroadcastCancel},
	)
}

func confirmKeyboard(yes, no string) messenger.InlineKeyboard {
	return messenger.Column(
		messenger.Button{Label: labelConfirmYes, Payload: yes},
		messenger.Button{Label: labelConfirmNo, Payload: no},
	)
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func secretTitle(id string, sm *model.SecretMission) string {
	if sm.Title != "" {
		return sm.Title
	}
	return id
}

// clip keeps at most n runes of s
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
