package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/session"
)

func (d *Dispatcher) startSecretMission(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	kb, ok := d.playerSelection(prefixSecretMission, annotateSecretMission)
	if !ok {
		d.reply(ctx, ev, textNoPlayers, nil)
		return
	}
	d.saveSession(ctx, session.New(ev.User.ID, session.FlowSecretMission, session.StateSelectPlayer))
	d.reply(ctx, ev, textSecretPrompt, kb)
}

func (d *Dispatcher) stepSecretMission(ctx context.Context, ev Event, sess *session.Session) bool {
	if !ev.IsCallback() || !strings.HasPrefix(ev.Payload, prefixSecretMission+"_") {
		return false
	}
	d.ack(ctx, ev)

	switch sess.State {
	case session.StateSelectPlayer:
		if ev.Payload == prefixSecretMission+suffixCancel {
			d.cancelFromButton(ctx, ev, textSecretCancelled)
			return true
		}
		d.selectSecretPlayer(ctx, ev, sess)
	case session.StateChooseSecretMission:
		switch {
		case strings.HasSuffix(ev.Payload, suffixCancelSelection):
			d.cancelFromButton(ctx, ev, textSecretCancelled)
		case ev.Payload == payloadSecretNone:
			d.cancelFromButton(ctx, ev, textSecretNoneDefined)
		default:
			d.applySecretMission(ctx, ev, sess)
		}
	}
	return true
}

func (d *Dispatcher) selectSecretPlayer(ctx context.Context, ev Event, sess *session.Session) {
	id, err := parsePlayerPayload(prefixSecretMission, ev.Payload)
	if err != nil {
		d.retrySelection(ctx, ev, sess, prefixSecretMission, annotateSecretMission)
		return
	}
	p, ok := d.store.Player(id)
	if !ok {
		d.saveSession(ctx, sess)
		kb, _ := d.playerSelection(prefixSecretMission, annotateSecretMission)
		d.editCallback(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), kb)
		return
	}

	current := "None"
	if p.SecretMissionID != "" {
		if sm, ok := d.store.SecretMission(p.SecretMissionID); ok && sm.Title != "" {
			current = sm.Title
		}
	}
	sess.SecretMission.PlayerID = id
	sess.State = session.StateChooseSecretMission
	d.saveSession(ctx, sess)
	d.editCallback(ctx, ev, fmt.Sprintf(textSecretChooseFmt, p.DisplayName(), current), d.secretMissionKeyboard(id))
}

func (d *Dispatcher) applySecretMission(ctx context.Context, ev Event, sess *session.Session) {
	id := sess.SecretMission.PlayerID
	pid, secretID, err := parsePlayerTail(prefixSecretMissionSet, ev.Payload)
	if err != nil || pid != id {
		d.saveSession(ctx, sess)
		d.editCallback(ctx, ev, textInvalidSelection, d.secretMissionKeyboard(id))
		return
	}

	clearing := secretID == secretClearToken
	if clearing {
		secretID = ""
	}
	p, err := d.store.SetSecretMission(ctx, id, secretID)
	if errors.Is(err, model.ErrSecretMissionNotFound) {
		d.saveSession(ctx, sess)
		d.editCallback(ctx, ev, fmt.Sprintf(textSecretInvalidFmt, secretID), nil)
		d.reply(ctx, ev, textSecretChooseAgain, d.secretMissionKeyboard(id))
		return
	}

	d.endSession(ctx, ev.User.ID)
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		d.editCallback(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), nil)
	case err != nil:
		d.editCallback(ctx, ev, textErrorSaving, nil)
	case clearing:
		d.editCallback(ctx, ev, fmt.Sprintf(textSecretClearedFmt, p.DisplayName()), nil)
		d.notify(ctx, id, textNotifySecretClear, messenger.ParseNone)
	default:
		title := secretID
		if sm, ok := d.store.SecretMission(secretID); ok {
			title = secretTitle(secretID, sm)
		}
		d.editCallback(ctx, ev, fmt.Sprintf(textSecretSetFmt, title, p.DisplayName()), nil)
		d.notify(ctx, id, fmt.Sprintf(textNotifySecretSetFmt, title), messenger.ParseMarkdown)
	}
	d.showAdminPanel(ctx, ev)
}
