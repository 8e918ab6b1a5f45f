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

func (d *Dispatcher) startStatus(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	kb, ok := d.playerSelection(prefixSetStatus, annotateStatus)
	if !ok {
		d.reply(ctx, ev, textNoPlayers, nil)
		return
	}
	d.saveSession(ctx, session.New(ev.User.ID, session.FlowStatus, session.StateSelectPlayer))
	d.reply(ctx, ev, textStatusPrompt, kb)
}

func (d *Dispatcher) stepStatus(ctx context.Context, ev Event, sess *session.Session) bool {
	if !ev.IsCallback() || !strings.HasPrefix(ev.Payload, prefixSetStatus+"_") {
		return false
	}
	d.ack(ctx, ev)
	if strings.HasSuffix(ev.Payload, suffixCancel) {
		d.cancelFromButton(ctx, ev, textStatusCancelled)
		return true
	}

	switch sess.State {
	case session.StateSelectPlayer:
		d.selectStatusPlayer(ctx, ev, sess)
	case session.StateSelectStatus:
		d.applyStatus(ctx, ev, sess)
	}
	return true
}

func (d *Dispatcher) selectStatusPlayer(ctx context.Context, ev Event, sess *session.Session) {
	id, err := parsePlayerPayload(prefixSetStatus, ev.Payload)
	if err != nil {
		d.retrySelection(ctx, ev, sess, prefixSetStatus, annotateStatus)
		return
	}
	p, ok := d.store.Player(id)
	if !ok {
		d.saveSession(ctx, sess)
		kb, _ := d.playerSelection(prefixSetStatus, annotateStatus)
		d.editCallback(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), kb)
		return
	}

	sess.Status.PlayerID = id
	sess.State = session.StateSelectStatus
	d.saveSession(ctx, sess)
	d.editCallback(ctx, ev, fmt.Sprintf(textStatusChooseFmt, p.DisplayName(), p.GameStatus()), statusKeyboard(id))
}

func (d *Dispatcher) applyStatus(ctx context.Context, ev Event, sess *session.Session) {
	id := sess.Status.PlayerID
	pid, token, err := parsePlayerTail(prefixSetStatus, ev.Payload)
	var st model.Status
	if err == nil && pid == id {
		st, err = model.DecodeStatus(token)
	}
	if err != nil || pid != id {
		d.saveSession(ctx, sess)
		d.editCallback(ctx, ev, textStatusInvalid, statusKeyboard(id))
		return
	}

	p, err := d.store.SetStatus(ctx, id, st)
	d.endSession(ctx, ev.User.ID)
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		d.editCallback(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), nil)
	case err != nil:
		d.editCallback(ctx, ev, textStatusSaveError, nil)
	default:
		d.editCallback(ctx, ev, fmt.Sprintf(textStatusSetFmt, p.DisplayName(), id, st), nil)
		d.notify(ctx, id, fmt.Sprintf(textNotifyStatusFmt, st), messenger.ParseMarkdown)
	}
	d.showAdminPanel(ctx, ev)
}
