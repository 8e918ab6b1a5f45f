package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/services/broadcast"
	"github.com/mcoot/eventide-gm/internal/session"
)

func (d *Dispatcher) startDirectMessage(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	kb, ok := d.playerSelection(prefixDMSelect, annotateNone)
	if !ok {
		d.reply(ctx, ev, textNoPlayers, nil)
		return
	}
	d.saveSession(ctx, session.New(ev.User.ID, session.FlowDirectMessage, session.StateSelectPlayer))
	d.reply(ctx, ev, textDMPrompt, kb)
}

func (d *Dispatcher) stepDirectMessage(ctx context.Context, ev Event, sess *session.Session) bool {
	if ev.IsCallback() && ev.Payload == prefixDMSelect+suffixCancel {
		d.ack(ctx, ev)
		d.cancelFromButton(ctx, ev, textDMCancelled)
		return true
	}

	draft := sess.DirectMessage
	switch sess.State {
	case session.StateSelectPlayer:
		if !ev.IsCallback() || !strings.HasPrefix(ev.Payload, prefixDMSelect+"_") {
			return false
		}
		d.ack(ctx, ev)
		d.selectDMPlayer(ctx, ev, sess)

	case session.StateTypeSender:
		if ev.IsCallback() {
			return false
		}
		draft.Sender = broadcast.SenderAlias(ev.Text)
		sess.State = session.StateTypeBody
		d.saveSession(ctx, sess)
		d.reply(ctx, ev, textDMBody, nil)

	case session.StateTypeBody:
		if ev.IsCallback() {
			return false
		}
		draft.Body = ev.Text
		sess.State = session.StateConfirm
		d.saveSession(ctx, sess)
		d.reply(ctx, ev, fmt.Sprintf(textDMPreviewFmt, d.playerName(draft), draft.Sender, draft.Body),
			confirmKeyboard(payloadDMYes, payloadDMNo))

	case session.StateConfirm:
		if !ev.IsCallback() {
			return false
		}
		switch ev.Payload {
		case payloadDMYes:
			d.ack(ctx, ev)
			d.sendDirectMessage(ctx, ev, draft)
		case payloadDMNo:
			d.ack(ctx, ev)
			d.cancelFromButton(ctx, ev, textDMCancelled)
		default:
			return false
		}

	default:
		return false
	}
	return true
}

func (d *Dispatcher) selectDMPlayer(ctx context.Context, ev Event, sess *session.Session) {
	id, err := parsePlayerPayload(prefixDMSelect, ev.Payload)
	if err != nil {
		d.retrySelection(ctx, ev, sess, prefixDMSelect, annotateNone)
		return
	}
	p, ok := d.store.Player(id)
	if !ok {
		d.saveSession(ctx, sess)
		kb, _ := d.playerSelection(prefixDMSelect, annotateNone)
		d.editCallback(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), kb)
		return
	}
	sess.DirectMessage.PlayerID = id
	sess.State = session.StateTypeSender
	d.saveSession(ctx, sess)
	d.editCallback(ctx, ev, fmt.Sprintf(textDMSenderFmt, p.DisplayName()), nil)
}

func (d *Dispatcher) playerName(draft *session.DirectMessageScratch) string {
	if p, ok := d.store.Player(draft.PlayerID); ok {
		return p.DisplayName()
	}
	return draft.PlayerID.String()
}

func (d *Dispatcher) sendDirectMessage(ctx context.Context, ev Event, draft *session.DirectMessageScratch) {
	d.endSession(ctx, ev.User.ID)
	err := d.notifier.Send(ctx, messenger.Message{
		ChatID:    int64(draft.PlayerID),
		Text:      fmt.Sprintf(textDMFormatFmt, draft.Sender, draft.Body),
		ParseMode: messenger.ParseMarkdown,
	})
	if err != nil {
		d.editCallback(ctx, ev, fmt.Sprintf(textDMErrorFmt, err), nil)
	} else {
		d.editCallback(ctx, ev, fmt.Sprintf(textDMSentFmt, draft.PlayerID), nil)
	}
	d.showAdminPanel(ctx, ev)
}
