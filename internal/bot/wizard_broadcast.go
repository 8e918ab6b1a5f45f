package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/eventide-gm/internal/services/broadcast"
	"github.com/mcoot/eventide-gm/internal/session"
)

func (d *Dispatcher) startBroadcast(ctx context.Context, ev Event) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	d.saveSession(ctx, session.New(ev.User.ID, session.FlowBroadcast, session.StateChooseTarget))
	d.reply(ctx, ev, textBroadcastTarget, broadcastTargetKeyboard())
}

func (d *Dispatcher) stepBroadcast(ctx context.Context, ev Event, sess *session.Session) bool {
	if ev.IsCallback() && ev.Payload == payloadBroadcastCancel {
		d.ack(ctx, ev)
		d.cancelFromButton(ctx, ev, textBroadcastCancelled)
		return true
	}

	draft := sess.Broadcast
	switch sess.State {
	case session.StateChooseTarget:
		raw, ok := strings.CutPrefix(ev.Payload, prefixBroadcastTarget+"_")
		if !ev.IsCallback() || !ok {
			return false
		}
		d.ack(ctx, ev)
		target, ok := broadcast.ParseTarget(raw)
		if !ok {
			d.saveSession(ctx, sess)
			d.editCallback(ctx, ev, textInvalidSelection, broadcastTargetKeyboard())
			return true
		}
		draft.Target = string(target)
		sess.State = session.StateTypeSender
		d.saveSession(ctx, sess)
		d.editCallback(ctx, ev, textBroadcastSender, nil)

	case session.StateTypeSender:
		if ev.IsCallback() {
			return false
		}
		draft.Sender = broadcast.SenderAlias(ev.Text)
		sess.State = session.StateTypeBody
		d.saveSession(ctx, sess)
		d.reply(ctx, ev, textBroadcastBody, nil)

	case session.StateTypeBody:
		if ev.IsCallback() {
			return false
		}
		draft.Body = ev.Text
		sess.State = session.StateConfirm
		d.saveSession(ctx, sess)
		target, _ := broadcast.ParseTarget(draft.Target)
		d.reply(ctx, ev, fmt.Sprintf(textBroadcastPreviewFmt, draft.Sender, target.Label(), draft.Body),
			confirmKeyboard(payloadBroadcastYes, payloadBroadcastNo))

	case session.StateConfirm:
		if !ev.IsCallback() {
			return false
		}
		switch ev.Payload {
		case payloadBroadcastYes:
			d.ack(ctx, ev)
			d.sendBroadcast(ctx, ev, draft)
		case payloadBroadcastNo:
			d.ack(ctx, ev)
			d.cancelFromButton(ctx, ev, textBroadcastCancelled)
		default:
			return false
		}

	default:
		return false
	}
	return true
}

func (d *Dispatcher) sendBroadcast(ctx context.Context, ev Event, draft *session.BroadcastScratch) {
	d.endSession(ctx, ev.User.ID)
	target, _ := broadcast.ParseTarget(draft.Target)
	ids := broadcast.Select(d.store.Players(), target)
	sent := d.broadcaster.Send(ctx, ids, broadcast.Format(draft.Sender, draft.Body))
	d.editCallback(ctx, ev, fmt.Sprintf(textBroadcastSentFmt, sent), nil)
	d.showAdminPanel(ctx, ev)
}
