package bot

import (
	"context"
	"fmt"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/services/relay"
	"github.com/mcoot/eventide-gm/internal/session"
)

func (d *Dispatcher) startRelay(ctx context.Context, ev Event) {
	if !d.policy.CanViewContent(ev.User.ID) {
		d.reply(ctx, ev, textAwaitingGM, nil)
		return
	}
	names := relay.Candidates(ev.User.ID, d.store.Players(), d.store.Recipients())
	if len(names) == 0 {
		d.reply(ctx, ev, textRelayNobody, nil)
		d.reply(ctx, ev, textRelayReturning, mainKeyboard(d.policy.IsPrivileged(ev.User.ID)))
		return
	}
	d.saveSession(ctx, session.New(ev.User.ID, session.FlowRelay, session.StateChooseRecipient))
	d.reply(ctx, ev, textRelayPrompt, recipientKeyboard(names))
}

func (d *Dispatcher) stepRelay(ctx context.Context, ev Event, sess *session.Session) bool {
	if ev.IsCallback() {
		return false
	}
	switch sess.State {
	case session.StateChooseRecipient:
		d.chooseRelayRecipient(ctx, ev, sess)
	case session.StateTypeMessage:
		d.deliverRelay(ctx, ev, sess)
	default:
		return false
	}
	return true
}

func (d *Dispatcher) chooseRelayRecipient(ctx context.Context, ev Event, sess *session.Session) {
	players := d.store.Players()
	npcs := d.store.Recipients()
	r, ok := relay.Resolve(ev.Text, ev.User.ID, players, npcs)
	if !ok {
		d.saveSession(ctx, sess)
		d.reply(ctx, ev, textRelayUnknown, recipientKeyboard(relay.Candidates(ev.User.ID, players, npcs)))
		return
	}
	sess.Relay.RecipientName = r.Name
	sess.Relay.RecipientKind = r.Kind
	sess.Relay.RecipientID = r.PlayerID
	sess.State = session.StateTypeMessage
	d.saveSession(ctx, sess)
	d.reply(ctx, ev, fmt.Sprintf(textRelaySelectedFmt, r.Name), messenger.RemoveKeyboard{})
}

// deliverRelay sends the admin copy first and only forwards to a player
// recipient once the admin copy went through
func (d *Dispatcher) deliverRelay(ctx context.Context, ev Event, sess *session.Session) {
	d.endSession(ctx, ev.User.ID)

	var record *model.Player
	if p, ok := d.store.Player(ev.User.ID); ok {
		record = p
	}
	sender := relay.SenderFor(ev.User.ID, ev.User.FirstName, record)
	recipient := relay.Recipient{
		Name:     sess.Relay.RecipientName,
		Kind:     sess.Relay.RecipientKind,
		PlayerID: sess.Relay.RecipientID,
	}
	if target, ok := d.store.Player(recipient.PlayerID); ok {
		recipient.Active = relay.Deliverable(ev.User.ID, target)
	}
	plan := relay.NewPlan(sender, recipient, ev.Text)

	main := mainKeyboard(d.policy.IsPrivileged(ev.User.ID))
	adminOK := d.notify(ctx, d.policy.AdminID(), plan.AdminText, messenger.ParseNone)
	switch {
	case plan.Gated:
		d.reply(ctx, ev, plan.Reply, main)
	case !adminOK:
		d.reply(ctx, ev, relay.ReplyAdminFailed, main)
	case plan.Forward != nil && !d.notify(ctx, plan.Forward.To, plan.Forward.Text, messenger.ParseMarkdown):
		d.reply(ctx, ev, relay.ReplyForwardFailed, main)
	default:
		d.reply(ctx, ev, plan.Reply, main)
	}
}
