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

func (d *Dispatcher) startActivate(ctx context.Context, ev Event) {
	d.startActivation(ctx, ev, prefixActivate)
}

func (d *Dispatcher) startDeactivate(ctx context.Context, ev Event) {
	d.startActivation(ctx, ev, prefixDeactivate)
}

// startActivation opens the selection for action, which is either
// prefixActivate or prefixDeactivate
func (d *Dispatcher) startActivation(ctx context.Context, ev Event, action string) {
	if !d.policy.IsPrivileged(ev.User.ID) {
		d.reply(ctx, ev, textNoPermission, nil)
		return
	}
	kb, ok := d.playerSelection(action, annotateActivation)
	if !ok {
		d.reply(ctx, ev, textNoPlayers, nil)
		return
	}
	sess := session.New(ev.User.ID, session.FlowActivation, session.StateSelectPlayer)
	sess.Activation.Action = action
	d.saveSession(ctx, sess)
	d.reply(ctx, ev, fmt.Sprintf(textActivationPromptFmt, action), kb)
}

func (d *Dispatcher) stepActivation(ctx context.Context, ev Event, sess *session.Session) bool {
	action := sess.Activation.Action
	if !ev.IsCallback() || !strings.HasPrefix(ev.Payload, action+"_") {
		return false
	}
	d.ack(ctx, ev)

	if ev.Payload == action+suffixCancel {
		d.cancelFromButton(ctx, ev, textActionCancelled)
		return true
	}
	id, err := parsePlayerPayload(action, ev.Payload)
	if err != nil {
		d.retrySelection(ctx, ev, sess, action, annotateActivation)
		return true
	}

	activate := action == prefixActivate
	p, changed, err := d.store.SetActive(ctx, id, activate)
	d.endSession(ctx, ev.User.ID)
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		d.editCallback(ctx, ev, fmt.Sprintf(textPlayerNotFoundFmt, id), nil)
	case err != nil:
		d.editCallback(ctx, ev, textErrorSaving, nil)
	default:
		d.editCallback(ctx, ev, activationResult(p, activate, changed), nil)
		if changed {
			notice := textNotifyDeactivated
			if activate {
				notice = textNotifyActivated
			}
			d.notify(ctx, id, notice, messenger.ParseNone)
		}
	}
	d.showAdminPanel(ctx, ev)
	return true
}

func activationResult(p *model.Player, activate, changed bool) string {
	switch {
	case activate && changed:
		return fmt.Sprintf(textActivatedFmt, p.DisplayName())
	case activate:
		return fmt.Sprintf(textAlreadyActiveFmt, p.DisplayName())
	case changed:
		return fmt.Sprintf(textDeactivatedFmt, p.DisplayName())
	}
	return fmt.Sprintf(textAlreadyInactiveFmt, p.DisplayName())
}

// retrySelection keeps the wizard on its player selection after a bad
// payload, offering the buttons again
func (d *Dispatcher) retrySelection(ctx context.Context, ev Event, sess *session.Session, prefix string, ann annotation) {
	d.saveSession(ctx, sess)
	kb, _ := d.playerSelection(prefix, ann)
	d.editCallback(ctx, ev, textInvalidSelection, kb)
}
