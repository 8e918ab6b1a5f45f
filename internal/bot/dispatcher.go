package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/services/access"
	"github.com/mcoot/eventide-gm/internal/services/broadcast"
	"github.com/mcoot/eventide-gm/internal/services/lore"
	"github.com/mcoot/eventide-gm/internal/session"
	"github.com/mcoot/eventide-gm/internal/store"
)

// Config holds the dispatcher's file locations
type Config struct {
	// BaseDir resolves relative character image paths
	BaseDir string
	// WelcomeImagePath is the photo sent to newly registered players
	WelcomeImagePath string
}

type handlerFunc func(ctx context.Context, ev Event)

// Dispatcher routes every inbound event. Events must be handled one at a
// time; the dispatcher itself does not serialise them.
type Dispatcher struct {
	store       *store.Store
	policy      *access.Policy
	sessions    session.Store
	notifier    *Notifier
	lore        *lore.Navigator
	broadcaster *broadcast.Service
	cfg         Config
	logger      *slog.Logger

	// entries start a wizard; stateless handle one-shot commands and buttons
	entries   map[string]handlerFunc
	stateless map[string]handlerFunc

	welcomeMu     sync.Mutex
	welcomeFileID string
}

// New creates a dispatcher
func New(
	st *store.Store,
	policy *access.Policy,
	sessions session.Store,
	m messenger.Messenger,
	nav *lore.Navigator,
	broadcaster *broadcast.Service,
	cfg Config,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	d := &Dispatcher{
		store:       st,
		policy:      policy,
		sessions:    sessions,
		notifier:    NewNotifier(m, logger),
		lore:        nav,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger,
	}
	d.registerRoutes()
	return d
}

func (d *Dispatcher) registerRoutes() {
	d.entries = map[string]handlerFunc{
		"/send_message":             d.startRelay,
		LabelSendMessage:            d.startRelay,
		"/admin_activate_player":    d.startActivate,
		LabelActivate:               d.startActivate,
		"/admin_deactivate_player":  d.startDeactivate,
		LabelDeactivate:             d.startDeactivate,
		"/admin_set_player_status":  d.startStatus,
		LabelSetStatus:              d.startStatus,
		"/admin_set_secret_mission": d.startSecretMission,
		LabelSecretMission:          d.startSecretMission,
		"/admin_broadcast":          d.startBroadcast,
		LabelBroadcast:              d.startBroadcast,
		"/admin_direct_message":     d.startDirectMessage,
		LabelDirectMessage:          d.startDirectMessage,
	}
	d.stateless = map[string]handlerFunc{
		"/start":                  d.handleStart,
		"/lore":                   d.handleLore,
		LabelLore:                 d.handleLore,
		"/character":              d.handleCharacter,
		LabelCharacter:            d.handleCharacter,
		"/mission":                d.handleMission,
		LabelMission:              d.handleMission,
		"/admin":                  d.handleAdminPanel,
		LabelAdminPanel:           d.handleAdminPanel,
		LabelBackToMain:           d.handleBackToMain,
		"/admin_list_players":     d.handleListPlayers,
		LabelListPlayers:          d.handleListPlayers,
		"/admin_update_mission":   d.handleUpdateMission,
		LabelUpdateMission:        d.handleUpdateMission,
		"/admin_update_character": d.handleUpdateCharacter,
		LabelUpdateChar:           d.handleUpdateCharacter,
		"/admin_recipients":       d.handleRecipients,
		LabelRecipients:           d.handleRecipients,
	}
}

// Handle processes one event to completion. Panics are logged and swallowed
// so one bad update cannot stop the bot.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error("panic recovered",
				slog.Any("error", err),
				slog.String("stack", string(debug.Stack())),
				slog.Int64("user_id", int64(ev.User.ID)),
			)
		}
	}()

	if ev.IsCallback() {
		d.handleCallback(ctx, ev)
		return
	}
	d.handleMessage(ctx, ev)
}

// routeKey is the lookup key for a message: "/name" for commands, the exact
// text for reply keyboard buttons
func routeKey(ev Event) (string, bool) {
	if name, _, ok := ev.Command(); ok {
		return "/" + name, true
	}
	return ev.Text, false
}

func (d *Dispatcher) handleMessage(ctx context.Context, ev Event) {
	key, isCommand := routeKey(ev)
	sess := d.activeSession(ctx, ev.User.ID)

	if key == "/cancel" {
		if sess != nil {
			d.cancel(ctx, ev, sess)
		}
		return
	}
	if sess != nil && sess.Flow == session.FlowRelay && strings.EqualFold(ev.Text, LabelRelayBack) {
		d.cancel(ctx, ev, sess)
		return
	}
	if start, ok := d.entries[key]; ok {
		if sess != nil {
			d.endSession(ctx, ev.User.ID)
		}
		start(ctx, ev)
		return
	}
	if handle, ok := d.stateless[key]; ok {
		handle(ctx, ev)
		return
	}
	if sess != nil && !isCommand {
		d.step(ctx, ev, sess)
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, ev Event) {
	if sess := d.activeSession(ctx, ev.User.ID); sess != nil && d.step(ctx, ev, sess) {
		return
	}
	switch {
	case ev.Payload == lore.MainMenuPayload:
		d.handleLoreMenuCallback(ctx, ev)
	case lore.IsPayload(ev.Payload):
		d.handleLoreCallback(ctx, ev)
	default:
		// Buttons from finished or expired wizards
		d.notifier.Answer(ctx, ev.CallbackID, "", false)
	}
}

// step feeds ev to the active wizard. It reports false when the wizard does
// not accept this kind of input in its current state.
func (d *Dispatcher) step(ctx context.Context, ev Event, sess *session.Session) bool {
	switch sess.Flow {
	case session.FlowRelay:
		return d.stepRelay(ctx, ev, sess)
	case session.FlowActivation:
		return d.stepActivation(ctx, ev, sess)
	case session.FlowStatus:
		return d.stepStatus(ctx, ev, sess)
	case session.FlowSecretMission:
		return d.stepSecretMission(ctx, ev, sess)
	case session.FlowBroadcast:
		return d.stepBroadcast(ctx, ev, sess)
	case session.FlowDirectMessage:
		return d.stepDirectMessage(ctx, ev, sess)
	}
	d.logger.Warn("dropping session with unknown flow", slog.String("flow", string(sess.Flow)))
	d.endSession(ctx, ev.User.ID)
	return false
}

// cancel ends the active wizard from /cancel or the relay Back button
func (d *Dispatcher) cancel(ctx context.Context, ev Event, sess *session.Session) {
	d.endSession(ctx, ev.User.ID)
	if sess.Flow == session.FlowRelay {
		d.reply(ctx, ev, textRelayCancelled, mainKeyboard(d.policy.IsPrivileged(ev.User.ID)))
		return
	}
	d.reply(ctx, ev, cancelText(sess.Flow), nil)
	d.showAdminPanel(ctx, ev)
}

func cancelText(flow session.Flow) string {
	switch flow {
	case session.FlowStatus:
		return textStatusCancelled
	case session.FlowSecretMission:
		return textSecretCancelled
	case session.FlowBroadcast:
		return textBroadcastCancelled
	case session.FlowDirectMessage:
		return textDMCancelled
	case session.FlowRelay:
		return textRelayCancelled
	}
	return textActionCancelled
}

// cancelFromButton ends the active wizard from its cancel payload
func (d *Dispatcher) cancelFromButton(ctx context.Context, ev Event, text string) {
	d.endSession(ctx, ev.User.ID)
	d.editCallback(ctx, ev, text, nil)
	d.showAdminPanel(ctx, ev)
}

// Sessions

func (d *Dispatcher) activeSession(ctx context.Context, userID model.PlayerID) *session.Session {
	sess, err := d.sessions.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			d.logger.Error("error loading session", slog.Int64("user_id", int64(userID)), slog.String("error", err.Error()))
		}
		return nil
	}
	return sess
}

func (d *Dispatcher) saveSession(ctx context.Context, sess *session.Session) {
	if err := d.sessions.Save(ctx, sess); err != nil {
		d.logger.Error("error saving session", slog.Int64("user_id", int64(sess.UserID)), slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) endSession(ctx context.Context, userID model.PlayerID) {
	if err := d.sessions.Delete(ctx, userID); err != nil {
		d.logger.Error("error deleting session", slog.Int64("user_id", int64(userID)), slog.String("error", err.Error()))
	}
}

// Replies

func (d *Dispatcher) reply(ctx context.Context, ev Event, text string, kb messenger.Keyboard) bool {
	return d.notifier.BestEffort(ctx, messenger.Message{ChatID: ev.ChatID, Text: text, Keyboard: kb})
}

func (d *Dispatcher) replyMarkdown(ctx context.Context, ev Event, text string, kb messenger.Keyboard) bool {
	return d.notifier.BestEffort(ctx, messenger.Message{ChatID: ev.ChatID, Text: text, ParseMode: messenger.ParseMarkdown, Keyboard: kb})
}

// notify sends an unsolicited message to a player
func (d *Dispatcher) notify(ctx context.Context, id model.PlayerID, text string, mode messenger.ParseMode) bool {
	return d.notifier.BestEffort(ctx, messenger.Message{ChatID: int64(id), Text: text, ParseMode: mode})
}

// editCallback rewrites the message that carried the pressed button
func (d *Dispatcher) editCallback(ctx context.Context, ev Event, text string, kb messenger.InlineKeyboard) {
	d.notifier.Edit(ctx, ev.ChatID, ev.MessageID, text, kb)
}

func (d *Dispatcher) ack(ctx context.Context, ev Event) {
	d.notifier.Answer(ctx, ev.CallbackID, "", false)
}

func (d *Dispatcher) showAdminPanel(ctx context.Context, ev Event) {
	d.reply(ctx, ev, textAdminPanel, adminKeyboard())
}
