package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/eventide-gm/internal/bot"
	"github.com/mcoot/eventide-gm/internal/model"
)

// DefaultPollTimeout is the long-poll wait in seconds
const DefaultPollTimeout = 30

// Handler consumes bot events
type Handler interface {
	Handle(ctx context.Context, ev bot.Event)
}

// EventFromUpdate converts an update into a bot event. Only text messages
// and button presses become events.
func EventFromUpdate(u tgbotapi.Update) (bot.Event, bool) {
	if cq := u.CallbackQuery; cq != nil && cq.From != nil {
		ev := bot.Event{
			User:       user(cq.From),
			ChatID:     cq.From.ID,
			CallbackID: cq.ID,
			Payload:    cq.Data,
		}
		if cq.Message != nil {
			ev.MessageID = cq.Message.MessageID
			if cq.Message.Chat != nil {
				ev.ChatID = cq.Message.Chat.ID
			}
		}
		return ev, true
	}

	msg := u.Message
	if msg == nil || msg.From == nil || msg.Text == "" || msg.Chat == nil {
		return bot.Event{}, false
	}
	return bot.Event{
		User:      user(msg.From),
		ChatID:    msg.Chat.ID,
		Text:      msg.Text,
		MessageID: msg.MessageID,
	}, true
}

func user(u *tgbotapi.User) bot.User {
	return bot.User{ID: model.PlayerID(u.ID), FirstName: u.FirstName, Username: u.UserName}
}

// DecodeUpdate reads one update posted to the webhook
func DecodeUpdate(r io.Reader) (tgbotapi.Update, error) {
	var u tgbotapi.Update
	if err := json.NewDecoder(r).Decode(&u); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("decode update: %w", err)
	}
	return u, nil
}

// Serial passes events to the wrapped handler one at a time, whichever
// goroutine delivers them
type Serial struct {
	mu sync.Mutex
	h  Handler
}

// NewSerial wraps h
func NewSerial(h Handler) *Serial {
	return &Serial{h: h}
}

// Handle blocks until any event in progress has finished
func (s *Serial) Handle(ctx context.Context, ev bot.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Handle(ctx, ev)
}

// Poll long-polls for updates and hands each event to h in arrival order.
// It returns when ctx is cancelled or the update channel closes.
func (c *Client) Poll(ctx context.Context, h Handler, timeout int) error {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := c.api.GetUpdatesChan(cfg)
	defer c.api.StopReceivingUpdates()

	c.logger.Info("polling for updates", slog.Int("timeout_seconds", timeout))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("polling stopped")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := EventFromUpdate(u)
			if !ok {
				c.logger.Debug("ignoring update", slog.Int("update_id", u.UpdateID))
				continue
			}
			h.Handle(ctx, ev)
		}
	}
}
