// Package telegram adapts the Telegram Bot API to the messenger interface
// and turns Telegram updates into bot events.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/eventide-gm/internal/media"
	"github.com/mcoot/eventide-gm/internal/messenger"
)

// API is the subset of *tgbotapi.BotAPI the client uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Ensure the real client satisfies API
var _ API = (*tgbotapi.BotAPI)(nil)

// Client sends messages through the Bot API
type Client struct {
	api    API
	logger *slog.Logger
}

// Ensure Client implements the messenger interface
var _ messenger.Messenger = (*Client)(nil)

// New authenticates with token and returns a client
func New(token string, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	c := NewWithAPI(api, logger)
	c.logger.Info("connected to telegram", slog.String("username", api.Self.UserName))
	return c, nil
}

// NewWithAPI wraps an existing API implementation (useful for testing)
func NewWithAPI(api API, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{api: api, logger: logger}
}

func (c *Client) Send(ctx context.Context, msg messenger.Message) error {
	cfg := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	cfg.ParseMode = string(msg.ParseMode)
	cfg.ReplyMarkup = markup(msg.Keyboard)
	_, err := c.api.Send(cfg)
	return err
}

// SendPhoto returns the handle of the largest stored size, which later sends
// can reuse instead of uploading again
func (c *Client) SendPhoto(ctx context.Context, msg messenger.PhotoMessage) (string, error) {
	cfg := tgbotapi.NewPhoto(msg.ChatID, requestFile(msg.Photo))
	cfg.Caption = msg.Caption
	cfg.ParseMode = string(msg.ParseMode)
	cfg.ReplyMarkup = markup(msg.Keyboard)
	sent, err := c.api.Send(cfg)
	if err != nil {
		return "", err
	}
	if len(sent.Photo) == 0 {
		return "", nil
	}
	return sent.Photo[len(sent.Photo)-1].FileID, nil
}

func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, text string, kb messenger.InlineKeyboard) error {
	var cfg tgbotapi.EditMessageTextConfig
	if len(kb) > 0 {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, inlineMarkup(kb))
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	_, err := c.api.Request(cfg)
	return err
}

func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	_, err := c.api.Request(cb)
	return err
}

// SetWebhook registers url as the update endpoint
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	c.logger.Info("webhook registered")
	return nil
}

// DeleteWebhook switches the bot back to long polling
func (c *Client) DeleteWebhook() error {
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

func requestFile(p media.Photo) tgbotapi.RequestFileData {
	switch {
	case p.FileID != "":
		return tgbotapi.FileID(p.FileID)
	case p.URL != "":
		return tgbotapi.FileURL(p.URL)
	default:
		return tgbotapi.FilePath(p.Path)
	}
}

func markup(kb messenger.Keyboard) any {
	switch k := kb.(type) {
	case messenger.InlineKeyboard:
		if len(k) == 0 {
			return nil
		}
		return inlineMarkup(k)
	case messenger.ReplyKeyboard:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(k.Rows))
		for _, row := range k.Rows {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		m := tgbotapi.NewReplyKeyboard(rows...)
		m.ResizeKeyboard = true
		m.OneTimeKeyboard = k.OneTime
		return m
	case messenger.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(true)
	}
	return nil
}

func inlineMarkup(kb messenger.InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Payload))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
