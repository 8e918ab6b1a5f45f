package bot

import (
	"context"
	"log/slog"

	"github.com/mcoot/eventide-gm/internal/messenger"
)

// Notifier is the single place outbound sends fail softly. A failed send is
// logged and reported to the caller; it never aborts the operation in progress.
type Notifier struct {
	messenger messenger.Messenger
	logger    *slog.Logger
}

// NewNotifier wraps m
func NewNotifier(m messenger.Messenger, logger *slog.Logger) *Notifier {
	return &Notifier{messenger: m, logger: logger}
}

// Send sends msg once, logging and returning any failure
func (n *Notifier) Send(ctx context.Context, msg messenger.Message) error {
	if err := n.messenger.Send(ctx, msg); err != nil {
		n.logger.Warn("failed to send message", slog.Int64("chat_id", msg.ChatID), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// BestEffort sends msg once and reports whether it was delivered
func (n *Notifier) BestEffort(ctx context.Context, msg messenger.Message) bool {
	return n.Send(ctx, msg) == nil
}

// Photo sends an image once and returns the transport handle on success
func (n *Notifier) Photo(ctx context.Context, msg messenger.PhotoMessage) (string, bool) {
	fileID, err := n.messenger.SendPhoto(ctx, msg)
	if err != nil {
		n.logger.Error("failed to send photo",
			slog.Int64("chat_id", msg.ChatID),
			slog.String("photo", msg.Photo.String()),
			slog.String("error", err.Error()))
		return "", false
	}
	return fileID, true
}

// Edit replaces the text (and inline keyboard) of an earlier message
func (n *Notifier) Edit(ctx context.Context, chatID int64, messageID int, text string, kb messenger.InlineKeyboard) bool {
	if err := n.messenger.EditText(ctx, chatID, messageID, text, kb); err != nil {
		n.logger.Warn("failed to edit message", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Delete removes a message
func (n *Notifier) Delete(ctx context.Context, chatID int64, messageID int) bool {
	if err := n.messenger.Delete(ctx, chatID, messageID); err != nil {
		n.logger.Warn("failed to delete message", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Answer acknowledges a button press, optionally with a popup
func (n *Notifier) Answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := n.messenger.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		n.logger.Debug("failed to answer callback", slog.String("error", err.Error()))
	}
}
