// Package messenger is the outbound side of the chat transport: messages,
// keyboards, photos and callback answers.
package messenger

import (
	"context"
	"unicode/utf8"

	"github.com/mcoot/eventide-gm/internal/media"
)

// ParseMode selects how the transport formats message text
type ParseMode string

const (
	ParseNone     ParseMode = ""
	ParseMarkdown ParseMode = "Markdown"
	ParseHTML     ParseMode = "HTML"
)

// Keyboard is attached to a message. It is one of InlineKeyboard,
// ReplyKeyboard or RemoveKeyboard.
type Keyboard interface {
	keyboard()
}

// Button is an inline button carrying a callback payload
type Button struct {
	Label   string
	Payload string
}

// InlineKeyboard is a grid of callback buttons attached to a message
type InlineKeyboard [][]Button

// ReplyKeyboard is a grid of canned replies shown instead of the text keyboard
type ReplyKeyboard struct {
	Rows    [][]string
	OneTime bool
}

// RemoveKeyboard hides any reply keyboard
type RemoveKeyboard struct{}

func (InlineKeyboard) keyboard() {}
func (ReplyKeyboard) keyboard()  {}
func (RemoveKeyboard) keyboard() {}

// Column lays buttons out one per row
func Column(buttons ...Button) InlineKeyboard {
	kb := make(InlineKeyboard, 0, len(buttons))
	for _, b := range buttons {
		kb = append(kb, []Button{b})
	}
	return kb
}

// Message is an outbound text message
type Message struct {
	ChatID    int64
	Text      string
	ParseMode ParseMode
	Keyboard  Keyboard
}

// PhotoMessage is an outbound image with an optional caption
type PhotoMessage struct {
	ChatID    int64
	Photo     media.Photo
	Caption   string
	ParseMode ParseMode
	Keyboard  Keyboard
}

// Messenger sends to chats
type Messenger interface {
	Send(ctx context.Context, msg Message) error
	// SendPhoto returns the transport handle of the uploaded image so later
	// sends can reuse it
	SendPhoto(ctx context.Context, msg PhotoMessage) (fileID string, err error)
	EditText(ctx context.Context, chatID int64, messageID int, text string, kb InlineKeyboard) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// MaxPayloadLen is the longest callback payload the bot emits
const MaxPayloadLen = 60

// TruncatePayload cuts payload to MaxPayloadLen bytes without splitting a rune
func TruncatePayload(payload string) string {
	if len(payload) <= MaxPayloadLen {
		return payload
	}
	cut := MaxPayloadLen
	for cut > 0 && !utf8.RuneStart(payload[cut]) {
		cut--
	}
	return payload[:cut]
}
