package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mcoot/eventide-gm/internal/messenger"
)

// ErrSendFailed is returned for chats marked as failing
var ErrSendFailed = errors.New("send failed")

// Edit records an EditText call
type Edit struct {
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  messenger.InlineKeyboard
}

// Delete records a Delete call
type Delete struct {
	ChatID    int64
	MessageID int
}

// CallbackAnswer records an AnswerCallback call
type CallbackAnswer struct {
	ID    string
	Text  string
	Alert bool
}

// FakeMessenger records everything sent through it. Sends to chats marked
// with FailChat return ErrSendFailed and are not recorded.
type FakeMessenger struct {
	mu sync.Mutex

	Messages []messenger.Message
	Photos   []messenger.PhotoMessage
	Edits    []Edit
	Deletes  []Delete
	Answers  []CallbackAnswer

	failing    map[int64]bool
	failPhotos bool
	uploads    int
}

// NewFakeMessenger creates an empty recording messenger
func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{failing: make(map[int64]bool)}
}

// Ensure FakeMessenger implements the interface
var _ messenger.Messenger = (*FakeMessenger)(nil)

// FailChat makes sends to chatID fail
func (f *FakeMessenger) FailChat(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[chatID] = true
}

// FailPhotos makes every photo send fail
func (f *FakeMessenger) FailPhotos(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPhotos = fail
}

func (f *FakeMessenger) Send(ctx context.Context, msg messenger.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[msg.ChatID] {
		return fmt.Errorf("chat %d: %w", msg.ChatID, ErrSendFailed)
	}
	f.Messages = append(f.Messages, msg)
	return nil
}

// SendPhoto returns the cached handle for cached photos and a fresh
// "uploaded-N" handle otherwise
func (f *FakeMessenger) SendPhoto(ctx context.Context, msg messenger.PhotoMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPhotos || f.failing[msg.ChatID] {
		return "", fmt.Errorf("photo to chat %d: %w", msg.ChatID, ErrSendFailed)
	}
	f.Photos = append(f.Photos, msg)
	if msg.Photo.Cached() {
		return msg.Photo.FileID, nil
	}
	f.uploads++
	return fmt.Sprintf("uploaded-%d", f.uploads), nil
}

func (f *FakeMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string, kb messenger.InlineKeyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[chatID] {
		return ErrSendFailed
	}
	f.Edits = append(f.Edits, Edit{ChatID: chatID, MessageID: messageID, Text: text, Keyboard: kb})
	return nil
}

func (f *FakeMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deletes = append(f.Deletes, Delete{ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *FakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, CallbackAnswer{ID: callbackID, Text: text, Alert: alert})
	return nil
}

// To returns the messages sent to chatID, in order
func (f *FakeMessenger) To(chatID int64) []messenger.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []messenger.Message
	for _, m := range f.Messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Texts returns the texts sent to chatID, in order
func (f *FakeMessenger) Texts(chatID int64) []string {
	var out []string
	for _, m := range f.To(chatID) {
		out = append(out, m.Text)
	}
	return out
}

// LastTo returns the last message sent to chatID
func (f *FakeMessenger) LastTo(chatID int64) (messenger.Message, bool) {
	msgs := f.To(chatID)
	if len(msgs) == 0 {
		return messenger.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// EditTexts returns the texts of every edit, in order
func (f *FakeMessenger) EditTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Edits))
	for _, e := range f.Edits {
		out = append(out, e.Text)
	}
	return out
}

// Reset forgets everything recorded so far, keeping failure settings
func (f *FakeMessenger) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = nil
	f.Photos = nil
	f.Edits = nil
	f.Deletes = nil
	f.Answers = nil
}
