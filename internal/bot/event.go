// Package bot turns chat events into game actions: commands, reply keyboard
// buttons, callback payloads and wizard steps.
package bot

import (
	"strings"

	"github.com/mcoot/eventide-gm/internal/model"
)

// User is the account behind an event
type User struct {
	ID        model.PlayerID
	FirstName string
	Username  string
}

// Event is one inbound update: a text message or a callback button press
type Event struct {
	User   User
	ChatID int64

	// Text is the message text; empty for callbacks
	Text string
	// MessageID is the message that was sent, or for callbacks the message
	// carrying the pressed button
	MessageID int

	// CallbackID is set for button presses
	CallbackID string
	Payload    string
}

// IsCallback reports whether the event is a button press
func (e Event) IsCallback() bool {
	return e.CallbackID != ""
}

// Command splits "/name@bot arg1 arg2" into the lowercased name and the raw
// argument string
func (e Event) Command() (name string, args string, ok bool) {
	if e.IsCallback() || !strings.HasPrefix(e.Text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(e.Text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// Args splits the command arguments on whitespace
func (e Event) Args() []string {
	_, args, ok := e.Command()
	if !ok {
		return nil
	}
	return strings.Fields(args)
}
