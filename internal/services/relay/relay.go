// Package relay decides how a player's message is routed according to the
// sender's game status.
package relay

import (
	"fmt"
	"sort"

	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/session"
)

// Sender replies
const (
	ReplyArrested      = "You are under arrest. All communication attempts are being monitored by ELLI. Await further instructions."
	ReplyHacked        = "Message sent - wait."
	ReplyDead          = "No response... silence on the airwaves..."
	ReplyDelivered     = "Message delivered. Please wait for a response."
	ReplyAdminFailed   = "Failed to send the message to the Game Master. Please try again later."
	ReplyForwardFailed = "The message was delivered to the Game Master, but could not be delivered to the player."
)

// Sender is the player sending a message. Name and Status fall back to the
// account first name and Undefined when the sender has no player record.
type Sender struct {
	ID     model.PlayerID
	Name   string
	Status model.Status
}

// SenderFor builds the sender from an optional player record
func SenderFor(id model.PlayerID, firstName string, p *model.Player) Sender {
	if p == nil {
		return Sender{ID: id, Name: firstName, Status: model.StatusUndefined}
	}
	return Sender{ID: id, Name: p.CharacterName, Status: p.GameStatus()}
}

// Recipient is the chosen destination. Active is set for a player recipient
// that may receive a forwarded copy.
type Recipient struct {
	Name     string
	Kind     session.RecipientKind
	PlayerID model.PlayerID
	Active   bool
}

// Forward is a copy of the message for a player recipient
type Forward struct {
	To   model.PlayerID
	Text string
}

// Plan is the full set of sends for one relayed message. The admin message
// is always sent first; Forward is only attempted after it succeeds.
type Plan struct {
	AdminText string
	Forward   *Forward
	Reply     string
	// Gated is true when the sender's status intercepted the message
	Gated bool
}

// NewPlan routes body from sender to recipient
func NewPlan(sender Sender, recipient Recipient, body string) Plan {
	switch sender.Status {
	case model.StatusArrested:
		return Plan{
			AdminText: fmt.Sprintf("ELLI ALERT: Arrested %s(ID:%s) attempted comm.\nTo:%s\nMsg:%s", sender.Name, sender.ID, recipient.Name, body),
			Reply:     ReplyArrested,
			Gated:     true,
		}
	case model.StatusHacked:
		return Plan{
			AdminText: fmt.Sprintf("TECHNOCRAT ALERT: Hacked %s(ID:%s) sent.\nOriginal To:%s\nIntercepted:%s", sender.Name, sender.ID, recipient.Name, body),
			Reply:     ReplyHacked,
			Gated:     true,
		}
	case model.StatusDead:
		return Plan{
			AdminText: fmt.Sprintf("INFO: DEAD Player %s(ID:%s) tried to send to %s: %s", sender.Name, sender.ID, recipient.Name, body),
			Reply:     ReplyDead,
			Gated:     true,
		}
	}

	plan := Plan{
		AdminText: fmt.Sprintf("--- Msg from %s(ID:%s,Status:%s) to %s ---\nMessage:\n%s", sender.Name, sender.ID, sender.Status, recipient.Name, body),
		Reply:     ReplyDelivered,
	}
	if recipient.Kind == session.RecipientPlayer && recipient.PlayerID != 0 && recipient.Active {
		plan.Forward = &Forward{
			To:   recipient.PlayerID,
			Text: fmt.Sprintf("Message from **%s**:\n\n%s", sender.Name, body),
		}
	}
	return plan
}

// Candidates returns the names a sender may address: every NPC plus every
// active player other than the sender, sorted
func Candidates(senderID model.PlayerID, players []*model.Player, npcs []string) []string {
	names := make([]string, 0, len(players)+len(npcs))
	names = append(names, npcs...)
	for _, p := range players {
		if p.ID != senderID && p.IsActive {
			names = append(names, p.DisplayName())
		}
	}
	sort.Strings(names)
	return names
}

// Resolve maps a chosen name back to a recipient. Any player's character
// name is accepted, not only the ones offered by Candidates; players win over
// NPCs with the same name.
func Resolve(name string, senderID model.PlayerID, players []*model.Player, npcs []string) (Recipient, bool) {
	for _, p := range players {
		if p.DisplayName() == name {
			return Recipient{Name: name, Kind: session.RecipientPlayer, PlayerID: p.ID, Active: Deliverable(senderID, p)}, true
		}
	}
	for _, n := range npcs {
		if n == name {
			return Recipient{Name: name, Kind: session.RecipientNPC}, true
		}
	}
	return Recipient{}, false
}

// Deliverable reports whether p may receive a forwarded copy from senderID
func Deliverable(senderID model.PlayerID, p *model.Player) bool {
	return p != nil && p.IsActive && p.ID != senderID
}
