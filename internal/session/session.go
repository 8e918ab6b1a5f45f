// Package session holds the scratch state of in-progress wizards, one
// session per user.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/eventide-gm/internal/model"
)

// DefaultTTL is how long an idle wizard survives
const DefaultTTL = 300 * time.Second

// ErrNotFound is returned when the user has no live session
var ErrNotFound = errors.New("session not found")

// Flow identifies which wizard a session belongs to
type Flow string

const (
	FlowRelay         Flow = "relay"
	FlowActivation    Flow = "activation"
	FlowStatus        Flow = "status"
	FlowSecretMission Flow = "secret_mission"
	FlowBroadcast     Flow = "broadcast"
	FlowDirectMessage Flow = "direct_message"
)

// State is a wizard step
type State string

const (
	StateChooseRecipient     State = "choose_recipient"
	StateTypeMessage         State = "type_message"
	StateSelectPlayer        State = "select_player"
	StateSelectStatus        State = "select_status"
	StateChooseSecretMission State = "choose_secret_mission"
	StateChooseTarget        State = "choose_target"
	StateTypeSender          State = "type_sender"
	StateTypeBody            State = "type_body"
	StateConfirm             State = "confirm"
)

// Session is one user's wizard in progress. Exactly one scratch field, the
// one matching Flow, is set.
type Session struct {
	UserID    model.PlayerID `json:"user_id"`
	Flow      Flow           `json:"flow"`
	State     State          `json:"state"`
	UpdatedAt time.Time      `json:"updated_at"`

	Relay         *RelayScratch         `json:"relay,omitempty"`
	Activation    *ActivationScratch    `json:"activation,omitempty"`
	Status        *StatusScratch        `json:"status,omitempty"`
	SecretMission *SecretMissionScratch `json:"secret_mission,omitempty"`
	Broadcast     *BroadcastScratch     `json:"broadcast,omitempty"`
	DirectMessage *DirectMessageScratch `json:"direct_message,omitempty"`
}

// New creates a session for flow starting at state, with an empty scratch
// struct for that flow
func New(userID model.PlayerID, flow Flow, state State) *Session {
	s := &Session{UserID: userID, Flow: flow, State: state}
	switch flow {
	case FlowRelay:
		s.Relay = &RelayScratch{}
	case FlowActivation:
		s.Activation = &ActivationScratch{}
	case FlowStatus:
		s.Status = &StatusScratch{}
	case FlowSecretMission:
		s.SecretMission = &SecretMissionScratch{}
	case FlowBroadcast:
		s.Broadcast = &BroadcastScratch{}
	case FlowDirectMessage:
		s.DirectMessage = &DirectMessageScratch{}
	}
	return s
}

// RecipientKind tells player recipients from NPC names
type RecipientKind string

const (
	RecipientPlayer RecipientKind = "player"
	RecipientNPC    RecipientKind = "npc"
)

// RelayScratch is the player message relay selection
type RelayScratch struct {
	RecipientName string         `json:"recipient_name,omitempty"`
	RecipientKind RecipientKind  `json:"recipient_kind,omitempty"`
	RecipientID   model.PlayerID `json:"recipient_id,omitempty"`
}

// ActivationScratch records whether the admin is activating or deactivating
type ActivationScratch struct {
	Action string `json:"action"`
}

// StatusScratch is the player whose status is being set
type StatusScratch struct {
	PlayerID model.PlayerID `json:"player_id,omitempty"`
}

// SecretMissionScratch is the player whose secret mission is being set
type SecretMissionScratch struct {
	PlayerID model.PlayerID `json:"player_id,omitempty"`
}

// BroadcastScratch accumulates the broadcast draft
type BroadcastScratch struct {
	Target string `json:"target,omitempty"`
	Sender string `json:"sender,omitempty"`
	Body   string `json:"body,omitempty"`
}

// DirectMessageScratch accumulates the direct message draft
type DirectMessageScratch struct {
	PlayerID model.PlayerID `json:"player_id,omitempty"`
	Sender   string         `json:"sender,omitempty"`
	Body     string         `json:"body,omitempty"`
}

// Store keeps sessions until they are deleted or sit idle longer than the TTL
type Store interface {
	Get(ctx context.Context, userID model.PlayerID) (*Session, error)
	// Save stores the session and restarts its idle timer
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID model.PlayerID) error
}
