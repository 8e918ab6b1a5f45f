// Package access decides who may use privileged and player-only features.
package access

import "github.com/mcoot/eventide-gm/internal/model"

// PlayerLookup finds player records
type PlayerLookup interface {
	Player(id model.PlayerID) (*model.Player, bool)
}

// Policy answers permission questions for a single configured admin
type Policy struct {
	adminID model.PlayerID
	players PlayerLookup
}

// New creates a policy for the admin account adminID
func New(adminID model.PlayerID, players PlayerLookup) *Policy {
	return &Policy{adminID: adminID, players: players}
}

// AdminID returns the privileged account id
func (p *Policy) AdminID() model.PlayerID {
	return p.adminID
}

// IsPrivileged reports whether id is the game master
func (p *Policy) IsPrivileged(id model.PlayerID) bool {
	return id == p.adminID
}

// IsActivePlayer reports whether id is a registered, activated player
func (p *Policy) IsActivePlayer(id model.PlayerID) bool {
	pl, ok := p.players.Player(id)
	return ok && pl.IsActive
}

// CanViewContent reports whether id may read lore, sheets and missions
func (p *Policy) CanViewContent(id model.PlayerID) bool {
	return p.IsPrivileged(id) || p.IsActivePlayer(id)
}
