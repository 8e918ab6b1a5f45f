package storage

import (
	"context"
	"errors"

	"github.com/mcoot/eventide-gm/internal/model"
)

// ErrNotExist is returned by Load operations when a document has never been written
var ErrNotExist = errors.New("document does not exist")

// Storage persists the game documents. Each document is read and written whole.
type Storage interface {
	// Lore document
	LoadLore(ctx context.Context) (*model.LoreTree, error)
	SaveLore(ctx context.Context, lore *model.LoreTree) error

	// Player document (a list, re-keyed by id by the caller)
	LoadPlayers(ctx context.Context) ([]*model.Player, error)
	SavePlayers(ctx context.Context, players []*model.Player) error

	// Mission documents
	LoadMissions(ctx context.Context) (*model.Missions, error)
	SaveMissions(ctx context.Context, missions *model.Missions) error
	LoadSecretMissions(ctx context.Context) (*model.SecretMissions, error)
	SaveSecretMissions(ctx context.Context, missions *model.SecretMissions) error

	// NPC recipient roster
	LoadRecipients(ctx context.Context) ([]string, error)
	SaveRecipients(ctx context.Context, recipients []string) error
}
