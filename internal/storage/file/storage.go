package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/model/ordered"
	"github.com/mcoot/eventide-gm/internal/storage"
)

// Storage keeps each document in its own pretty-printed JSON file.
// Saves overwrite the file in place; a crash mid-write can leave it truncated.
type Storage struct {
	cfg Config
}

// New creates a file-backed storage
func New(cfg Config) *Storage {
	return &Storage{cfg: cfg}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Config returns the file layout in use
func (s *Storage) Config() Config {
	return s.cfg
}

// Lore document

func (s *Storage) LoadLore(ctx context.Context) (*model.LoreTree, error) {
	lore := model.NewLoreTree()
	if err := readJSON(s.cfg.LorePath, lore); err != nil {
		return nil, err
	}
	return lore, nil
}

func (s *Storage) SaveLore(ctx context.Context, lore *model.LoreTree) error {
	return writeJSON(s.cfg.LorePath, lore)
}

// Player document

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.Player, error) {
	var players []*model.Player
	if err := readJSON(s.cfg.PlayersPath, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (s *Storage) SavePlayers(ctx context.Context, players []*model.Player) error {
	if players == nil {
		players = []*model.Player{}
	}
	return writeJSON(s.cfg.PlayersPath, players)
}

// Mission documents

func (s *Storage) LoadMissions(ctx context.Context) (*model.Missions, error) {
	missions := ordered.New[*model.Mission]()
	if err := readJSON(s.cfg.MissionsPath, missions); err != nil {
		return nil, err
	}
	return missions, nil
}

func (s *Storage) SaveMissions(ctx context.Context, missions *model.Missions) error {
	return writeJSON(s.cfg.MissionsPath, missions)
}

func (s *Storage) LoadSecretMissions(ctx context.Context) (*model.SecretMissions, error) {
	missions := ordered.New[*model.SecretMission]()
	if err := readJSON(s.cfg.SecretMissionsPath, missions); err != nil {
		return nil, err
	}
	return missions, nil
}

func (s *Storage) SaveSecretMissions(ctx context.Context, missions *model.SecretMissions) error {
	return writeJSON(s.cfg.SecretMissionsPath, missions)
}

// Recipient roster

func (s *Storage) LoadRecipients(ctx context.Context) ([]string, error) {
	var recipients []string
	if err := readJSON(s.cfg.RecipientsPath, &recipients); err != nil {
		return nil, err
	}
	return recipients, nil
}

func (s *Storage) SaveRecipients(ctx context.Context, recipients []string) error {
	if recipients == nil {
		recipients = []string{}
	}
	return writeJSON(s.cfg.RecipientsPath, recipients)
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, storage.ErrNotExist)
		}
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, value any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
