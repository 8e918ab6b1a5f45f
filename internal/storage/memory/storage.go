package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/model/ordered"
	"github.com/mcoot/eventide-gm/internal/storage"
)

// Document names used for save counters and failure injection
const (
	DocLore           = "lore"
	DocPlayers        = "players"
	DocMissions       = "missions"
	DocSecretMissions = "secret_missions"
	DocRecipients     = "recipients"
)

// ErrInjected is returned by saves to a document marked as failing
var ErrInjected = errors.New("injected save failure")

// Storage is an in-memory implementation of the storage interface.
// Documents are kept encoded so callers never share memory with it.
type Storage struct {
	mu sync.RWMutex

	docs    map[string][]byte
	saves   map[string]int
	failing map[string]bool
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		docs:    make(map[string][]byte),
		saves:   make(map[string]int),
		failing: make(map[string]bool),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// FailSaves makes every later save of doc fail (or succeed again when fail is false)
func (s *Storage) FailSaves(doc string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[doc] = fail
}

// SaveCount returns how many successful saves doc has received
func (s *Storage) SaveCount(doc string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves[doc]
}

// Raw returns the encoded document, or nil when it was never written
func (s *Storage) Raw(doc string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[doc]
}

// Seed stores an encoded document without counting it as a save
func (s *Storage) Seed(doc string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc] = data
}

// Lore document

func (s *Storage) LoadLore(ctx context.Context) (*model.LoreTree, error) {
	lore := model.NewLoreTree()
	if err := s.load(DocLore, lore); err != nil {
		return nil, err
	}
	return lore, nil
}

func (s *Storage) SaveLore(ctx context.Context, lore *model.LoreTree) error {
	return s.save(DocLore, lore)
}

// Player document

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.Player, error) {
	var players []*model.Player
	if err := s.load(DocPlayers, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (s *Storage) SavePlayers(ctx context.Context, players []*model.Player) error {
	return s.save(DocPlayers, players)
}

// Mission documents

func (s *Storage) LoadMissions(ctx context.Context) (*model.Missions, error) {
	missions := ordered.New[*model.Mission]()
	if err := s.load(DocMissions, missions); err != nil {
		return nil, err
	}
	return missions, nil
}

func (s *Storage) SaveMissions(ctx context.Context, missions *model.Missions) error {
	return s.save(DocMissions, missions)
}

func (s *Storage) LoadSecretMissions(ctx context.Context) (*model.SecretMissions, error) {
	missions := ordered.New[*model.SecretMission]()
	if err := s.load(DocSecretMissions, missions); err != nil {
		return nil, err
	}
	return missions, nil
}

func (s *Storage) SaveSecretMissions(ctx context.Context, missions *model.SecretMissions) error {
	return s.save(DocSecretMissions, missions)
}

// Recipient roster

func (s *Storage) LoadRecipients(ctx context.Context) ([]string, error) {
	var recipients []string
	if err := s.load(DocRecipients, &recipients); err != nil {
		return nil, err
	}
	return recipients, nil
}

func (s *Storage) SaveRecipients(ctx context.Context, recipients []string) error {
	return s.save(DocRecipients, recipients)
}

func (s *Storage) load(doc string, target any) error {
	s.mu.RLock()
	data, ok := s.docs[doc]
	s.mu.RUnlock()
	if !ok {
		return storage.ErrNotExist
	}
	return json.Unmarshal(data, target)
}

func (s *Storage) save(doc string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[doc] {
		return ErrInjected
	}
	data, err := ordered.Marshal(value)
	if err != nil {
		return err
	}
	s.docs[doc] = data
	s.saves[doc]++
	return nil
}
