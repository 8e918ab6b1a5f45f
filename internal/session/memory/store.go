package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mcoot/eventide-gm/internal/dependencies/clock"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/session"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Store keeps sessions in process memory. Expired sessions are dropped
// lazily on the next read.
type Store struct {
	mu      sync.Mutex
	clock   clock.Clock
	ttl     time.Duration
	entries map[model.PlayerID]entry
}

// New creates an in-memory session store
func New(clk clock.Clock, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &Store{
		clock:   clk,
		ttl:     ttl,
		entries: make(map[model.PlayerID]entry),
	}
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, userID model.PlayerID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return nil, session.ErrNotFound
	}
	if !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, userID)
		return nil, session.ErrNotFound
	}

	var sess session.Session
	if err := json.Unmarshal(e.data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	sess.UpdatedAt = now
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.entries[sess.UserID] = entry{data: data, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
