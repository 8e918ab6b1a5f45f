package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/eventide-gm/internal/dependencies/clock"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/session"
)

// Store is a Redis-backed session store. Expiry is left to Redis key TTLs.
type Store struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clock
}

// New connects to Redis and creates a session store
func New(cfg Config, clk clock.Clock) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg, clk), nil
}

// NewWithClient creates a session store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, clk clock.Clock) *Store {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	return &Store{
		client: client,
		cfg:    cfg,
		clock:  clk,
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, userID model.PlayerID) (*session.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	sess.UpdatedAt = s.clock.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.UserID), data, s.cfg.SessionTTL).Err()
}

func (s *Store) Delete(ctx context.Context, userID model.PlayerID) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}
