package redis

import (
	"time"

	"github.com/mcoot/eventide-gm/internal/session"
)

// Config holds Redis connection and session expiry settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// SessionTTL is how long an untouched wizard session is kept
	SessionTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		SessionTTL:   session.DefaultTTL,
	}
}
