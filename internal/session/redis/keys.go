package redis

import (
	"fmt"

	"github.com/mcoot/eventide-gm/internal/model"
)

// Key prefix for all bot data
const keyPrefix = "eventide"

// sessionKey returns the Redis key for a user's wizard session
func sessionKey(userID model.PlayerID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, userID)
}
