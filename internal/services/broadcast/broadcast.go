// Package broadcast fans a game master announcement out to a player segment.
package broadcast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
)

// DefaultSender replaces the alias "default"
const DefaultSender = "Game Master"

// DefaultRate is the default send pace in messages per second
const DefaultRate = 25

// Target is a player segment
type Target string

const (
	TargetAll      Target = "all"
	TargetActive   Target = "active"
	TargetInactive Target = "inactive"
)

// ParseTarget accepts the payload form of a target
func ParseTarget(s string) (Target, bool) {
	switch t := Target(s); t {
	case TargetAll, TargetActive, TargetInactive:
		return t, true
	}
	return "", false
}

// Label is the preview form of the target
func (t Target) Label() string {
	switch t {
	case TargetAll:
		return "All"
	case TargetActive:
		return "Active"
	case TargetInactive:
		return "Inactive"
	}
	return "Unknown"
}

// Select returns the ids of the players in the segment, in input order
func Select(players []*model.Player, t Target) []model.PlayerID {
	var ids []model.PlayerID
	for _, p := range players {
		if t == TargetAll || (t == TargetActive && p.IsActive) || (t == TargetInactive && !p.IsActive) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SenderAlias resolves the alias typed by the admin
func SenderAlias(input string) string {
	if strings.EqualFold(input, "default") {
		return DefaultSender
	}
	return input
}

// Format renders the announcement as delivered to players
func Format(sender, body string) string {
	return fmt.Sprintf("📢 **%s:**\n\n%s", sender, body)
}

// Service paces announcement sends
type Service struct {
	messenger messenger.Messenger
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a broadcaster sending at most perSecond messages per second.
// A non-positive rate disables pacing.
func New(m messenger.Messenger, perSecond float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Service{
		messenger: m,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Send delivers text to every recipient once and returns how many sends
// succeeded. Failures are logged and skipped; a cancelled context stops the
// fan-out early.
func (s *Service) Send(ctx context.Context, recipients []model.PlayerID, text string) int {
	sent := 0
	for _, id := range recipients {
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn("broadcast interrupted", slog.Int("sent", sent), slog.String("error", err.Error()))
			break
		}
		err := s.messenger.Send(ctx, messenger.Message{
			ChatID:    int64(id),
			Text:      text,
			ParseMode: messenger.ParseMarkdown,
		})
		if err != nil {
			s.logger.Error("failed broadcast", slog.Int64("player_id", int64(id)), slog.String("error", err.Error()))
			continue
		}
		sent++
	}
	s.logger.Info("broadcast finished", slog.Int("sent", sent), slog.Int("targets", len(recipients)))
	return sent
}
