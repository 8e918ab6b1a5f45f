package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/eventide-gm/internal/bot"
	"github.com/mcoot/eventide-gm/internal/config"
	"github.com/mcoot/eventide-gm/internal/dependencies/clock"
	"github.com/mcoot/eventide-gm/internal/dependencies/random"
	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/services/access"
	"github.com/mcoot/eventide-gm/internal/services/broadcast"
	"github.com/mcoot/eventide-gm/internal/services/lore"
	"github.com/mcoot/eventide-gm/internal/session"
	sessionmemory "github.com/mcoot/eventide-gm/internal/session/memory"
	sessionredis "github.com/mcoot/eventide-gm/internal/session/redis"
	"github.com/mcoot/eventide-gm/internal/storage"
	"github.com/mcoot/eventide-gm/internal/storage/file"
	"github.com/mcoot/eventide-gm/internal/store"
	"github.com/mcoot/eventide-gm/internal/transport/telegram"
)

// webhookSecretLength is the size of a generated webhook path secret
const webhookSecretLength = 32

// App contains all wired application components
type App struct {
	Settings config.Config

	// Storage
	Storage  storage.Storage
	Store    *store.Store
	Sessions session.Store

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Messenger messenger.Messenger
	// Telegram is nil when the messenger was supplied by the caller
	Telegram *telegram.Client

	// Services
	Policy     *access.Policy
	Lore       *lore.Navigator
	Broadcast  *broadcast.Service
	Dispatcher *bot.Dispatcher

	// Events is the dispatcher behind a lock; poller and webhook both feed it
	Events telegram.Handler

	WebhookSecret string
	StartedAt     time.Time

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Settings is the loaded bot configuration
	Settings config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Messenger replaces the Telegram client (optional)
	Messenger messenger.Messenger
}

// New creates a new application with all dependencies wired and the data
// documents loaded
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	settings := cfg.Settings

	clk := clock.New()
	rnd := random.New()

	var sessions session.Store
	var closers []func() error
	switch settings.SessionStore {
	case "", config.SessionStoreMemory:
		sessions = sessionmemory.New(clk, settings.SessionTTL)
	case config.SessionStoreRedis:
		redisCfg := sessionredis.DefaultConfig()
		redisCfg.URL = settings.RedisURL
		redisCfg.SessionTTL = settings.SessionTTL
		redisStore, err := sessionredis.New(redisCfg, clk)
		if err != nil {
			return nil, fmt.Errorf("connect session store: %w", err)
		}
		sessions = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid SessionStore: must be 'memory' or 'redis'")
	}

	var tg *telegram.Client
	msgr := cfg.Messenger
	if msgr == nil {
		if err := telegram.UseLogger(logger); err != nil {
			return nil, err
		}
		client, err := telegram.New(settings.BotToken, logger)
		if err != nil {
			return nil, err
		}
		tg, msgr = client, client
	}

	app := newWithDependencies(settings, file.New(settings.Files()), sessions, msgr, clk, rnd, logger)
	app.Telegram = tg
	app.closers = closers

	if err := app.Store.Load(ctx); err != nil {
		// A corrupt document leaves its table empty; the bot still starts.
		logger.Error("data documents failed to load", slog.String("error", err.Error()))
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	settings config.Config,
	st storage.Storage,
	sessions session.Store,
	msgr messenger.Messenger,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	gameStore := store.New(st, logger)
	policy := access.New(model.PlayerID(settings.AdminID), gameStore)
	nav := lore.New(gameStore, settings.DataDir, logger)
	broadcaster := broadcast.New(msgr, settings.BroadcastRate, logger)
	dispatcher := bot.New(gameStore, policy, sessions, msgr, nav, broadcaster, bot.Config{
		BaseDir:          settings.DataDir,
		WelcomeImagePath: settings.WelcomeImagePath,
	}, logger)

	secret := settings.WebhookSecret
	if secret == "" {
		secret = rnd.String(webhookSecretLength, random.URLSafe)
	}

	return &App{
		Settings:      settings,
		Storage:       st,
		Store:         gameStore,
		Sessions:      sessions,
		Clock:         clk,
		Random:        rnd,
		Messenger:     msgr,
		Policy:        policy,
		Lore:          nav,
		Broadcast:     broadcaster,
		Dispatcher:    dispatcher,
		Events:        telegram.NewSerial(dispatcher),
		WebhookSecret: secret,
		StartedAt:     clk.Now(),
	}
}

// Close releases external connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
