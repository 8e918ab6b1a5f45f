// Package config loads the bot configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mcoot/eventide-gm/internal/storage/file"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Log output formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the full bot configuration. Relative data paths resolve under DataDir.
type Config struct {
	BotToken string `env:"BOT_TOKEN"`
	AdminID  int64  `env:"DM_CHAT_ID"`

	DataDir            string `env:"DATA_DIR"                  envDefault:"."`
	LorePath           string `env:"LORE_FILE_PATH"            envDefault:"data/lore_data.json"`
	PlayersPath        string `env:"PLAYERS_FILE_PATH"         envDefault:"data/player_data.json"`
	MissionsPath       string `env:"MISSIONS_FILE_PATH"        envDefault:"data/missions_data.json"`
	SecretMissionsPath string `env:"SECRET_MISSIONS_FILE_PATH" envDefault:"data/secret_missions_data.json"`
	RecipientsPath     string `env:"RECIPIENTS_FILE_PATH"      envDefault:"data/recipients_data.json"`
	WelcomeImagePath   string `env:"WELCOME_IMAGE_PATH"        envDefault:"assets/character/lore/bg.png"`

	SessionStore string        `env:"SESSION_STORE" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL"     envDefault:"redis://localhost:6379"`
	SessionTTL   time.Duration `env:"SESSION_TTL"   envDefault:"300s"`

	HTTPAddr      string `env:"HTTP_ADDR"      envDefault:":8080"`
	WebhookURL    string `env:"WEBHOOK_URL"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	BroadcastRate float64 `env:"BROADCAST_RATE" envDefault:"25"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the .env files that exist (none is fine), then the environment.
// Variables already set in the environment win over .env values.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses configuration from vars instead of the process environment
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings needed to run the bot
func (c Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	if c.AdminID == 0 {
		errs = append(errs, errors.New("DM_CHAT_ID is required"))
	}
	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when SESSION_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.SessionStore))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.BroadcastRate < 0 {
		errs = append(errs, errors.New("BROADCAST_RATE cannot be negative"))
	}
	if c.WebhookURL != "" && !strings.HasPrefix(c.WebhookURL, "https://") {
		errs = append(errs, errors.New("WEBHOOK_URL must use https"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be %q or %q", LogFormatJSON, LogFormatText))
	}
	return errors.Join(errs...)
}

// Files returns the data document locations
func (c Config) Files() file.Config {
	return file.Config{
		LorePath:           c.resolve(c.LorePath),
		PlayersPath:        c.resolve(c.PlayersPath),
		MissionsPath:       c.resolve(c.MissionsPath),
		SecretMissionsPath: c.resolve(c.SecretMissionsPath),
		RecipientsPath:     c.resolve(c.RecipientsPath),
	}
}

func (c Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// Logger builds the application logger writing to w
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
