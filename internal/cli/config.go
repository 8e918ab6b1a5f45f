package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mcoot/eventide-gm/internal/config"
	"github.com/mcoot/eventide-gm/internal/storage/file"
	"github.com/mcoot/eventide-gm/internal/store"
)

// Config holds CLI configuration
type Config struct {
	EnvFile   string
	DataDir   string
	ServerURL string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		EnvFile:   getEnvOrDefault("GMBOT_ENV_FILE", ".env"),
		ServerURL: getEnvOrDefault("GMBOT_SERVER", "http://localhost:8080"),
		Output:    "text",
		Verbose:   false,
	}
}

// Settings loads the bot configuration and applies the flag overrides
func (c *Config) Settings() (config.Config, error) {
	settings, err := config.Load(c.EnvFile)
	if err != nil {
		return config.Config{}, err
	}
	if c.DataDir != "" {
		settings.DataDir = c.DataDir
	}
	if c.Verbose {
		settings.LogLevel = "debug"
	}
	return settings, nil
}

// offlineLogger logs to w, errors only unless --verbose is set
func (c *Config) offlineLogger(w io.Writer) *slog.Logger {
	level := slog.LevelError
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore loads the data documents for offline administration. Documents
// that fail to decode are reported in the error; the store is still usable
// for reading what did load.
func (c *Config) openStore(ctx context.Context, stderr io.Writer) (*store.Store, file.Config, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, file.Config{}, err
	}
	files := settings.Files()
	st := store.New(file.New(files), c.offlineLogger(stderr))
	return st, files, st.Load(ctx)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
