// Package config reads flashdeck settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/example/flashdeck/internal/deck"
	"github.com/example/flashdeck/internal/pager"
	"github.com/example/flashdeck/internal/playback"
)

// Config represents the configuration for all flashdeck commands
type Config struct {
	// Telegram bot token, required only by the bot command
	TelegramToken string
	// Users allowed to import datasets through the bot
	AdminUserIDs []int64

	DatabaseDriver string
	DatabaseURL    string

	// none, normal or debug
	LogLevel string

	// Text-to-speech program, with optional argument template
	SpeechCommand string
	SpeechRate    float64

	// Sessions untouched for this long are closed
	SessionIdleTimeout time.Duration

	BlockSize    int
	RevealMode   pager.Mode
	WindowPolicy pager.Policy
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DatabaseDriver:     "sqlite3",
		DatabaseURL:        "data/flashdeck.db",
		LogLevel:           "normal",
		SpeechCommand:      "espeak-ng",
		SpeechRate:         playback.DefaultRate,
		SessionIdleTimeout: 30 * time.Minute,
		BlockSize:          deck.DefaultBlockSize,
		RevealMode:         pager.RevealOnly,
		WindowPolicy:       pager.Shrink,
	}
}

// Load reads .env files (the default one when none are named) and then the
// process environment. Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a configuration from a variable lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	var errs []error
	fail := func(name string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	if v, ok := get("TELEGRAM_BOT_TOKEN"); ok {
		cfg.TelegramToken = v
	}
	if v, ok := get("ADMIN_USER_IDS"); ok {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				fail("ADMIN_USER_IDS", err)
				continue
			}
			cfg.AdminUserIDs = append(cfg.AdminUserIDs, id)
		}
	}
	if v, ok := get("DATABASE_DRIVER"); ok {
		switch v {
		case "sqlite3", "postgres":
			cfg.DatabaseDriver = v
		default:
			fail("DATABASE_DRIVER", fmt.Errorf("unsupported driver %q", v))
		}
	}
	if v, ok := get("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		switch v {
		case "none", "normal", "debug":
			cfg.LogLevel = v
		default:
			fail("LOG_LEVEL", fmt.Errorf("unknown level %q", v))
		}
	}
	if v, ok := get("SPEECH_COMMAND"); ok {
		cfg.SpeechCommand = v
	}
	if v, ok := get("SPEECH_RATE"); ok {
		r, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			fail("SPEECH_RATE", err)
		case r <= 0:
			fail("SPEECH_RATE", fmt.Errorf("rate must be positive, got %v", r))
		default:
			cfg.SpeechRate = r
		}
	}
	if v, ok := get("SESSION_IDLE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			fail("SESSION_IDLE_TIMEOUT", err)
		case d <= 0:
			fail("SESSION_IDLE_TIMEOUT", fmt.Errorf("timeout must be positive, got %v", d))
		default:
			cfg.SessionIdleTimeout = d
		}
	}
	if v, ok := get("BLOCK_SIZE"); ok {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			fail("BLOCK_SIZE", err)
		case n <= 0:
			fail("BLOCK_SIZE", fmt.Errorf("block size must be positive, got %d", n))
		default:
			cfg.BlockSize = n
		}
	}
	if v, ok := get("REVEAL_MODE"); ok {
		m, err := pager.ParseMode(v)
		if err != nil {
			fail("REVEAL_MODE", err)
		} else {
			cfg.RevealMode = m
		}
	}
	if v, ok := get("WINDOW_POLICY"); ok {
		p, err := pager.ParsePolicy(v)
		if err != nil {
			fail("WINDOW_POLICY", err)
		} else {
			cfg.WindowPolicy = p
		}
	}

	if err := multierr.Combine(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsAdmin reports whether the Telegram user may manage datasets.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
