package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/0xpratik010/tridev/go/internal/countdown"
	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/viewer"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	TimeZone       string   `env:"TIME_ZONE"`
	SlotsFile      string   `env:"SLOTS_FILE" envDefault:"config.yaml"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	AdminEmail        string        `env:"ADMIN_EMAIL"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	LoginMaxAttempts  int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow       time.Duration `env:"LOGIN_WINDOW" envDefault:"10m"`

	// header a trusted proxy sets with the client address, e.g. X-Forwarded-For
	TrustedClientIPHeader string `env:"TRUSTED_CLIENT_IP_HEADER"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	NATSURL            string        `env:"NATS_URL"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"30s"`
	OutboxListen       bool          `env:"OUTBOX_LISTEN" envDefault:"true"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.LoginMaxAttempts <= 0 {
		return Config{}, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive, got %d", cfg.LoginMaxAttempts)
	}
	if cfg.LoginWindow <= 0 {
		return Config{}, fmt.Errorf("LOGIN_WINDOW must be positive, got %s", cfg.LoginWindow)
	}
	return cfg, nil
}

// FileConfig is the optional slot presentation file.
type FileConfig struct {
	Slots     []viewer.SlotInfo `yaml:"slots"`
	Countdown countdown.Config  `yaml:"countdown"`
}

// loadFileConfig reads path. A missing file yields the default slots.
func loadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{Countdown: countdown.DefaultConfig()}
	if path == "" {
		cfg.Slots = viewer.DefaultSlots()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg.Slots = viewer.DefaultSlots()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validateSlots(cfg.Slots); err != nil {
		return nil, err
	}
	if len(cfg.Slots) == 0 {
		cfg.Slots = viewer.DefaultSlots()
	}
	return cfg, nil
}

func validateSlots(slots []viewer.SlotInfo) error {
	seen := make(map[models.Slot]bool, len(slots))
	for i := range slots {
		slot, err := models.ParseSlot(string(slots[i].Slot))
		if err != nil {
			return fmt.Errorf("slots[%d]: %w", i, err)
		}
		if seen[slot] {
			return fmt.Errorf("slots[%d]: duplicate slot %s", i, slot)
		}
		if strings.TrimSpace(slots[i].Title) == "" {
			return fmt.Errorf("slots[%d]: title is required", i)
		}
		seen[slot] = true
		slots[i].Slot = slot
	}
	return nil
}
