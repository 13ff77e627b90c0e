package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/KRoperUK/nrg-gyms/internal/portal"
	"github.com/KRoperUK/nrg-gyms/internal/prefs"
)

// Config holds everything the CLI needs to talk to the portal.
type Config struct {
	Email          string
	Password       string
	BookingsPath   string
	ClubID         int64
	UpdateInterval time.Duration
	BaseURL        string
	LogLevel       string
	StatePath      string
}

const (
	defaultConfigPath     = "~/.config/nrggyms/config.toml"
	defaultLogLevel       = "info"
	defaultUpdateInterval = 3600 * time.Second
)

// MinUpdateInterval is the shortest refresh interval the portal is polled at.
const MinUpdateInterval = 300 * time.Second

// fileConfig mirrors the TOML keys; env tags let the environment override them.
type fileConfig struct {
	Email          string `toml:"email" env:"NRG_EMAIL"`
	Password       string `toml:"password" env:"NRG_PASSWORD"`
	BookingsPath   string `toml:"bookings_path" env:"NRG_BOOKINGS_PATH"`
	ClubID         int64  `toml:"club_id" env:"NRG_CLUB_ID"`
	UpdateInterval int    `toml:"update_interval" env:"NRG_UPDATE_INTERVAL"`
	BaseURL        string `toml:"base_url" env:"NRG_BASE_URL"`
	LogLevel       string `toml:"log_level" env:"NRG_LOG_LEVEL"`
	StatePath      string `toml:"state_path" env:"NRG_STATE_PATH"`
}

// Load reads the config file, falling back to defaults when it is missing,
// then applies NRG_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	if err := readFile(resolved, &raw); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return raw.normalize(), nil
}

func readFile(path string, raw *fileConfig) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (raw fileConfig) normalize() Config {
	cfg := Config{
		Email:        strings.TrimSpace(raw.Email),
		Password:     raw.Password,
		BookingsPath: strings.TrimSpace(raw.BookingsPath),
		ClubID:       raw.ClubID,
		BaseURL:      strings.TrimSpace(raw.BaseURL),
		LogLevel:     strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		StatePath:    strings.TrimSpace(raw.StatePath),
	}
	if cfg.ClubID < 0 {
		cfg.ClubID = 0
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = portal.DefaultBaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.StatePath == "" {
		cfg.StatePath = prefs.DefaultPath()
	}
	cfg.StatePath = mustExpand(cfg.StatePath)

	cfg.UpdateInterval = ClampInterval(time.Duration(raw.UpdateInterval) * time.Second)
	return cfg
}

// ClampInterval returns d raised to MinUpdateInterval, or the default
// interval when d is not positive.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return defaultUpdateInterval
	case d < MinUpdateInterval:
		return MinUpdateInterval
	}
	return d
}

// Validate reports missing credentials.
func (c Config) Validate() error {
	var missing []string
	if c.Email == "" {
		missing = append(missing, "email (NRG_EMAIL)")
	}
	if c.Password == "" {
		missing = append(missing, "password (NRG_PASSWORD)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
