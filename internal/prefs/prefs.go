// Package prefs persists what the CLI learns about the portal between runs.
// The state file lives at ~/.local/state/nrggyms/state.toml by default and
// never holds credentials or tokens.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds the remembered portal details.
type Prefs struct {
	// BookingsPath is the last bookings endpoint that returned data.
	BookingsPath string    `toml:"bookings_path"`
	UpdatedAt    time.Time `toml:"updated_at"`
}

const defaultPrefsPath = "~/.local/state/nrggyms/state.toml"

// DefaultPath returns the default state file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads the state file, returning empty Prefs when it is missing or
// unreadable.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Prefs{}, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Prefs{}, nil // Graceful degradation
	}

	var prefs Prefs
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{}, nil // Graceful degradation
	}
	prefs.BookingsPath = strings.TrimSpace(prefs.BookingsPath)

	return prefs, nil
}

// Save writes the state file, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	return nil
}

// RememberBookingsPath stores path if it differs from what is already saved.
// It reports whether the file was written.
func RememberBookingsPath(file, path string, now time.Time) (bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return false, nil
	}
	current, _ := Load(file)
	if current.BookingsPath == path {
		return false, nil
	}
	if err := Save(file, Prefs{BookingsPath: path, UpdatedAt: now.UTC()}); err != nil {
		return false, err
	}
	return true, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
