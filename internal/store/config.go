// Package store holds client-side preferences. Credentials live in
// internal/credstore; this file is only the non-secret config.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const defaultServerURL = "http://localhost:8000"

type Config struct {
	// ServerURL is the base URL of the task-management service.
	ServerURL string `json:"serverUrl,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Profile is the appearance profile id (e.g. "default", "dark").
	Profile string `json:"profile,omitempty"`
	// StatsOpen restores whether the statistics panel was expanded.
	StatsOpen *bool `json:"statsOpen,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.devtasks).
	if v := strings.TrimSpace(os.Getenv("DEVTASKS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".devtasks"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o600)
}

// ServerURL resolves the service base URL: flag/env beats config beats the
// local default.
func (c *Config) ResolvedServerURL(override string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	if c != nil && strings.TrimSpace(c.ServerURL) != "" {
		return c.ServerURL
	}
	return defaultServerURL
}
