// Package config loads and stores CLI settings in the XDG config dir.
// Only non-secret settings are kept here; client credentials go to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"xdrquery/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings. Command-line flags override every field.
type Config struct {
	LogLevel string `json:"log_level"`
	// Environment is the default environment name; empty selects production.
	Environment string `json:"environment,omitempty"`
	// EnvironmentsFile is the default path of the environment configuration.
	EnvironmentsFile string `json:"environments_file,omitempty"`
	// Format is the default output format, "table" or "json".
	Format string `json:"format"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Config {
	return Config{LogLevel: "info", Format: "table"}
}

// Path returns the path to the settings file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads settings; a missing file returns Defaults. Fields absent from the file keep
// their defaults.
func Load() (Config, error) {
	c := Defaults()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Defaults(), err
	}
	return c, nil
}

// Save writes settings with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
