// Package environment maps a named environment to the identity service URLs.
// A configuration file is optional; without one only the built-in production
// environment is available. Configurations are validated once, when loaded.
package environment

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strings"

	xerrors "xdrquery/cli/internal/errors"
)

// URLs holds the token and "who am I" endpoints for one environment.
type URLs struct {
	WhoamiURL string `json:"whoamiURL"`
	TokenURL  string `json:"tokenURL"`
}

// Production is the built-in environment used when no name is given.
var Production = URLs{
	WhoamiURL: "https://api.central.sophos.com/whoami/v1",
	TokenURL:  "https://id.sophos.com/api/v2/oauth2/token",
}

// Config is a validated set of named environments. It is immutable after Parse.
type Config struct {
	envs map[string]URLs
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.IO, "read environment config "+path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a configuration document of the form
// {"<env>": {"whoamiURL": "...", "tokenURL": "..."}}.
func Parse(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, xerrors.New(xerrors.Config, "config loaded is empty")
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, xerrors.Wrap(xerrors.Config, "malformed environment config", err)
	}
	if len(raw) == 0 {
		return nil, xerrors.New(xerrors.Config, "config loaded is empty")
	}

	envs := make(map[string]URLs, len(raw))
	for _, name := range sortedKeys(raw) {
		entry := raw[name]
		whoami, err := requiredURL(entry, "whoamiURL", name)
		if err != nil {
			return nil, err
		}
		token, err := requiredURL(entry, "tokenURL", name)
		if err != nil {
			return nil, err
		}
		envs[name] = URLs{WhoamiURL: whoami, TokenURL: token}
	}
	return &Config{envs: envs}, nil
}

func requiredURL(entry map[string]any, field, env string) (string, error) {
	v, ok := entry[field]
	if !ok {
		return "", xerrors.Newf(xerrors.Config, "%s not found in %s", field, env)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", xerrors.Newf(xerrors.Config, "%s in %s must be a non-empty string", field, env)
	}
	return strings.TrimSpace(s), nil
}

// Resolve returns the URLs for name. The empty name always selects Production.
func (c *Config) Resolve(name string) (URLs, error) {
	if name == "" {
		return Production, nil
	}
	if c == nil {
		return URLs{}, xerrors.Newf(xerrors.Config, "environment not found: %s", name)
	}
	u, ok := c.envs[name]
	if !ok {
		return URLs{}, xerrors.Newf(xerrors.Config, "environment not found: %s", name)
	}
	return u, nil
}

// Resolve is cfg.Resolve for a configuration that may be absent.
func Resolve(cfg *Config, name string) (URLs, error) {
	return cfg.Resolve(name)
}

// Names lists the configured environments in sorted order.
func (c *Config) Names() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.envs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
