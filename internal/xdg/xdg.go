// Package xdg resolves XDG Base Directory paths for xdrq.
//
// Both directories are created with private permissions because the config dir may
// name environment files and the state dir holds shell history, which can contain
// query text.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under each XDG base.
const AppName = "xdrq"

// ConfigDir returns $XDG_CONFIG_HOME/xdrq, falling back to ~/.config/xdrq.
// The directory is created with 0700 if missing.
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/xdrq, falling back to ~/.local/state/xdrq.
// The directory is created with 0700 if missing.
func StateDir() (string, error) {
	return appDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func appDir(envVar, homeRel string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
