// Package xdg provides helpers to resolve XDG Base Directory paths for chatbox.
// It implements the XDG Base Directory specification for determining appropriate
// locations for configuration files and state data on Unix-like systems.
//
// The package handles fallback to traditional locations when XDG environment
// variables are not set and creates the directories with private permissions,
// since the state directory may hold the encrypted credential file.
package xdg

import (
	"os"
	"path/filepath"
)

// appDir is the per-application subdirectory name.
const appDir = "chatbox"

// ConfigDir returns the XDG config directory for chatbox.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/chatbox when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for chatbox.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/chatbox when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
