// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; tokens go to the credential store.
//
// Precedence, lowest first: built-in defaults, config.json, CHATBOX_* environment
// variables, command-line flags (applied by cmd).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"chatbox/cli/internal/xdg"
)

// DefaultAPIURL is the identity service base URL used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000"

// Store backend names.
const (
	StoreKeychain = "keychain"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL         string            `json:"api_url"`
	LogLevel       string            `json:"log_level"`
	TimeoutSeconds int               `json:"timeout_seconds"`
	Store          StoreConfig       `json:"store"`
	Endpoints      map[string]string `json:"endpoints,omitempty"`
}

// StoreConfig selects the Local Store backend.
type StoreConfig struct {
	// Backend is one of keychain, file, redis, memory. Empty picks the OS default.
	Backend  string `json:"backend"`
	RedisURL string `json:"redis_url,omitempty"`
	// Profile namespaces the persisted record in shared backends (redis).
	Profile string `json:"profile,omitempty"`
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		LogLevel:       "warn",
		TimeoutSeconds: 10,
		Store:          StoreConfig{Profile: "default"},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration and applies environment overrides; a missing file yields defaults.
func Load() (Config, error) {
	c, err := LoadFile()
	if err != nil {
		return c, err
	}
	applyEnv(&c)
	return c, nil
}

// LoadFile reads the config file alone, without environment overrides.
func LoadFile() (Config, error) {
	c := Defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Keys accepted by Set.
var SettableKeys = []string{"api_url", "log_level", "timeout_seconds", "store", "redis_url", "profile"}

// Set assigns one setting by its config-file key. Values are validated so a bad
// setting is rejected before it reaches the file.
func Set(c *Config, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "api_url":
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api_url must be an http(s) URL, got %q", value)
		}
		c.APIURL = strings.TrimRight(value, "/")
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("log_level must be debug, info, warn or error, got %q", value)
		}
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds must be a positive integer, got %q", value)
		}
		c.TimeoutSeconds = n
	case "store":
		switch value {
		case StoreKeychain, StoreFile, StoreRedis, StoreMemory:
			c.Store.Backend = value
		default:
			return fmt.Errorf("store must be keychain, file, redis or memory, got %q", value)
		}
	case "redis_url":
		c.Store.RedisURL = value
	case "profile":
		if value == "" {
			return errors.New("profile must not be empty")
		}
		c.Store.Profile = value
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(SettableKeys, ", "))
	}
	return nil
}

func applyEnv(c *Config) {
	c.APIURL = envString("CHATBOX_API_URL", c.APIURL)
	c.LogLevel = envString("CHATBOX_LOG_LEVEL", c.LogLevel)
	c.TimeoutSeconds = envInt("CHATBOX_TIMEOUT_SECONDS", c.TimeoutSeconds)
	c.Store.Backend = envString("CHATBOX_STORE", c.Store.Backend)
	c.Store.RedisURL = envString("CHATBOX_REDIS_URL", c.Store.RedisURL)
	c.Store.Profile = envString("CHATBOX_PROFILE", c.Store.Profile)
}

// envString reads a string env var with a default.
func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envInt reads a positive int env var with a default.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
