// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides the OS credential store backend for the session record.
// It manages all interactions with the OS keychain/credential store (macOS Keychain,
// Windows Credential Manager) and falls back to an encrypted file keyring on other
// platforms, so the access and refresh tokens never land in plain config files.
//
// Manager implements store.Store: failures are logged and never surfaced, because the
// session layer treats persistence as infallible.
package keychain

import (
	"errors"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"chatbox/cli/internal/store"
	"chatbox/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "chatbox"

// Backend selects where the Manager keeps secrets.
type Backend string

const (
	// BackendKeychain uses the native OS credential store.
	BackendKeychain Backend = "keychain"
	// BackendFile uses keyring's encrypted file store under the XDG state dir.
	BackendFile Backend = "file"
)

// errNotFound is returned by native backends for missing keys.
var errNotFound = errors.New("key not found")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
	log     *slog.Logger
}

// Ensure Manager implements store.Store
var _ store.Store = (*Manager)(nil)

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// DefaultBackend returns the backend suited to the running OS.
func DefaultBackend() Backend {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return BackendKeychain
	}
	return BackendFile
}

// NewManager creates a keychain manager for the requested backend.
func NewManager(b Backend, log *slog.Logger) (*Manager, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "keychain", "backend", string(b))

	if b == BackendKeychain && runtime.GOOS == "darwin" {
		// Prefer the native security command; fall through to keyring if it is missing
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{backend: backend, log: log}, nil
		}
	}

	ring, err := openRing(b)
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring, log: log}, nil
}

// NewWithRing wraps an already opened keyring (used by tests with keyring.NewArrayKeyring).
func NewWithRing(ring keyring.Keyring, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{ring: ring, log: log.With("component", "keychain")}
}

// openRing opens the keyring for the requested backend.
func openRing(b Backend) (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		PassPrefix:  ServiceName,
	}

	switch b {
	case BackendKeychain:
		switch runtime.GOOS {
		case "darwin":
			// Pass requires 'pass' utility installed: brew install pass
			cfg.AllowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
		case "windows":
			cfg.AllowedBackends = []keyring.BackendType{keyring.WinCredBackend}
			cfg.WinCredPrefix = ServiceName
		default:
			cfg.AllowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
		}
	case BackendFile:
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		cfg.FileDir = dir
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(filePassword())
	default:
		return nil, errors.New("unknown keychain backend: " + string(b))
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if b == BackendKeychain && runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// filePassword returns the passphrase for the file keyring. Without CHATBOX_KEYRING_PASSWORD
// the file is still encrypted, but only against casual reads.
func filePassword() string {
	if p := os.Getenv("CHATBOX_KEYRING_PASSWORD"); p != "" {
		return p
	}
	return ServiceName + ":" + currentUser()
}

func currentUser() string {
	for _, k := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "user"
}

// Get retrieves a value from the keychain. Missing keys and backend errors both read as absent.
// This method is thread-safe.
func (m *Manager) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var value string
	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			if !errors.Is(err, errNotFound) {
				m.log.Warn("keychain read failed", "key", key, "err", err)
			}
			return "", false
		}
		value = v
	} else {
		it, err := m.ring.Get(key)
		if err != nil {
			if !errors.Is(err, keyring.ErrKeyNotFound) {
				m.log.Warn("keychain read failed", "key", key, "err", err)
			}
			return "", false
		}
		value = string(it.Data)
	}

	if value == "" {
		return "", false
	}
	return value, true
}

// Set stores a value in the keychain, replacing any previous value.
// This method is thread-safe.
func (m *Manager) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.backend != nil {
		err = m.backend.Set(key, value)
	} else {
		err = m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
	}
	if err != nil {
		m.log.Warn("keychain write failed", "key", key, "err", err)
	}
}

// Remove deletes a value from the keychain. Missing keys are ignored.
// This method is thread-safe.
func (m *Manager) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.backend != nil {
		err = m.backend.Delete(key)
	} else {
		err = m.ring.Remove(key)
		if errors.Is(err, keyring.ErrKeyNotFound) || os.IsNotExist(err) {
			err = nil
		}
	}
	if err != nil {
		m.log.Warn("keychain delete failed", "key", key, "err", err)
	}
}
