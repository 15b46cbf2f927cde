// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pterm/pterm"

	"chatbox/cli/internal/backend"
	"chatbox/cli/internal/config"
	"chatbox/cli/internal/errors"
	"chatbox/cli/internal/guestname"
	"chatbox/cli/internal/httperrors"
	"chatbox/cli/internal/keychain"
	"chatbox/cli/internal/logging"
	"chatbox/cli/internal/manifest"
	"chatbox/cli/internal/session"
	"chatbox/cli/internal/store"
	redisstore "chatbox/cli/internal/store/redis"
)

// app bundles what a command needs once configuration has been resolved.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	ctrl  *session.Controller
	store store.Store
	host  string
	close func()
}

// newApp loads configuration, applies command-line flags and wires the session
// controller. The caller must call close.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagStore != "" {
		cfg.Store.Backend = flagStore
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	log := logging.NewLogger(os.Stderr, level)

	m, err := manifest.Resolve(cfg.APIURL, cfg.Endpoints)
	if err != nil {
		return nil, err
	}

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	api := backend.New(m, backend.Options{
		Timeout:   cfg.Timeout(),
		UserAgent: "chatbox-cli/" + Version,
		Logger:    log,
	})

	ctrl := session.New(session.Options{
		Credentials: api,
		Profiles:    api,
		Store:       st,
		Names:       guestname.New(nil),
		Logger:      log,
		OnEvent:     printEvent,
	})

	return &app{
		cfg:   cfg,
		log:   log,
		ctrl:  ctrl,
		store: st,
		host:  httperrors.ExtractHostFromURL(m.BaseURL),
		close: closeStore,
	}, nil
}

// start resolves the session, confirming persisted tokens with the service. A failed
// confirmation leaves a guest session and is reported as a warning.
func (a *app) start(ctx context.Context) {
	var err error
	_ = withSpinner("Checking session", func() error {
		err = a.ctrl.Start(ctx)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errors.SessionExpired):
		pterm.Warning.Println(errors.Message(err))
	default:
		a.log.Debug("session confirmation failed", "err", err)
		pterm.Warning.Printfln("Could not confirm your session, continuing as guest: %s",
			logging.Mask(errors.Message(err)))
	}
}

// openStore opens the configured Local Store backend.
func openStore(cfg config.Config, log *slog.Logger) (store.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemory(), noop, nil

	case config.StoreRedis:
		rc := redisstore.DefaultConfig()
		if cfg.Store.RedisURL != "" {
			rc.URL = cfg.Store.RedisURL
		}
		if cfg.Store.Profile != "" {
			rc.Profile = cfg.Store.Profile
		}
		s, err := redisstore.New(rc, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil

	case "", config.StoreKeychain, config.StoreFile:
		b := keychain.DefaultBackend()
		if cfg.Store.Backend != "" {
			b = keychain.Backend(cfg.Store.Backend)
		}
		km, err := keychain.NewManager(b, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open credential store: %w", err)
		}
		return km, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q (want keychain, file, redis or memory)", cfg.Store.Backend)
	}
}

// printEvent shows session transitions in verbose mode.
func printEvent(e session.Event) {
	pterm.Debug.Printfln("session %s: mode=%s user=%s", e.Type, e.Mode, e.Username)
}
