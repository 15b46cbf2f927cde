// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"chatbox/cli/internal/backend"
	"chatbox/cli/internal/errors"
	"chatbox/cli/internal/store"
)

// NameGenerator produces guest display names.
type NameGenerator interface {
	Generate() string
}

// Options wires a Controller to its collaborators. Credentials, Profiles, Store and
// Names are required.
type Options struct {
	Credentials backend.Credentials
	Profiles    backend.Profiles
	Store       store.Store
	Names       NameGenerator
	Logger      *slog.Logger
	// OnEvent, when set, is told about every transition.
	OnEvent Listener
}

// Controller owns the session state machine.
//
// The mutex guards state reads and writes only; it is never held across a network
// round trip. Two mutating calls issued concurrently resolve last-write-wins.
type Controller struct {
	creds    backend.Credentials
	profiles backend.Profiles
	store    store.Store
	names    NameGenerator
	log      *slog.Logger
	onEvent  Listener

	mu  sync.Mutex
	cur Session
}

// New creates a Controller in guest mode with no name. Call Start to resolve the
// session from the store.
func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		creds:    opts.Credentials,
		profiles: opts.Profiles,
		store:    opts.Store,
		names:    opts.Names,
		log:      log.With("component", "session"),
		onEvent:  opts.OnEvent,
		cur:      Guest{},
	}
}

// Current returns a snapshot of the session.
func (c *Controller) Current() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.cur.(*Account); ok {
		return a.clone()
	}
	return c.cur
}

// Start resolves the session from the persisted record. With both tokens present the
// session is tentatively authenticated and confirmed by loading the profile; a failed
// confirmation leaves a guest session and returns the cause. Without tokens the guest
// name is loaded or generated.
func (c *Controller) Start(ctx context.Context) error {
	if !c.Resume() {
		return nil
	}
	c.log.Debug("restored persisted tokens, confirming profile")
	return c.loadProfile(ctx)
}

// Resume restores the persisted record without contacting the service and reports
// whether a token pair was found. The account stays unconfirmed, with empty profile
// fields, until RefreshProfile. A record without a username gets a generated one.
func (c *Controller) Resume() bool {
	tokens, ok := loadTokens(c.store)
	if !ok {
		c.LoadUsername()
		return false
	}

	name, ok := c.store.Get(store.KeyUsername)
	if !ok {
		name = c.names.Generate()
	}
	c.mu.Lock()
	c.cur = &Account{Name: name, Tokens: tokens}
	c.mu.Unlock()

	if !ok {
		c.store.Set(store.KeyUsername, name)
		c.log.Debug("generated name for restored account", "username", name)
		c.emit(EventUsernameAssigned)
	}
	return true
}

// Register creates an account and signs in with the issued pair. On failure the
// session is untouched and the service's message is returned.
func (c *Controller) Register(ctx context.Context, req backend.RegisterRequest) error {
	pair, err := c.creds.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.signIn(ctx, pair, backend.MsgRegisterFailed)
}

// Login signs in with username and password. On failure the session is untouched.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	pair, err := c.creds.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return c.signIn(ctx, pair, backend.MsgLoginFailed)
}

// signIn stores pair and loads the profile. A profile failure reverts to guest but is
// not reported as a sign-in failure; callers inspect Current.
func (c *Controller) signIn(ctx context.Context, pair backend.TokenPair, fallback string) error {
	tokens := Tokens{Access: pair.AccessToken, Refresh: pair.RefreshToken}
	if !tokens.Valid() {
		return errors.New(errors.Service, fallback)
	}
	c.setAuthData(tokens)

	if err := c.loadProfile(ctx); err != nil {
		c.log.Warn("profile load after sign-in failed, reverted to guest", "err", err)
	}
	return nil
}

// Logout revokes the refresh token server-side when signed in, then always clears the
// account locally. Revocation failures are logged and dropped. In guest mode no
// request is made.
func (c *Controller) Logout(ctx context.Context) {
	if tokens, ok := c.tokens(); ok {
		if err := c.creds.Logout(ctx, tokens.Access, tokens.Refresh); err != nil {
			c.log.Warn("server logout failed", "err", err)
		}
	}
	c.clearAuth(EventModeChanged)
}

// RefreshProfile reloads the account profile. Any failure other than NotAuthenticated
// drops the account.
func (c *Controller) RefreshProfile(ctx context.Context) error {
	return c.loadProfile(ctx)
}

func (c *Controller) loadProfile(ctx context.Context) error {
	p, err := withRefresh(ctx, c, c.profiles.GetProfile)
	if err != nil {
		switch errors.KindOf(err) {
		case errors.NotAuthenticated, errors.SessionExpired:
		default:
			c.clearAuth(EventModeChanged)
		}
		return err
	}
	c.applyProfile(p, true)
	return nil
}

// UpdateProfile applies patch to the account profile and returns the updated profile.
func (c *Controller) UpdateProfile(ctx context.Context, patch backend.ProfilePatch) (backend.Profile, error) {
	if patch.Empty() {
		return backend.Profile{}, errors.New(errors.Validation, "nothing to update")
	}
	p, err := withRefresh(ctx, c, func(ctx context.Context, access string) (backend.Profile, error) {
		return c.profiles.UpdateProfile(ctx, access, patch)
	})
	if err != nil {
		return backend.Profile{}, err
	}
	c.applyProfile(p, false)
	return p, nil
}

// UploadAvatar uploads an avatar image and records the returned URL on the account.
func (c *Controller) UploadAvatar(ctx context.Context, filename string, data []byte) (string, error) {
	url, err := withRefresh(ctx, c, func(ctx context.Context, access string) (string, error) {
		return c.profiles.UploadAvatar(ctx, access, filename, data)
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if a, ok := c.cur.(*Account); ok {
		a.AvatarURL = url
	}
	c.mu.Unlock()
	return url, nil
}

// LoadUsername resolves the guest name: the persisted one when present, otherwise a
// freshly generated name that is persisted. In account mode it returns the account
// username unchanged.
func (c *Controller) LoadUsername() string {
	c.mu.Lock()
	if a, ok := c.cur.(*Account); ok {
		c.mu.Unlock()
		return a.Name
	}
	c.mu.Unlock()

	if name, ok := c.store.Get(store.KeyUsername); ok {
		c.setGuest(name)
		return name
	}

	name := c.names.Generate()
	c.setGuest(name)
	c.store.Set(store.KeyUsername, name)
	c.log.Debug("generated guest name", "username", name)
	c.emit(EventUsernameAssigned)
	return name
}

// SetUsername renames the guest and persists the name.
func (c *Controller) SetUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New(errors.Validation, "username must not be empty")
	}

	c.mu.Lock()
	if _, ok := c.cur.(*Account); ok {
		c.mu.Unlock()
		return errors.New(errors.Validation, "cannot rename while signed in")
	}
	c.cur = Guest{Name: name}
	c.mu.Unlock()

	c.store.Set(store.KeyUsername, name)
	c.emit(EventUsernameAssigned)
	return nil
}

// tokens returns the account's pair, or false in guest mode.
func (c *Controller) tokens() (Tokens, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.cur.(*Account)
	if !ok || !a.Tokens.Valid() {
		return Tokens{}, false
	}
	return a.Tokens, true
}

// setAuthData switches to an account holding t and persists the pair.
func (c *Controller) setAuthData(t Tokens) {
	c.mu.Lock()
	_, wasAccount := c.cur.(*Account)
	c.cur = &Account{Name: c.cur.Username(), Tokens: t}
	c.mu.Unlock()

	saveTokens(c.store, t)
	if !wasAccount {
		c.emit(EventModeChanged)
	}
}

// rotate replaces the pair after a refresh. It does nothing if the account was dropped
// while the refresh was in flight.
func (c *Controller) rotate(t Tokens) {
	c.mu.Lock()
	a, ok := c.cur.(*Account)
	if !ok {
		c.mu.Unlock()
		return
	}
	a.Tokens = t
	c.mu.Unlock()

	saveTokens(c.store, t)
	c.log.Debug("tokens rotated")
	c.emit(EventTokensRotated)
}

// clearAuth drops the account, removes the persisted pair and resolves the guest name.
// ev is emitted only when an account was actually dropped.
func (c *Controller) clearAuth(ev EventType) {
	c.mu.Lock()
	_, wasAccount := c.cur.(*Account)
	if wasAccount {
		c.cur = Guest{}
	}
	c.mu.Unlock()

	clearTokens(c.store)
	c.LoadUsername()
	if wasAccount {
		c.emit(ev)
	}
}

// applyProfile copies profile fields onto the account. withName also replaces the
// username, which only a full profile load does.
func (c *Controller) applyProfile(p backend.Profile, withName bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.cur.(*Account)
	if !ok {
		return
	}
	if withName {
		a.UserID = p.ID
		a.Name = p.Username
	}
	a.DisplayName = p.DisplayName
	if a.DisplayName == "" {
		a.DisplayName = p.Username
	}
	a.Email = p.Email
	a.AvatarURL = p.AvatarURL
}

func (c *Controller) setGuest(name string) {
	c.mu.Lock()
	c.cur = Guest{Name: name}
	c.mu.Unlock()
}

func (c *Controller) emit(t EventType) {
	if c.onEvent == nil {
		return
	}
	s := c.Current()
	c.onEvent(Event{Type: t, Mode: s.Mode(), Username: s.Username()})
}
