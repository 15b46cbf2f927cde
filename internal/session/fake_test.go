package session

import (
	"context"
	"fmt"
	"sync"

	"chatbox/cli/internal/backend"
	"chatbox/cli/internal/errors"
	"chatbox/cli/internal/store"
)

// fakeAPI records every call as "<Op> <token-or-user>" and answers from the hook
// functions. A nil hook fails the call.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	register      func(req backend.RegisterRequest) (backend.TokenPair, error)
	login         func(username, password string) (backend.TokenPair, error)
	logout        func(access, refresh string) error
	refresh       func(refresh string) (backend.TokenPair, error)
	getProfile    func(access string) (backend.Profile, error)
	updateProfile func(access string, patch backend.ProfilePatch) (backend.Profile, error)
	uploadAvatar  func(access, filename string, data []byte) (string, error)
}

var _ backend.API = (*fakeAPI)(nil)

var errUnexpected = errors.New(errors.Service, "unexpected call")

func (f *fakeAPI) record(op, arg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+arg)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeAPI) Register(_ context.Context, req backend.RegisterRequest) (backend.TokenPair, error) {
	f.record("Register", req.Username)
	if f.register == nil {
		return backend.TokenPair{}, errUnexpected
	}
	return f.register(req)
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (backend.TokenPair, error) {
	f.record("Login", username)
	if f.login == nil {
		return backend.TokenPair{}, errUnexpected
	}
	return f.login(username, password)
}

func (f *fakeAPI) Logout(_ context.Context, access, refresh string) error {
	f.record("Logout", access+"/"+refresh)
	if f.logout == nil {
		return nil
	}
	return f.logout(access, refresh)
}

func (f *fakeAPI) Refresh(_ context.Context, refresh string) (backend.TokenPair, error) {
	f.record("Refresh", refresh)
	if f.refresh == nil {
		return backend.TokenPair{}, errUnexpected
	}
	return f.refresh(refresh)
}

func (f *fakeAPI) GetProfile(_ context.Context, access string) (backend.Profile, error) {
	f.record("GetProfile", access)
	if f.getProfile == nil {
		return backend.Profile{}, errUnexpected
	}
	return f.getProfile(access)
}

func (f *fakeAPI) UpdateProfile(_ context.Context, access string, patch backend.ProfilePatch) (backend.Profile, error) {
	f.record("UpdateProfile", access)
	if f.updateProfile == nil {
		return backend.Profile{}, errUnexpected
	}
	return f.updateProfile(access, patch)
}

func (f *fakeAPI) UploadAvatar(_ context.Context, access, filename string, data []byte) (string, error) {
	f.record("UploadAvatar", access)
	if f.uploadAvatar == nil {
		return "", errUnexpected
	}
	return f.uploadAvatar(access, filename, data)
}

// countingNames hands out "guest-<n>" and counts calls.
type countingNames struct {
	n int
}

func (g *countingNames) Generate() string {
	g.n++
	return fmt.Sprintf("guest-%d", g.n)
}

func unauthorized() error {
	return errors.Wrap(errors.Unauthorized, "Invalid or expired token", fmt.Errorf("status 401"))
}

func pair(access, refresh string) backend.TokenPair {
	return backend.TokenPair{AccessToken: access, RefreshToken: refresh}
}

func aliceProfile() backend.Profile {
	return backend.Profile{ID: 42, Username: "alice", Email: "alice@example.com"}
}

// orderedStore wraps a Memory store and records every write that lands before the
// controller's session holds the value being written.
type orderedStore struct {
	*store.Memory
	current    func() Session
	violations []string
}

func (o *orderedStore) Set(key, value string) {
	cur := o.current()
	a, isAccount := cur.(*Account)
	switch key {
	case store.KeyAccessToken:
		if !isAccount || a.Tokens.Access != value {
			o.violations = append(o.violations, "set "+key+"="+value)
		}
	case store.KeyRefreshToken:
		if !isAccount || a.Tokens.Refresh != value {
			o.violations = append(o.violations, "set "+key+"="+value)
		}
	case store.KeyUsername:
		if cur.Username() != value {
			o.violations = append(o.violations, "set "+key+"="+value)
		}
	}
	o.Memory.Set(key, value)
}

func (o *orderedStore) Remove(key string) {
	if key == store.KeyAccessToken || key == store.KeyRefreshToken {
		if _, isAccount := o.current().(*Account); isAccount {
			o.violations = append(o.violations, "remove "+key)
		}
	}
	o.Memory.Remove(key)
}
