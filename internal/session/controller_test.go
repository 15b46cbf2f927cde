package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"chatbox/cli/internal/backend"
	"chatbox/cli/internal/errors"
	"chatbox/cli/internal/logging"
	"chatbox/cli/internal/store"
)

type ControllerSuite struct {
	suite.Suite

	ctx    context.Context
	api    *fakeAPI
	st     *store.Memory
	names  *countingNames
	events []Event
	ctrl   *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.api = &fakeAPI{}
	s.st = store.NewMemory()
	s.names = &countingNames{}
	s.events = nil
	s.ctrl = New(Options{
		Credentials: s.api,
		Profiles:    s.api,
		Store:       s.st,
		Names:       s.names,
		Logger:      logging.Discard(),
		OnEvent:     func(e Event) { s.events = append(s.events, e) },
	})
}

// signInAlice starts a guest session and logs in with pair (A1, R1), then clears the
// call log and events.
func (s *ControllerSuite) signInAlice() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	s.api.login = func(_, _ string) (backend.TokenPair, error) { return pair("A1", "R1"), nil }
	s.api.getProfile = func(string) (backend.Profile, error) { return aliceProfile(), nil }
	s.Require().NoError(s.ctrl.Login(s.ctx, "alice", "pw"))
	s.Require().Equal(ModeAuthenticated, s.ctrl.Current().Mode())
	s.api.Reset()
	s.api.getProfile = nil
	s.events = nil
}

func (s *ControllerSuite) account() *Account {
	a, ok := s.ctrl.Current().(*Account)
	s.Require().True(ok, "expected an authenticated session, got %T", s.ctrl.Current())
	return a
}

func (s *ControllerSuite) assertGuestWithoutTokens() {
	cur := s.ctrl.Current()
	s.Equal(ModeGuest, cur.Mode())
	s.IsType(Guest{}, cur)
	s.NotEmpty(cur.Username())
	_, hasAccess := s.st.Get(store.KeyAccessToken)
	_, hasRefresh := s.st.Get(store.KeyRefreshToken)
	s.False(hasAccess, "access token still persisted")
	s.False(hasRefresh, "refresh token still persisted")
}

func (s *ControllerSuite) assertPersisted(access, refresh string) {
	got, _ := s.st.Get(store.KeyAccessToken)
	s.Equal(access, got)
	got, _ = s.st.Get(store.KeyRefreshToken)
	s.Equal(refresh, got)
}

func (s *ControllerSuite) eventTypes() []EventType {
	out := make([]EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

// Startup

func (s *ControllerSuite) TestStartGeneratesAndPersistsGuestName() {
	s.Require().NoError(s.ctrl.Start(s.ctx))

	s.Equal(Guest{Name: "guest-1"}, s.ctrl.Current())
	s.Equal(1, s.names.n)
	name, _ := s.st.Get(store.KeyUsername)
	s.Equal("guest-1", name)
	s.Empty(s.api.Calls())
	s.Equal([]EventType{EventUsernameAssigned}, s.eventTypes())
}

func (s *ControllerSuite) TestStartUsesPersistedGuestName() {
	s.st.Set(store.KeyUsername, "快乐的熊猫7")

	s.Require().NoError(s.ctrl.Start(s.ctx))

	s.Equal(Guest{Name: "快乐的熊猫7"}, s.ctrl.Current())
	s.Zero(s.names.n)
	s.Empty(s.events)
}

func (s *ControllerSuite) TestStartWithSingleTokenIsGuest() {
	s.st.Set(store.KeyAccessToken, "A1")

	s.Require().NoError(s.ctrl.Start(s.ctx))

	s.Equal(ModeGuest, s.ctrl.Current().Mode())
	s.Empty(s.api.Calls())
}

func (s *ControllerSuite) TestStartRestoresAccount() {
	s.st.Set(store.KeyUsername, "guest-9")
	saveTokens(s.st, Tokens{Access: "A1", Refresh: "R1"})
	s.api.getProfile = func(string) (backend.Profile, error) {
		p := aliceProfile()
		p.AvatarURL = "/uploads/avatars/a.png"
		return p, nil
	}

	s.Require().NoError(s.ctrl.Start(s.ctx))

	s.Equal(&Account{
		Name:        "alice",
		UserID:      42,
		DisplayName: "alice",
		Email:       "alice@example.com",
		AvatarURL:   "/uploads/avatars/a.png",
		Tokens:      Tokens{Access: "A1", Refresh: "R1"},
	}, s.account())
	s.Equal([]string{"GetProfile A1"}, s.api.Calls())
	s.Zero(s.names.n)
}

func (s *ControllerSuite) TestStartRefreshesExpiredAccessToken() {
	saveTokens(s.st, Tokens{Access: "A1", Refresh: "R1"})
	s.api.getProfile = func(access string) (backend.Profile, error) {
		if access == "A1" {
			return backend.Profile{}, unauthorized()
		}
		return aliceProfile(), nil
	}
	s.api.refresh = func(string) (backend.TokenPair, error) { return pair("A2", "R2"), nil }

	s.Require().NoError(s.ctrl.Start(s.ctx))

	s.Equal(Tokens{Access: "A2", Refresh: "R2"}, s.account().Tokens)
	s.assertPersisted("A2", "R2")
	s.Equal([]string{"GetProfile A1", "Refresh R1", "GetProfile A2"}, s.api.Calls())
}

func (s *ControllerSuite) TestStartProfileErrorFallsBackToGuest() {
	s.st.Set(store.KeyUsername, "guest-9")
	saveTokens(s.st, Tokens{Access: "A1", Refresh: "R1"})
	s.api.getProfile = func(string) (backend.Profile, error) {
		return backend.Profile{}, errors.New(errors.Network, "Failed to load profile")
	}

	err := s.ctrl.Start(s.ctx)

	s.True(errors.Is(err, errors.Network))
	s.assertGuestWithoutTokens()
	s.Equal("guest-9", s.ctrl.Current().Username())
	s.Equal([]string{"GetProfile A1"}, s.api.Calls(), "a non-401 failure must not trigger a refresh")
}

func (s *ControllerSuite) TestStartRefreshFailureExpiresSession() {
	saveTokens(s.st, Tokens{Access: "A1", Refresh: "R1"})
	s.api.getProfile = func(string) (backend.Profile, error) { return backend.Profile{}, unauthorized() }
	s.api.refresh = func(string) (backend.TokenPair, error) {
		return backend.TokenPair{}, errors.New(errors.Validation, "Invalid refresh token")
	}

	err := s.ctrl.Start(s.ctx)

	s.True(errors.Is(err, errors.SessionExpired))
	s.Equal(MsgSessionExpired, errors.Message(err))
	s.assertGuestWithoutTokens()
	s.Equal([]string{"GetProfile A1", "Refresh R1"}, s.api.Calls())
	s.Contains(s.eventTypes(), EventSessionExpired)
}

func (s *ControllerSuite) TestStartSecondUnauthorizedFallsBackToGuest() {
	s.st.Set(store.KeyUsername, "guest-9")
	saveTokens(s.st, Tokens{Access: "A1", Refresh: "R1"})
	s.api.getProfile = func(string) (backend.Profile, error) { return backend.Profile{}, unauthorized() }
	s.api.refresh = func(string) (backend.TokenPair, error) { return pair("A2", "R2"), nil }

	err := s.ctrl.Start(s.ctx)

	s.True(errors.Is(err, errors.Unauthorized))
	s.Equal([]string{"GetProfile A1", "Refresh R1", "GetProfile A2"}, s.api.Calls())
	s.assertGuestWithoutTokens()
	s.Equal(Guest{Name: "guest-9"}, s.ctrl.Current())
	s.Zero(s.names.n)
}

func (s *ControllerSuite) TestResumeWithoutUsernameAssignsOne() {
	saveTokens(s.st, Tokens{Access: "A1", Refresh: "R1"})

	s.True(s.ctrl.Resume())

	a := s.account()
	s.Equal("guest-1", a.Name)
	s.Equal(Tokens{Access: "A1", Refresh: "R1"}, a.Tokens)
	name, _ := s.st.Get(store.KeyUsername)
	s.Equal("guest-1", name)
	s.Empty(s.api.Calls())
	s.Equal([]EventType{EventUsernameAssigned}, s.eventTypes())

	s.ctrl.Logout(s.ctx)
	s.Equal(Guest{Name: "guest-1"}, s.ctrl.Current())
	s.Equal(1, s.names.n)
}

// Register / Login

func (s *ControllerSuite) TestLoginPersistsTokensHeldInMemory() {
	s.signInAlice()

	a := s.account()
	s.Equal(Tokens{Access: "A1", Refresh: "R1"}, a.Tokens)
	s.assertPersisted(a.Tokens.Access, a.Tokens.Refresh)
	s.Equal("alice", a.Name)
	s.Equal("alice", a.DisplayName)
}

func (s *ControllerSuite) TestLoginAliceRefreshScenario() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	s.api.login = func(_, _ string) (backend.TokenPair, error) { return pair("A1", "R1"), nil }
	s.api.getProfile = func(access string) (backend.Profile, error) {
		if access == "A1" {
			return backend.Profile{}, unauthorized()
		}
		return aliceProfile(), nil
	}
	s.api.refresh = func(refresh string) (backend.TokenPair, error) {
		s.Equal("R1", refresh)
		return pair("A2", "R2"), nil
	}

	s.Require().NoError(s.ctrl.Login(s.ctx, "alice", "pw"))

	a := s.account()
	s.Equal(Tokens{Access: "A2", Refresh: "R2"}, a.Tokens)
	s.assertPersisted("A2", "R2")
	s.Equal("alice", a.Name)
	s.Equal([]string{"Login alice", "GetProfile A1", "Refresh R1", "GetProfile A2"}, s.api.Calls())
	s.Equal([]EventType{EventModeChanged, EventTokensRotated}, s.eventTypes()[1:])
}

func (s *ControllerSuite) TestLoginFailureLeavesSessionUntouched() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	before := s.ctrl.Current()
	snapshot := s.st.Snapshot()
	s.api.login = func(_, _ string) (backend.TokenPair, error) {
		return backend.TokenPair{}, errors.New(errors.Validation, "Invalid username or password")
	}

	err := s.ctrl.Login(s.ctx, "alice", "nope")

	s.Require().Error(err)
	s.Equal("Invalid username or password", errors.Message(err))
	s.Equal(before, s.ctrl.Current())
	s.Equal(snapshot, s.st.Snapshot())
}

func (s *ControllerSuite) TestLoginRejectsIncompletePair() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	s.api.login = func(_, _ string) (backend.TokenPair, error) { return pair("A1", ""), nil }

	err := s.ctrl.Login(s.ctx, "alice", "pw")

	s.Equal(backend.MsgLoginFailed, errors.Message(err))
	s.assertGuestWithoutTokens()
}

func (s *ControllerSuite) TestLoginProfileFailureRevertsToGuest() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	s.api.login = func(_, _ string) (backend.TokenPair, error) { return pair("A1", "R1"), nil }
	s.api.getProfile = func(string) (backend.Profile, error) {
		return backend.Profile{}, errors.New(errors.Service, "Failed to load profile")
	}

	s.NoError(s.ctrl.Login(s.ctx, "alice", "pw"))

	s.assertGuestWithoutTokens()
	s.Equal("guest-1", s.ctrl.Current().Username())
}

func (s *ControllerSuite) TestRegisterSignsIn() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	display := "Alice"
	s.api.register = func(req backend.RegisterRequest) (backend.TokenPair, error) {
		s.Equal("alice", req.Username)
		s.Equal(&display, req.DisplayName)
		s.Nil(req.Email)
		return pair("A1", "R1"), nil
	}
	s.api.getProfile = func(string) (backend.Profile, error) {
		p := aliceProfile()
		p.DisplayName = "Alice"
		return p, nil
	}

	s.Require().NoError(s.ctrl.Register(s.ctx, backend.RegisterRequest{
		Username: "alice", Password: "pw", DisplayName: &display,
	}))

	a := s.account()
	s.Equal("Alice", a.DisplayName)
	s.assertPersisted("A1", "R1")
}

func (s *ControllerSuite) TestRegisterFailureSurfacesDetail() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	s.api.register = func(backend.RegisterRequest) (backend.TokenPair, error) {
		return backend.TokenPair{}, errors.New(errors.Validation, "Username already exists")
	}

	err := s.ctrl.Register(s.ctx, backend.RegisterRequest{Username: "alice", Password: "pw"})

	s.Equal("Username already exists", errors.Message(err))
	s.Equal(ModeGuest, s.ctrl.Current().Mode())
}

// Logout

func (s *ControllerSuite) TestLogoutRevokesAndClears() {
	s.signInAlice()

	s.ctrl.Logout(s.ctx)

	s.Equal([]string{"Logout A1/R1"}, s.api.Calls())
	s.assertGuestWithoutTokens()
	s.Equal("guest-1", s.ctrl.Current().Username())
	s.Equal([]EventType{EventModeChanged}, s.eventTypes())
}

func (s *ControllerSuite) TestLogoutServerFailureStillClears() {
	s.signInAlice()
	s.api.logout = func(_, _ string) error { return errors.New(errors.Network, "logout failed") }

	s.ctrl.Logout(s.ctx)

	s.assertGuestWithoutTokens()
}

func (s *ControllerSuite) TestLogoutAfterResumeRevokesWithoutProfileLoad() {
	s.st.Set(store.KeyUsername, "guest-9")
	saveTokens(s.st, Tokens{Access: "A1", Refresh: "R1"})

	s.True(s.ctrl.Resume())
	s.Equal(ModeAuthenticated, s.ctrl.Current().Mode())
	s.ctrl.Logout(s.ctx)

	s.Equal([]string{"Logout A1/R1"}, s.api.Calls())
	s.assertGuestWithoutTokens()
	s.Equal("guest-9", s.ctrl.Current().Username())
}

func (s *ControllerSuite) TestLogoutAsGuestIsIdempotent() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	before := s.ctrl.Current()
	snapshot := s.st.Snapshot()

	s.ctrl.Logout(s.ctx)
	s.ctrl.Logout(s.ctx)

	s.Equal(before, s.ctrl.Current())
	s.Equal(snapshot, s.st.Snapshot())
	s.Empty(s.api.Calls())
	s.Equal(1, s.names.n)
}

func (s *ControllerSuite) TestMemoryIsUpdatedBeforeStore() {
	ordered := &orderedStore{Memory: store.NewMemory()}
	ctrl := New(Options{
		Credentials: s.api,
		Profiles:    s.api,
		Store:       ordered,
		Names:       s.names,
		Logger:      logging.Discard(),
	})
	ordered.current = ctrl.Current

	s.Require().NoError(ctrl.Start(s.ctx))
	s.api.login = func(_, _ string) (backend.TokenPair, error) { return pair("A1", "R1"), nil }
	s.api.getProfile = func(string) (backend.Profile, error) { return aliceProfile(), nil }
	s.Require().NoError(ctrl.Login(s.ctx, "alice", "pw"))

	s.api.updateProfile = func(access string, _ backend.ProfilePatch) (backend.Profile, error) {
		if access != "A2" {
			return backend.Profile{}, unauthorized()
		}
		return aliceProfile(), nil
	}
	s.api.refresh = func(string) (backend.TokenPair, error) { return pair("A2", "R2"), nil }
	email := "alice@example.org"
	_, err := ctrl.UpdateProfile(s.ctx, backend.ProfilePatch{Email: &email})
	s.Require().NoError(err)

	ctrl.Logout(s.ctx)

	s.Equal(ModeGuest, ctrl.Current().Mode())
	s.Equal([]string{
		"GetProfile A1", "UpdateProfile A1", "Refresh R1", "UpdateProfile A2", "Logout A2/R2",
	}, s.api.Calls()[1:])
	s.Empty(ordered.violations)
}

// Refresh-and-retry on authenticated calls

func (s *ControllerSuite) TestUpdateProfileRetriesOnceWithNewToken() {
	s.signInAlice()
	s.api.updateProfile = func(access string, patch backend.ProfilePatch) (backend.Profile, error) {
		if access != "A2" {
			return backend.Profile{}, unauthorized()
		}
		p := aliceProfile()
		p.DisplayName = *patch.DisplayName
		return p, nil
	}
	s.api.refresh = func(string) (backend.TokenPair, error) { return pair("A2", "R2"), nil }

	name := "Alice L."
	p, err := s.ctrl.UpdateProfile(s.ctx, backend.ProfilePatch{DisplayName: &name})

	s.Require().NoError(err)
	s.Equal("Alice L.", p.DisplayName)
	s.Equal([]string{"UpdateProfile A1", "Refresh R1", "UpdateProfile A2"}, s.api.Calls())
	s.Equal("Alice L.", s.account().DisplayName)
	s.assertPersisted("A2", "R2")

	// the old access token is never used again
	s.api.Reset()
	s.api.getProfile = func(access string) (backend.Profile, error) {
		s.Equal("A2", access)
		return aliceProfile(), nil
	}
	s.Require().NoError(s.ctrl.RefreshProfile(s.ctx))
	s.Equal([]string{"GetProfile A2"}, s.api.Calls())
}

func (s *ControllerSuite) TestUpdateProfileRefreshFailureExpiresSession() {
	s.signInAlice()
	s.api.updateProfile = func(string, backend.ProfilePatch) (backend.Profile, error) {
		return backend.Profile{}, unauthorized()
	}
	s.api.refresh = func(string) (backend.TokenPair, error) {
		return backend.TokenPair{}, errors.New(errors.Validation, "Invalid refresh token")
	}

	email := "new@example.com"
	_, err := s.ctrl.UpdateProfile(s.ctx, backend.ProfilePatch{Email: &email})

	s.True(errors.Is(err, errors.SessionExpired))
	s.Equal(MsgSessionExpired, errors.Message(err))
	s.Equal([]string{"UpdateProfile A1", "Refresh R1"}, s.api.Calls())
	s.assertGuestWithoutTokens()
	s.Equal([]EventType{EventSessionExpired}, s.eventTypes())
}

func (s *ControllerSuite) TestSecondUnauthorizedDoesNotRefreshAgain() {
	s.signInAlice()
	s.api.updateProfile = func(string, backend.ProfilePatch) (backend.Profile, error) {
		return backend.Profile{}, unauthorized()
	}
	s.api.refresh = func(string) (backend.TokenPair, error) { return pair("A2", "R2"), nil }

	email := "new@example.com"
	_, err := s.ctrl.UpdateProfile(s.ctx, backend.ProfilePatch{Email: &email})

	s.True(errors.Is(err, errors.Unauthorized))
	s.Equal([]string{"UpdateProfile A1", "Refresh R1", "UpdateProfile A2"}, s.api.Calls())
}

func (s *ControllerSuite) TestRefreshWithoutRotationKeepsRefreshToken() {
	s.signInAlice()
	s.api.uploadAvatar = func(access, _ string, _ []byte) (string, error) {
		if access == "A1" {
			return "", unauthorized()
		}
		return "/uploads/avatars/new.png", nil
	}
	s.api.refresh = func(string) (backend.TokenPair, error) { return pair("A2", ""), nil }

	url, err := s.ctrl.UploadAvatar(s.ctx, "me.png", []byte("png"))

	s.Require().NoError(err)
	s.Equal("/uploads/avatars/new.png", url)
	a := s.account()
	s.Equal(Tokens{Access: "A2", Refresh: "R1"}, a.Tokens)
	s.Equal("/uploads/avatars/new.png", a.AvatarURL)
	s.assertPersisted("A2", "R1")
}

func (s *ControllerSuite) TestNonAuthErrorsAreNotRetried() {
	s.signInAlice()
	s.api.uploadAvatar = func(string, string, []byte) (string, error) {
		return "", errors.New(errors.Validation, "File must be an image")
	}

	_, err := s.ctrl.UploadAvatar(s.ctx, "notes.txt", []byte("hi"))

	s.Equal("File must be an image", errors.Message(err))
	s.Equal([]string{"UploadAvatar A1"}, s.api.Calls())
	s.Equal(ModeAuthenticated, s.ctrl.Current().Mode())
}

func (s *ControllerSuite) TestAuthenticatedCallsRequireAccount() {
	s.Require().NoError(s.ctrl.Start(s.ctx))
	name := "x"

	_, err := s.ctrl.UpdateProfile(s.ctx, backend.ProfilePatch{DisplayName: &name})
	s.True(errors.Is(err, errors.NotAuthenticated))

	_, err = s.ctrl.UploadAvatar(s.ctx, "a.png", []byte("png"))
	s.True(errors.Is(err, errors.NotAuthenticated))

	err = s.ctrl.RefreshProfile(s.ctx)
	s.True(errors.Is(err, errors.NotAuthenticated))

	s.Empty(s.api.Calls())
	s.Equal(Guest{Name: "guest-1"}, s.ctrl.Current())
}

func (s *ControllerSuite) TestEmptyPatchIsRejected() {
	s.signInAlice()

	_, err := s.ctrl.UpdateProfile(s.ctx, backend.ProfilePatch{})

	s.True(errors.Is(err, errors.Validation))
	s.Empty(s.api.Calls())
}

// Guest names

func (s *ControllerSuite) TestLoadUsernameNeverGeneratesWhenPersisted() {
	s.st.Set(store.KeyUsername, "勇敢的狐狸3")

	for i := 0; i < 3; i++ {
		s.Equal("勇敢的狐狸3", s.ctrl.LoadUsername())
	}
	s.Zero(s.names.n)
}

func (s *ControllerSuite) TestLoadUsernameGeneratesExactlyOnce() {
	first := s.ctrl.LoadUsername()
	second := s.ctrl.LoadUsername()

	s.Equal(first, second)
	s.Equal(1, s.names.n)
	name, _ := s.st.Get(store.KeyUsername)
	s.Equal(first, name)
}

func (s *ControllerSuite) TestSetUsername() {
	s.Require().NoError(s.ctrl.Start(s.ctx))

	s.Require().NoError(s.ctrl.SetUsername("  聪明的考拉1  "))
	s.Equal(Guest{Name: "聪明的考拉1"}, s.ctrl.Current())
	name, _ := s.st.Get(store.KeyUsername)
	s.Equal("聪明的考拉1", name)

	s.True(errors.Is(s.ctrl.SetUsername("  "), errors.Validation))
}

func (s *ControllerSuite) TestSetUsernameRejectedWhenSignedIn() {
	s.signInAlice()

	err := s.ctrl.SetUsername("bob")

	s.Error(err)
	s.Equal("alice", s.ctrl.Current().Username())
	name, _ := s.st.Get(store.KeyUsername)
	s.Equal("guest-1", name)
}

func (s *ControllerSuite) TestCurrentReturnsCopy() {
	s.signInAlice()

	a := s.account()
	a.Tokens.Access = "tampered"

	s.Equal("A1", s.account().Tokens.Access)
}
