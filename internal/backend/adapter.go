// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the
// chatbox identity service. It defines the API contract for credential operations
// (register, login, logout, refresh) and profile operations, and an HTTP implementation.
//
// The clients are stateless: every call takes the tokens it needs as arguments and
// returns either a payload or an *errors.E whose Kind tells the caller how to react.
package backend

import "context"

// TokenPair is the bearer credential pair issued by the identity service.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest carries the fields of a new account. DisplayName and Email are optional.
type RegisterRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
}

// Profile is the authenticated user's account record.
type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
}

// ProfilePatch lists the profile fields to change; nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.Email == nil && p.AvatarURL == nil
}

// Credentials defines the credential operations the session layer depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type Credentials interface {
	Register(ctx context.Context, req RegisterRequest) (TokenPair, error)
	Login(ctx context.Context, username, password string) (TokenPair, error)
	// Logout revokes the refresh token server-side. Callers treat it as best-effort.
	Logout(ctx context.Context, accessToken, refreshToken string) error
	// Refresh exchanges a refresh token for a new pair. When the service does not rotate
	// the refresh token the returned RefreshToken is empty.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// Profiles defines the bearer-authenticated profile operations. A 401 response is
// reported as an error of kind errors.Unauthorized.
type Profiles interface {
	GetProfile(ctx context.Context, accessToken string) (Profile, error)
	UpdateProfile(ctx context.Context, accessToken string, patch ProfilePatch) (Profile, error)
	UploadAvatar(ctx context.Context, accessToken, filename string, data []byte) (avatarURL string, err error)
}

// API is the full identity service surface.
type API interface {
	Credentials
	Profiles
}
