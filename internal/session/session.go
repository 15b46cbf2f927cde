// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the client's identity state: either an anonymous guest with a
// locally generated name or an authenticated account holding a bearer token pair.
//
// A Controller mediates every call to the identity service, writes credential changes
// through to a store.Store, and transparently refreshes an expired access token once
// per authenticated call.
package session

// Mode is the active variant of a Session.
type Mode int

const (
	ModeGuest Mode = iota
	ModeAuthenticated
)

func (m Mode) String() string {
	switch m {
	case ModeAuthenticated:
		return "authenticated"
	default:
		return "guest"
	}
}

// Session is a read-only snapshot of the controller state. It is implemented only by
// Guest and *Account.
type Session interface {
	Mode() Mode
	// Username is present in both modes.
	Username() string
	sealed()
}

// Guest is an unauthenticated session identified only by its display name.
type Guest struct {
	Name string
}

func (Guest) Mode() Mode         { return ModeGuest }
func (g Guest) Username() string { return g.Name }
func (Guest) sealed()            {}

// Tokens is the bearer credential pair of an authenticated session.
type Tokens struct {
	Access  string
	Refresh string
}

// Valid reports whether both tokens are present.
func (t Tokens) Valid() bool {
	return t.Access != "" && t.Refresh != ""
}

// Account is an authenticated session. Profile fields are empty until the profile
// has been loaded.
type Account struct {
	Name        string
	UserID      int64
	DisplayName string
	Email       string
	AvatarURL   string
	Tokens      Tokens
}

func (*Account) Mode() Mode         { return ModeAuthenticated }
func (a *Account) Username() string { return a.Name }
func (*Account) sealed()            {}

// clone returns a copy safe to hand out of the controller.
func (a *Account) clone() *Account {
	cp := *a
	return &cp
}
