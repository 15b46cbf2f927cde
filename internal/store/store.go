// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package store defines the durable key-value contract the session layer persists
// its record through, plus an in-memory implementation.
//
// Implementations are infallible towards callers: backend failures are logged by the
// implementation and reported as an absent value (Get) or silently dropped (Set, Remove).
// The session controller never branches on storage errors.
package store

// Keys of the persisted session record.
const (
	KeyUsername     = "username"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Keys lists every key the session record may occupy.
var Keys = []string{KeyUsername, KeyAccessToken, KeyRefreshToken}

// Store is synchronous, durable key-value persistence.
type Store interface {
	// Get returns the value for key and whether it is present. Empty values count as absent.
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Clear removes the whole record from s, guest name included.
func Clear(s Store) {
	for _, k := range Keys {
		s.Remove(k)
	}
}
