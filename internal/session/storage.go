package session

import "chatbox/cli/internal/store"

// Helpers for the persisted record. Callers mutate the in-memory session first.

func loadTokens(st store.Store) (Tokens, bool) {
	access, okA := st.Get(store.KeyAccessToken)
	refresh, okR := st.Get(store.KeyRefreshToken)
	if !okA || !okR {
		return Tokens{}, false
	}
	return Tokens{Access: access, Refresh: refresh}, true
}

func saveTokens(st store.Store, t Tokens) {
	st.Set(store.KeyAccessToken, t.Access)
	st.Set(store.KeyRefreshToken, t.Refresh)
}

func clearTokens(st store.Store) {
	st.Remove(store.KeyAccessToken)
	st.Remove(store.KeyRefreshToken)
}
