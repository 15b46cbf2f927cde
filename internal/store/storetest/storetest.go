// Package storetest holds the behavioural contract every store.Store backend must meet.
package storetest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatbox/cli/internal/store"
)

// Run exercises newStore against the store.Store contract. newStore must return an
// empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("missing key is absent", func(t *testing.T) {
		s := newStore(t)
		v, ok := s.Get(store.KeyAccessToken)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		s.Set(store.KeyUsername, "快乐的熊猫7")
		v, ok := s.Get(store.KeyUsername)
		assert.True(t, ok)
		assert.Equal(t, "快乐的熊猫7", v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		s.Set(store.KeyAccessToken, "A1")
		s.Set(store.KeyAccessToken, "A2")
		v, _ := s.Get(store.KeyAccessToken)
		assert.Equal(t, "A2", v)
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		s.Set(store.KeyRefreshToken, "R1")
		s.Remove(store.KeyRefreshToken)
		_, ok := s.Get(store.KeyRefreshToken)
		assert.False(t, ok)
	})

	t.Run("remove missing key is a no-op", func(t *testing.T) {
		s := newStore(t)
		s.Remove(store.KeyRefreshToken)
		_, ok := s.Get(store.KeyRefreshToken)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		s.Set(store.KeyAccessToken, "A1")
		s.Set(store.KeyRefreshToken, "R1")
		s.Remove(store.KeyAccessToken)
		v, ok := s.Get(store.KeyRefreshToken)
		assert.True(t, ok)
		assert.Equal(t, "R1", v)
	})

	t.Run("empty value reads as absent", func(t *testing.T) {
		s := newStore(t)
		s.Set(store.KeyUsername, "")
		_, ok := s.Get(store.KeyUsername)
		assert.False(t, ok)
	})
}
