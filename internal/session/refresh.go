// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"

	"chatbox/cli/internal/errors"
)

// MsgSessionExpired is shown when the refresh token is no longer accepted.
const MsgSessionExpired = "登录已过期，请重新登录" // session expired, please sign in again

// MsgNotAuthenticated is returned by account-only operations in guest mode.
const MsgNotAuthenticated = "not signed in"

// withRefresh runs call with the current access token. When the service answers
// Unauthorized it refreshes the pair once and retries once with the new access token.
// A failed refresh drops the account and yields a SessionExpired error.
func withRefresh[T any](ctx context.Context, c *Controller, call func(ctx context.Context, accessToken string) (T, error)) (T, error) {
	var zero T

	tokens, ok := c.tokens()
	if !ok {
		return zero, errors.New(errors.NotAuthenticated, MsgNotAuthenticated)
	}

	v, err := call(ctx, tokens.Access)
	if !errors.Is(err, errors.Unauthorized) {
		return v, err
	}

	c.log.Debug("access token rejected, refreshing")
	pair, err := c.creds.Refresh(ctx, tokens.Refresh)
	if err != nil {
		c.log.Warn("token refresh failed", "err", err)
		c.clearAuth(EventSessionExpired)
		return zero, errors.Wrap(errors.SessionExpired, MsgSessionExpired, err)
	}

	next := Tokens{Access: pair.AccessToken, Refresh: pair.RefreshToken}
	if next.Refresh == "" {
		next.Refresh = tokens.Refresh
	}
	c.rotate(next)

	return call(ctx, next.Access)
}
