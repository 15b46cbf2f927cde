// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"

	"chatbox/cli/internal/errors"
)

const msgRefreshFailed = "Token refresh failed"

// Refresh calls POST refresh to get a new access token.
// It sends the refresh token and returns a new access token and, when the service
// rotates it, a new refresh token.
func (h *HTTP) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	body, err := jsonBody(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return TokenPair{}, err
	}
	var out TokenPair
	err = h.do(ctx, call{
		method:      http.MethodPost,
		path:        h.endpoints.Refresh,
		body:        body,
		contentType: "application/json",
		fallback:    msgRefreshFailed,
	}, &out)
	if err != nil {
		return TokenPair{}, err
	}
	if out.AccessToken == "" {
		return TokenPair{}, errors.New(errors.Service, "no access_token in refresh response")
	}
	return out, nil
}
