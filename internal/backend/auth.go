// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
)

// Fallback messages shown when the service does not explain a failure.
const (
	MsgRegisterFailed = "注册失败" // registration failed
	MsgLoginFailed    = "登录失败" // login failed
	msgLogoutFailed   = "logout failed"
)

// Register calls POST register with the new account fields and returns the issued pair.
func (h *HTTP) Register(ctx context.Context, r RegisterRequest) (TokenPair, error) {
	body, err := jsonBody(r)
	if err != nil {
		return TokenPair{}, err
	}
	var out TokenPair
	err = h.do(ctx, call{
		method:      http.MethodPost,
		path:        h.endpoints.Register,
		body:        body,
		contentType: "application/json",
		fallback:    MsgRegisterFailed,
	}, &out)
	if err != nil {
		return TokenPair{}, err
	}
	return out, nil
}

// Login calls POST login with { username, password } and returns the issued pair.
func (h *HTTP) Login(ctx context.Context, username, password string) (TokenPair, error) {
	body, err := jsonBody(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return TokenPair{}, err
	}
	var out TokenPair
	err = h.do(ctx, call{
		method:      http.MethodPost,
		path:        h.endpoints.Login,
		body:        body,
		contentType: "application/json",
		fallback:    MsgLoginFailed,
	}, &out)
	if err != nil {
		return TokenPair{}, err
	}
	return out, nil
}

// Logout calls POST logout with Authorization header and { refresh_token }.
// It revokes the refresh token server-side.
func (h *HTTP) Logout(ctx context.Context, accessToken, refreshToken string) error {
	body, err := jsonBody(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return err
	}
	return h.do(ctx, call{
		method:      http.MethodPost,
		path:        h.endpoints.Logout,
		bearer:      accessToken,
		body:        body,
		contentType: "application/json",
		fallback:    msgLogoutFailed,
		authed:      true,
	}, nil)
}
