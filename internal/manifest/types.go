// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest resolves the identity service endpoint configuration: the base URL
// and the REST paths of each call, with per-path overrides from config.
package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

// Manifest represents the resolved endpoint configuration.
type Manifest struct {
	BaseURL string
	HTTP    HTTPEndpoints
}

// HTTPEndpoints contains REST API endpoint paths.
type HTTPEndpoints struct {
	Register string `json:"register"` // e.g., "/api/auth/register"
	Login    string `json:"login"`    // e.g., "/api/auth/login"
	Logout   string `json:"logout"`   // e.g., "/api/auth/logout"
	Refresh  string `json:"refresh"`  // e.g., "/api/auth/refresh"
	Profile  string `json:"profile"`  // e.g., "/api/users/me" (GET and PUT)
	Avatar   string `json:"avatar"`   // e.g., "/api/users/me/avatar"
}

// DefaultEndpoints returns the paths the identity service serves.
func DefaultEndpoints() HTTPEndpoints {
	return HTTPEndpoints{
		Register: "/api/auth/register",
		Login:    "/api/auth/login",
		Logout:   "/api/auth/logout",
		Refresh:  "/api/auth/refresh",
		Profile:  "/api/users/me",
		Avatar:   "/api/users/me/avatar",
	}
}

// Resolve validates baseURL and merges path overrides (keyed by the json names above)
// over the defaults. Unknown override keys are rejected so typos do not go unnoticed.
func Resolve(baseURL string, overrides map[string]string) (*Manifest, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: missing host", baseURL)
	}

	ep := DefaultEndpoints()
	slots := map[string]*string{
		"register": &ep.Register,
		"login":    &ep.Login,
		"logout":   &ep.Logout,
		"refresh":  &ep.Refresh,
		"profile":  &ep.Profile,
		"avatar":   &ep.Avatar,
	}
	for k, v := range overrides {
		slot, ok := slots[k]
		if !ok {
			return nil, fmt.Errorf("unknown endpoint override %q", k)
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		*slot = v
	}

	return &Manifest{
		BaseURL: strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"),
		HTTP:    ep,
	}, nil
}
