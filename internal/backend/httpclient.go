// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatbox/cli/internal/errors"
	"chatbox/cli/internal/manifest"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// HTTP implements API over the identity service REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://localhost:8000")
	baseURL string
	// endpoints contains the URL paths for each call
	endpoints manifest.HTTPEndpoints
	// client is the underlying HTTP client with configured timeout
	client    *http.Client
	userAgent string
	log       *slog.Logger
}

// Ensure HTTP implements API
var _ API = (*HTTP)(nil)

// call describes one round trip.
type call struct {
	method string
	path   string
	// bearer is sent as "Authorization: Bearer <bearer>" when non-empty
	bearer      string
	body        io.Reader
	contentType string
	// fallback is the user-facing message when the service gives no detail
	fallback string
	// authed marks bearer-authenticated calls; only those map 401 to errors.Unauthorized
	authed bool
}

// jsonBody encodes v for a call body.
func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// do executes c and decodes a 2xx JSON response into out (when out is non-nil).
func (h *HTTP) do(ctx context.Context, c call, out any) error {
	req, err := http.NewRequestWithContext(ctx, c.method, h.baseURL+c.path, c.body)
	if err != nil {
		return errors.Wrap(errors.Network, c.fallback, err)
	}
	h.setStandardHeaders(req)
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Debug("request failed", "method", c.method, "path", c.path,
			"request_id", req.Header.Get("X-Request-ID"), "err", err)
		return errors.Wrap(errors.Network, c.fallback, err)
	}
	defer resp.Body.Close()

	h.log.Debug("request", "method", c.method, "path", c.path, "status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"), "duration", time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(errors.Network, c.fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body, c)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(errors.Service, c.fallback, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// setStandardHeaders sets the headers every request carries.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// statusError maps a non-2xx response to a typed error. The message is the service's
// detail when present, otherwise the call's fallback.
func statusError(status int, body []byte, c call) error {
	msg := c.fallback
	if d := parseDetail(body); d != "" {
		msg = d
	}
	cause := fmt.Errorf("%s %s: status %d", c.method, c.path, status)

	switch {
	case status == http.StatusUnauthorized && c.authed:
		return errors.Wrap(errors.Unauthorized, msg, cause)
	case status >= 400 && status < 500:
		return errors.Wrap(errors.Validation, msg, cause)
	default:
		return errors.Wrap(errors.Service, msg, cause)
	}
}

// parseDetail extracts the "detail" field from an error body. A list of validation
// issues (each with a "msg") is joined with "; ".
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var issues []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			if m := strings.TrimSpace(is.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
