// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chatbox/cli/internal/manifest"
)

// Options tunes the HTTP client.
type Options struct {
	// Timeout bounds each request; zero means 10 seconds.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// Client replaces the underlying http.Client (tests); Timeout is ignored when set.
	Client *http.Client
	Logger *slog.Logger
}

// New creates a backend API implementation for the resolved manifest.
func New(m *manifest.Manifest, opts Options) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "chatbox-cli"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &HTTP{
		baseURL:   strings.TrimRight(m.BaseURL, "/"),
		endpoints: m.HTTP,
		client:    client,
		userAgent: opts.UserAgent,
		log:       log.With("component", "backend"),
	}
}
