// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// securityTimeout bounds a single invocation of the security tool, which can hang on a
// locked keychain waiting for a GUI prompt.
const securityTimeout = 10 * time.Second

// securityBackend stores entries as generic passwords through the macOS security tool.
// Each entry has account ServiceName and service "<ServiceName>.<key>".
type securityBackend struct {
	path string
}

func newSecurityBackend() (keychainBackend, error) {
	path, err := exec.LookPath("security")
	if err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{path: path}, nil
}

func (s *securityBackend) service(key string) string {
	return ServiceName + "." + key
}

// run invokes the tool and returns trimmed stdout. A missing item maps to errNotFound.
func (s *securityBackend) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), securityTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "could not be found") {
			return "", errNotFound
		}
		return "", fmt.Errorf("security %s: %s: %w", args[0], msg, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (s *securityBackend) Set(key, value string) error {
	// -U updates an existing item in place
	_, err := s.run("add-generic-password", "-a", ServiceName, "-s", s.service(key), "-w", value, "-U")
	return err
}

func (s *securityBackend) Get(key string) (string, error) {
	return s.run("find-generic-password", "-a", ServiceName, "-s", s.service(key), "-w")
}

func (s *securityBackend) Delete(key string) error {
	_, err := s.run("delete-generic-password", "-a", ServiceName, "-s", s.service(key))
	if err == errNotFound {
		return nil
	}
	return err
}
