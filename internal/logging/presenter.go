// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"strings"

	"chatbox/cli/internal/errors"
)

// PresentError renders err as the last line a command prints. Typed errors other than
// network failures show only their user message; everything else shows the full chain.
// Credentials are masked either way. Multi-line text such as network troubleshooting
// starts on its own line.
func PresentError(command string, err error) string {
	if err == nil {
		return ""
	}

	text := err.Error()
	switch errors.KindOf(err) {
	case "", errors.Network:
	default:
		text = errors.Message(err)
	}
	text = Mask(text)

	if strings.Contains(text, "\n") {
		return command + " failed:\n" + text
	}
	return command + ": " + text
}
