// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the Chatbox identity CLI.
package main

import (
	"chatbox/cli/cmd"
)

func main() {
	cmd.Execute()
}
