// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Chatbox identity client.
// It implements subcommands for signing in and out, inspecting and editing the
// account profile, and managing the guest name, using the Cobra CLI framework.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatbox/cli/internal/logging"
)

var (
	showVersion bool

	flagAPIURL  string
	flagStore   string
	flagVerbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatbox",
	Short: "Chatbox identity client",
	Long: `chatbox manages your Chatbox identity from the terminal. Without an account you
are a guest with a generated name; sign in to use your account profile.

Tokens are kept in the OS keychain by default (see --store).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			pterm.EnableDebugMessages()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, pterm.Red(logging.PresentError(rootCmd.Name(), err)))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Identity service base URL (overrides CHATBOX_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Credential store: keychain, file, redis or memory (overrides CHATBOX_STORE)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose debug output")
}
