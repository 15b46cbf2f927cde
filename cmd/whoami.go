// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"
)

// whoamiCmd shows the current session, confirming persisted tokens with the service.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the current session",
	Long: `The whoami command resolves the current session. Saved tokens are confirmed by
loading your profile (refreshing an expired access token once); if that fails you are
shown as a guest. Without saved tokens your guest name is shown, and generated on
first use.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.start(cmd.Context())
		printSession(a.ctrl.Current())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
