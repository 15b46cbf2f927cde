// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatbox/cli/internal/store"
)

var logoutForget bool

// logoutCmd represents the logout command for clearing authentication state.
// It revokes the refresh token on the identity service (best-effort) and always
// removes the saved tokens locally.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove saved tokens",
	Long: `The logout command signs you out. It asks the identity service to revoke your
refresh token (best-effort: an unreachable service does not stop the logout) and
removes the saved tokens from the credential store. Your guest name is kept unless
--forget is given.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.ctrl.Resume() {
			_ = withSpinner("Signing out", func() error {
				a.ctrl.Logout(cmd.Context())
				return nil
			})
			pterm.Success.Println("Logged out")
		} else {
			pterm.Info.Println("Not logged in")
		}

		if logoutForget {
			store.Clear(a.store)
			pterm.Success.Println("Saved guest name removed; a new one is generated next time")
			return nil
		}
		pterm.Printfln("   Guest name: %s", a.ctrl.Current().Username())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutForget, "forget", false, "Also remove the saved guest name")
}
