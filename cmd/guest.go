// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatbox/cli/internal/session"
)

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Manage the guest identity",
}

// guestNameCmd works offline: it only reads and writes the local store.
var guestNameCmd = &cobra.Command{
	Use:   "name [new-name]",
	Short: "Show or change your guest name",
	Long: `Without an argument, prints your guest name (generating one on first use).
With an argument, replaces it. Renaming is only possible while signed out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.ctrl.Resume() {
			pterm.Info.Println("You are logged in; the guest name is used after 'chatbox logout'.")
			if len(args) > 0 {
				return userError(a.ctrl.SetUsername(args[0]), "renaming", a.host)
			}
			return nil
		}

		if len(args) == 0 {
			pterm.Println(a.ctrl.Current().Username())
			return nil
		}
		if err := a.ctrl.SetUsername(args[0]); err != nil {
			return userError(err, "renaming", a.host)
		}
		if g, ok := a.ctrl.Current().(session.Guest); ok {
			pterm.Success.Printfln("Guest name set to %s", g.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guestCmd)
	guestCmd.AddCommand(guestNameCmd)
}
