// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	stderrors "errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatbox/cli/internal/backend"
	"chatbox/cli/internal/session"
	"chatbox/cli/internal/terminal"
)

var (
	registerDisplayName string
	registerEmail       string
)

// registerCmd creates an account and signs in with it.
var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create an account and sign in",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.start(ctx)
		if acct, ok := a.ctrl.Current().(*session.Account); ok {
			pterm.Info.Printfln("Already logged in as %s; run 'chatbox logout' first", acct.Name)
			return nil
		}

		username, err := argOrPrompt(args, "Username: ")
		if err != nil {
			return err
		}
		password, err := terminal.ReadPassword("Password: ")
		if err != nil {
			return err
		}
		if terminal.IsInteractive() {
			again, err := terminal.ReadPassword("Repeat password: ")
			if err != nil {
				return err
			}
			if again != password {
				return stderrors.New("passwords do not match")
			}
		}

		req := backend.RegisterRequest{Username: username, Password: password}
		if cmd.Flags().Changed("display-name") {
			req.DisplayName = &registerDisplayName
		}
		if cmd.Flags().Changed("email") {
			req.Email = &registerEmail
		}

		err = withSpinner("Creating account", func() error {
			return a.ctrl.Register(ctx, req)
		})
		if err != nil {
			return userError(err, "registering", a.host)
		}
		greet(a.ctrl.Current(), "Welcome")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerDisplayName, "display-name", "", "Name shown to others")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Contact email")
}
