// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	stderrors "errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatbox/cli/internal/session"
	"chatbox/cli/internal/terminal"
)

// loginCmd signs in with a username and password.
var loginCmd = &cobra.Command{
	Use:     "login [username]",
	Aliases: []string{"auth"},
	Short:   "Sign in with your username and password",
	Long: `The login command signs in to your Chatbox account. The username may be given as
an argument; the password is always prompted for (or read from stdin when piped).

The issued tokens are saved to the credential store so later commands stay signed in.
If already logged in with valid credentials, it does nothing.`,
	Args: cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.start(ctx)
		if acct, ok := a.ctrl.Current().(*session.Account); ok {
			pterm.Info.Printfln("Already logged in as %s", acct.Name)
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

		err = withSpinner("Signing in", func() error {
			return a.ctrl.Login(ctx, username, password)
		})
		if err != nil {
			return userError(err, "logging in", a.host)
		}
		greet(a.ctrl.Current(), "Welcome back")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

// argOrPrompt returns args[0] or asks for it interactively. An answered prompt is
// erased from the terminal.
func argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	v, err := terminal.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	terminal.ClearPreviousLines(os.Stderr, utf8.RuneCountInString(prompt+v))
	v = strings.TrimSpace(v)
	if v == "" {
		return "", stderrors.New("username is required")
	}
	return v, nil
}

// greet reports the outcome of a sign-in. A sign-in whose profile could not be loaded
// has already fallen back to guest.
func greet(s session.Session, hello string) {
	acct, ok := s.(*session.Account)
	if !ok {
		pterm.Warning.Println("Signed in, but your profile could not be loaded, so you are still a guest.")
		pterm.Println("   Run 'chatbox login' again once the service is reachable.")
		return
	}
	pterm.Success.Printfln("%s, %s!", hello, acct.DisplayName)
}
