// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	stderrors "errors"
	"fmt"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"chatbox/cli/internal/errors"
	"chatbox/cli/internal/httperrors"
	"chatbox/cli/internal/session"
	"chatbox/cli/internal/terminal"
)

// withSpinner runs fn while a spinner shows text. The spinner line is removed when fn
// returns. Non-interactive runs get no spinner.
func withSpinner(text string, fn func() error) error {
	if !terminal.IsInteractive() {
		return fn()
	}
	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		return fn()
	}
	cursor.Hide()
	defer func() {
		_ = sp.Stop()
		cursor.Show()
	}()
	return fn()
}

// userError turns a session or backend error into what the user sees. Network
// failures get troubleshooting output for host; other typed errors are reduced to
// their message.
func userError(err error, action, host string) error {
	if err == nil {
		return nil
	}
	switch errors.KindOf(err) {
	case "":
		return err
	case errors.Network:
		return httperrors.FormatNetworkError(err, action, host)
	default:
		return stderrors.New(errors.Message(err))
	}
}

// printSession renders the current session.
func printSession(s session.Session) {
	switch v := s.(type) {
	case *session.Account:
		pterm.Printfln("👤 %s (%s)", v.DisplayName, v.Name)
		if v.Email != "" {
			pterm.Printfln("   %s", v.Email)
		}
	case session.Guest:
		pterm.Printfln("🎭 Guest: %s", v.Name)
		pterm.Println("   Run 'chatbox login' to use your account.")
	}
}

// printProfile renders the account fields as a table.
func printProfile(a *session.Account) error {
	avatar := a.AvatarURL
	if avatar == "" {
		avatar = "-"
	}
	email := a.Email
	if email == "" {
		email = "-"
	}
	return pterm.DefaultTable.WithData(pterm.TableData{
		{"ID", fmt.Sprint(a.UserID)},
		{"Username", a.Name},
		{"Display name", a.DisplayName},
		{"Email", email},
		{"Avatar", avatar},
	}).Render()
}

// requireAccount returns the account or a hint to sign in.
func requireAccount(s session.Session) (*session.Account, error) {
	if a, ok := s.(*session.Account); ok {
		return a, nil
	}
	return nil, stderrors.New("not logged in; run 'chatbox login' first")
}
