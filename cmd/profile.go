// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatbox/cli/internal/backend"
)

var (
	profileDisplayName string
	profileEmail       string
	profileAvatarURL   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your account profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your account profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.start(cmd.Context())
		acct, err := requireAccount(a.ctrl.Current())
		if err != nil {
			return err
		}
		return printProfile(acct)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields",
	Long: `Changes the given profile fields. Only flags you pass are sent; an expired
access token is refreshed once automatically.`,
	Example: `  chatbox profile update --display-name "Alice L."
  chatbox profile update --email alice@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var patch backend.ProfilePatch
		if cmd.Flags().Changed("display-name") {
			patch.DisplayName = &profileDisplayName
		}
		if cmd.Flags().Changed("email") {
			patch.Email = &profileEmail
		}
		if cmd.Flags().Changed("avatar-url") {
			patch.AvatarURL = &profileAvatarURL
		}
		if patch.Empty() {
			return stderrors.New("nothing to update; pass --display-name, --email or --avatar-url")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.start(ctx)
		if _, err := requireAccount(a.ctrl.Current()); err != nil {
			return err
		}

		err = withSpinner("Updating profile", func() error {
			_, err := a.ctrl.UpdateProfile(ctx, patch)
			return err
		})
		if err != nil {
			return userError(err, "updating your profile", a.host)
		}

		pterm.Success.Println("Profile updated")
		acct, err := requireAccount(a.ctrl.Current())
		if err != nil {
			return err
		}
		return printProfile(acct)
	},
}

var profileAvatarCmd = &cobra.Command{
	Use:   "avatar <image-file>",
	Short: "Upload a new avatar image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read avatar: %w", err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.start(ctx)
		if _, err := requireAccount(a.ctrl.Current()); err != nil {
			return err
		}

		var url string
		err = withSpinner("Uploading avatar", func() error {
			url, err = a.ctrl.UploadAvatar(ctx, args[0], data)
			return err
		})
		if err != nil {
			return userError(err, "uploading your avatar", a.host)
		}
		pterm.Success.Printfln("Avatar uploaded: %s", url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileAvatarCmd)

	profileUpdateCmd.Flags().StringVar(&profileDisplayName, "display-name", "", "New display name")
	profileUpdateCmd.Flags().StringVar(&profileEmail, "email", "", "New email address")
	profileUpdateCmd.Flags().StringVar(&profileAvatarURL, "avatar-url", "", "New avatar URL")
}
