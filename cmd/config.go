// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chatbox/cli/internal/config"
	"chatbox/cli/internal/manifest"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings (file, environment and flags combined)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if flagAPIURL != "" {
			cfg.APIURL = flagAPIURL
		}
		if flagStore != "" {
			cfg.Store.Backend = flagStore
		}

		backend := cfg.Store.Backend
		if backend == "" {
			backend = "(os default)"
		}
		data := pterm.TableData{
			{"api_url", cfg.APIURL},
			{"log_level", cfg.LogLevel},
			{"timeout_seconds", fmt.Sprint(cfg.TimeoutSeconds)},
			{"store", backend},
			{"redis_url", cfg.Store.RedisURL},
			{"profile", cfg.Store.Profile},
		}

		m, err := manifest.Resolve(cfg.APIURL, cfg.Endpoints)
		if err != nil {
			return err
		}
		data = append(data,
			[]string{"endpoint register", m.HTTP.Register},
			[]string{"endpoint login", m.HTTP.Login},
			[]string{"endpoint logout", m.HTTP.Logout},
			[]string{"endpoint refresh", m.HTTP.Refresh},
			[]string{"endpoint profile", m.HTTP.Profile},
			[]string{"endpoint avatar", m.HTTP.Avatar},
		)
		return pterm.DefaultTable.WithData(data).Render()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting in the config file",
	Long: fmt.Sprintf(`Writes one setting to the config file. Environment variables and flags still
override it at run time.

Keys: %s`, strings.Join(config.SettableKeys, ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}
		if err := config.Set(&cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		pterm.Success.Printfln("%s updated", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
