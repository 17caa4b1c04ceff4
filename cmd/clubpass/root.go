// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/clubpass/clubpass/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the ClubPass CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clubpass",
		Short: "ClubPass - account credentials and token lifecycle",
		Long: `ClubPass registers member and owner accounts, issues signed access
tokens with rotating refresh tokens, and runs the email verification and
password reset flows.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/clubpass/clubpass.yaml)")

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newAccountCmd(deps))

	return cmd
}

// loadConfig reads configuration for cmd from --config (or the XDG default
// file), the environment and the command's own flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := config.Discover(configFile, os.Getenv)
	if err != nil {
		return nil, err
	}
	return config.Load(config.Options{
		Path:   path,
		Flags:  cmd.Flags(),
		Getenv: os.Getenv,
	})
}
