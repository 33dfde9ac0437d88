// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of footprint. It runs the
// data donation flow locally, validates command files and manages the secrets
// the bridges need, using the Cobra CLI framework.
package cmd

import (
	"fmt"
	"os"

	"footprint/cli/internal/config"
	"footprint/cli/internal/logging"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	configFile  string
	logLevel    string
	logFormat   string

	// cfg is the effective configuration, loaded before every subcommand runs.
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "footprint",
	Short: "Explore and donate your digital footprint, locally",
	Long: `footprint walks you through a platform's data package on your own device,
shows what it contains and lets you decide what, if anything, to share for research.
Nothing leaves your device unless you choose to donate it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			c.LogFormat = logFormat
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logging.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("footprint %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("footprint", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/footprint/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}
