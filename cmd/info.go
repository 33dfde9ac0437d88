// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"net/url"
	"strings"

	"footprint/cli/internal/config"
	"footprint/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// infoCmd shows the effective configuration with secrets masked.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the effective configuration",
	Long: `The info command shows where the configuration is read from, the settings in
effect after environment overrides, and which secrets are stored in the keychain.
Passwords are replaced with *** before display.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			p, err := config.Path()
			if err != nil {
				return err
			}
			path = p
		}

		rows := [][]string{
			{"Setting", "Value"},
			{"config file", path},
			{"locale", cfg.Locale},
			{"surface", cfg.Surface},
			{"web address", cfg.Web.Addr},
			{"bridge", cfg.Bridge.Kind},
		}
		switch cfg.Bridge.Kind {
		case "grpc":
			rows = append(rows, []string{"grpc target", cfg.Bridge.GRPCTarget})
		case "redis":
			rows = append(rows, []string{"redis", maskPassword(cfg.Bridge.RedisURL)}, []string{"redis channel", cfg.Bridge.RedisChannel})
		}
		if cfg.WASMPath != "" {
			rows = append(rows, []string{"wasm worker", cfg.WASMPath})
		}

		token, dsn := "not stored", "not stored"
		if km, err := keychain.GetManager(); err != nil {
			token, dsn = "keychain unavailable", "keychain unavailable"
		} else {
			if t, err := km.LoadBridgeToken(); err == nil && t != "" {
				token = "stored"
			}
			if d, err := km.LoadDonationDSN(); err == nil && d != "" {
				dsn = maskPassword(d)
			}
		}
		rows = append(rows, []string{"bridge token", token}, []string{"donation database", dsn})

		table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
		if err != nil {
			return err
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("footprint")).
			WithPadding(1).
			Println(table)
		pterm.Println()
		pterm.Println("To change the donation database, run: footprint connect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// maskPassword replaces the password in a connection URL with asterisks.
func maskPassword(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return maskPasswordSimple(dsn)
	}
	if u.User == nil {
		return dsn
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "***")
	return u.String()
}

// maskPasswordSimple handles user:password@ in strings that do not parse as URLs.
func maskPasswordSimple(dsn string) string {
	atIndex := strings.Index(dsn, "@")
	if atIndex == -1 {
		return dsn
	}
	beforeAt := dsn[:atIndex]
	colonIndex := strings.LastIndex(beforeAt, ":")
	if colonIndex == -1 {
		return dsn
	}
	// the colon of the scheme is not a password separator
	if protocolEnd := strings.Index(dsn, "://"); protocolEnd != -1 && colonIndex < protocolEnd+3 {
		return dsn
	}
	return dsn[:colonIndex+1] + "***" + dsn[atIndex:]
}
