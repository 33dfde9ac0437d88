// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"footprint/cli/internal/keychain"

	"github.com/spf13/cobra"
)

// forgetCmd removes every secret footprint stored.
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the stored bridge token and donation database",
	Long: `The forget command removes everything footprint keeps in the OS keychain:
- the access token of the gRPC host
- the donation database connection string`,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearAll(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Stored secrets have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}
