// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"footprint/cli/internal/keychain"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// tokenCmd stores the access token the gRPC bridge presents to the host.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the access token for the gRPC host",
	Long: `The token command reads the access token issued by the research host and stores it
in the OS keychain. The token is read without echo when stdin is a terminal.
FOOTPRINT_BRIDGE_TOKEN overrides the stored token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("Access token: ")
		var raw string
		if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
			b, err := term.ReadPassword(fd)
			fmt.Println()
			if err != nil {
				return err
			}
			raw = string(b)
		} else {
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			raw = line
		}
		token := strings.TrimSpace(raw)
		if token == "" {
			return errors.New("token is required")
		}

		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Println("   Set FOOTPRINT_BRIDGE_TOKEN instead.")
			return err
		}
		if err := km.SaveBridgeToken(token); err != nil {
			return err
		}
		fmt.Println("✅ Token saved. Run 'footprint port --bridge grpc' to use it.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
