// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"

	"footprint/cli/internal/bridge/model"

	"github.com/spf13/cobra"
)

var printSchema bool

// validateCmd checks a command frame the way the port does before acting on it.
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a command JSON file",
	Long: `The validate command decodes a command frame, checks it against the command schema
and the page rules, and prints what kind of command it is. Use "-" to read from stdin.
With --schema it prints the JSON schema instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if printSchema {
			_, err := out.Write(model.CommandSchema())
			return err
		}
		if len(args) == 0 {
			return fmt.Errorf("a file to validate is required")
		}

		data, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		c, err := model.DecodeCommand(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, describeCommand(c))
		return nil
	},
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func describeCommand(c model.Command) string {
	switch cmd := c.(type) {
	case model.CommandUIRender:
		if d, ok := cmd.Page.(model.PageDonation); ok {
			return fmt.Sprintf("%s %s: %s with %s", cmd.CommandType(), cmd.ID, d.PageType(), d.Body.PromptType())
		}
		return fmt.Sprintf("%s %s: %s", cmd.CommandType(), cmd.ID, cmd.Page.PageType())
	case model.CommandSystemDonate:
		return fmt.Sprintf("%s %s: key %q, %d bytes", cmd.CommandType(), cmd.ID, cmd.Key, len(cmd.JSONString))
	case model.CommandSystemExit:
		return fmt.Sprintf("%s %s: code %d, %q", cmd.CommandType(), cmd.ID, cmd.Code, cmd.Info)
	}
	return c.CommandType()
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&printSchema, "schema", false, "Print the command JSON schema")
}
