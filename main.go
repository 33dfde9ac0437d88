// Package main is the entry point for the footprint CLI.
package main

import (
	"footprint/cli/cmd"
)

func main() {
	cmd.Execute()
}
