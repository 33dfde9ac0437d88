// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// BridgeErrorType represents the category of a host bridge failure.
type BridgeErrorType int

const (
	BridgeErrorUnknown BridgeErrorType = iota
	BridgeErrorNetwork
	BridgeErrorAuth
	BridgeErrorTimeout
	BridgeErrorUnavailable
)

// ParseBridgeError categorizes a bridge error message.
func ParseBridgeError(errMsg string) BridgeErrorType {
	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "connection reset") || strings.Contains(lower, "connection refused") || strings.Contains(lower, "rst_stream") {
		return BridgeErrorNetwork
	}
	if strings.Contains(lower, "unavailable") {
		return BridgeErrorUnavailable
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") {
		return BridgeErrorTimeout
	}
	if strings.Contains(lower, "unauthenticated") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "noauth") {
		return BridgeErrorAuth
	}

	return BridgeErrorUnknown
}

// FormatBridgeError formats a bridge failure in a user-friendly way.
// Donations are kept on this device when the host cannot be reached, which is
// why the message never suggests that data was lost.
func FormatBridgeError(errMsg string) string {
	errType := ParseBridgeError(errMsg)

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Host Not Reached"))
	builder.WriteString("\n\n")

	switch errType {
	case BridgeErrorNetwork:
		builder.WriteString("The connection to the donation host was interrupted.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • The host application is not running\n")
		builder.WriteString("  • A firewall or proxy closed the connection\n")

	case BridgeErrorUnavailable:
		builder.WriteString("The donation host is currently unavailable.\n")

	case BridgeErrorTimeout:
		builder.WriteString("The donation host did not answer in time.\n")

	case BridgeErrorAuth:
		builder.WriteString("The donation host rejected the credentials.\n")
		builder.WriteString("  • Store a fresh token with FOOTPRINT_BRIDGE_TOKEN or the keychain\n")

	default:
		builder.WriteString("The command could not be delivered to the donation host.\n")
	}

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Your data stayed on this device. Run 'footprint port --bridge fake' to continue offline"))
	builder.WriteString("\n")

	if strings.TrimSpace(errMsg) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}

	return builder.String()
}

// PresentBridgeError displays a formatted bridge error.
func PresentBridgeError(errMsg string) {
	fmt.Println()
	fmt.Println(FormatBridgeError(errMsg))
	fmt.Println()
}
