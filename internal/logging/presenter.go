// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	ferrors "footprint/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
// Typed errors get a short hint about what the user can do next.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", context, Mask(err.Error()))
	if hint := hintFor(ferrors.KindOf(err)); hint != "" {
		msg += "\n   " + hint
	}
	return msg
}

func hintFor(kind ferrors.Kind) string {
	switch kind {
	case ferrors.MalformedCommand:
		return "The processing script sent a page that could not be shown."
	case ferrors.NoActiveSurface:
		return "The screen was closed before the page could be shown."
	case ferrors.AlreadyPending:
		return "Another question is still waiting for your answer."
	case ferrors.Terminated:
		return "The session was closed while waiting for your answer."
	case ferrors.WorkerFailed:
		return "The processing script stopped unexpectedly. Try running 'footprint port' again."
	case ferrors.ConfigInvalid:
		return "Check your configuration file or FOOTPRINT_* environment variables."
	}
	return ""
}
