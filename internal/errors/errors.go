// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure of the command/response protocol is reported with a machine-readable
// Kind so callers can tell a malformed page from a missing surface or a render that
// was rejected because another one is still waiting for the user.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// MalformedCommand indicates a command or page description that failed validation.
	MalformedCommand Kind = "malformed_command"
	// NoActiveSurface indicates a render before Start or after Terminate.
	NoActiveSurface Kind = "no_active_surface"
	// AlreadyPending indicates a render requested while a prior one is unresolved.
	AlreadyPending Kind = "already_pending"
	// Terminated indicates a pending render rejected by engine shutdown.
	Terminated Kind = "terminated"
	// RenderFailed indicates the surface could not display a page.
	RenderFailed Kind = "render_failed"
	// BridgeFailed indicates a system command could not be delivered to the host.
	BridgeFailed Kind = "bridge_failed"
	// WorkerFailed indicates the processing worker crashed or could not start.
	WorkerFailed Kind = "worker_failed"
	// ConfigInvalid indicates an unusable configuration value.
	ConfigInvalid Kind = "config_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E of the same kind, so errors.Is(err, errors.New(k, ""))
// matches on category alone.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &E{Kind: kind})
}
