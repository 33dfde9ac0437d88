// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := stderrors.New("boom")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "plain error", err: base, want: ""},
		{name: "typed error", err: New(AlreadyPending, "busy"), want: AlreadyPending},
		{name: "wrapped typed error", err: fmt.Errorf("render: %w", Wrap(MalformedCommand, "bad page", base)), want: MalformedCommand},
		{name: "nil", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	base := stderrors.New("dial refused")
	err := fmt.Errorf("send: %w", Wrap(BridgeFailed, "host unreachable", base))

	if !IsKind(err, BridgeFailed) {
		t.Fatalf("expected %v to carry kind %s", err, BridgeFailed)
	}
	if IsKind(err, Terminated) {
		t.Fatalf("did not expect %v to carry kind %s", err, Terminated)
	}
	if !stderrors.Is(err, base) {
		t.Fatalf("expected the underlying error to stay reachable")
	}
}

func TestErrorString(t *testing.T) {
	if got, want := New(NoActiveSurface, "engine not started").Error(), "no_active_surface: engine not started"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := Wrap(WorkerFailed, "exit", stderrors.New("status 2")).Error(), "worker_failed: exit: status 2"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
