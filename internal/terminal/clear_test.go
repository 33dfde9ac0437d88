// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLinesFor(t *testing.T) {
	tests := []struct {
		length, width, want int
	}{
		{0, 80, 1},
		{80, 80, 1},
		{81, 80, 2},
		{200, 80, 3},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := LinesFor(tt.length, tt.width); got != tt.want {
			t.Errorf("LinesFor(%d, %d) = %d, want %d", tt.length, tt.width, got, tt.want)
		}
	}
}

func TestClearPreviousLinesOnBuffer(t *testing.T) {
	var buf bytes.Buffer
	ClearPreviousLines(&buf, 100)

	out := buf.String()
	if got := strings.Count(out, "\x1b[2K"); got != 3 {
		t.Errorf("cleared %d lines, want 3", got)
	}
	if got := strings.Count(out, "\x1b[1A"); got != 2 {
		t.Errorf("moved up %d lines, want 2", got)
	}
}

func TestIsInteractiveOnBuffer(t *testing.T) {
	if IsInteractive(&bytes.Buffer{}) {
		t.Fatal("a buffer is not a terminal")
	}
}
