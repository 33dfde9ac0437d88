// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides utilities for terminal operations such as clearing text.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is used when w is not a terminal.
const DefaultWidth = 80

// Width reports the column count of w, or DefaultWidth when w is not a terminal.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}

// IsInteractive reports whether v (a reader or writer) is an attached terminal.
func IsInteractive(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// LinesFor returns how many rows text of the given length occupies at width.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = DefaultWidth
	}
	n := (textLength + width - 1) / width
	if n < 1 {
		n = 1
	}
	return n
}

// ClearPreviousLines clears text that was previously printed to w, typically a
// prompt plus the answer the user typed. After Enter the cursor sits on a fresh
// line below the input, so one extra line is cleared.
func ClearPreviousLines(w io.Writer, textLength int) {
	ClearLines(w, LinesFor(textLength, Width(w))+1)
}

// ClearLines moves up and clears n lines, leaving the cursor at the start of the
// topmost cleared line.
func ClearLines(w io.Writer, n int) {
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
