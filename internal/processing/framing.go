// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package processing

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize bounds one frame. Consent forms carry whole extracted tables.
const MaxFrameSize = 16 << 20

// FrameReader reads newline-delimited JSON frames.
type FrameReader struct {
	sc *bufio.Scanner
}

func NewFrameReader(r io.Reader) *FrameReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxFrameSize)
	return &FrameReader{sc: sc}
}

// Next returns the next non-empty frame, or io.EOF once the stream ends.
func (f *FrameReader) Next() ([]byte, error) {
	for f.sc.Scan() {
		line := bytes.TrimSpace(f.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		return append([]byte(nil), line...), nil
	}
	if err := f.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// WriteFrame writes frame as a single line.
func WriteFrame(w io.Writer, frame []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, frame); err != nil {
		return fmt.Errorf("frame is not JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
