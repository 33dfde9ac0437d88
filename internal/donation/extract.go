// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package donation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is how extracted timestamps are shown.
const TimeLayout = "2006-01-02 15:04:05"

// Entry is one leaf of a flattened JSON document.
type Entry struct {
	Key   string
	Value string
}

// Flat is a flattened JSON document in document order. Keys join the path with
// "-", list elements use their index.
type Flat []Entry

// Flatten flattens a JSON document. Strings are kept as is, numbers keep their
// literal text, booleans become "true"/"false" and null becomes "".
func Flatten(data []byte) (Flat, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out Flat
	if err := flatten(dec, "", &out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return out, nil
}

func flatten(dec *json.Decoder, prefix string, out *Flat) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		*out = append(*out, Entry{Key: prefix, Value: scalar(tok)})
		return nil
	}
	switch delim {
	case '{':
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return err
			}
			if err := flatten(dec, join(prefix, kt.(string)), out); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			if err := flatten(dec, join(prefix, strconv.Itoa(i)), out); err != nil {
				return err
			}
		}
	}
	_, err = dec.Token()
	return err
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "-" + key
}

func scalar(tok json.Token) string {
	switch v := tok.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// FindItem returns the value of the least nested key containing match, the
// first one in document order on ties. It returns "" when nothing matches.
func (f Flat) FindItem(match string) string {
	out := ""
	depth := math.MaxInt
	for _, e := range f {
		if !strings.Contains(e.Key, match) {
			continue
		}
		if d := strings.Count(e.Key, "-"); d < depth {
			depth = d
			out = e.Value
		}
	}
	return out
}

// FindItems returns the values of every key containing match, in document order.
func (f Flat) FindItems(match string) []string {
	var out []string
	for _, e := range f {
		if strings.Contains(e.Key, match) {
			out = append(out, e.Value)
		}
	}
	return out
}

// ConvertUnixTimestamp formats a unix timestamp in seconds as UTC. Input that
// is not a number is returned unchanged.
func ConvertUnixTimestamp(ts string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(ts), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ts
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC().Format(TimeLayout)
}

// objectEntries returns the members of a JSON object in document order.
func objectEntries(data []byte) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object")
	}
	var out []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
