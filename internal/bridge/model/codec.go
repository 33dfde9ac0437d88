// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"encoding/json"
	"fmt"

	ferrors "footprint/cli/internal/errors"
)

// DecodeCommand validates data against the command schema and decodes it.
// Every failure is a MalformedCommand error. A command without an id gets a
// fresh one.
func DecodeCommand(data []byte) (Command, error) {
	if err := ValidateCommand(data); err != nil {
		return nil, err
	}
	cmd, err := decodeCommand(data)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.MalformedCommand, "decode command", err)
	}
	if r, ok := cmd.(CommandUIRender); ok {
		if err := ValidatePage(r.Page); err != nil {
			return nil, ferrors.Wrap(ferrors.MalformedCommand, "invalid page", err)
		}
	}
	return cmd, nil
}

func decodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case TypeCommandUIRender:
		var w struct {
			ID   string          `json:"id"`
			Page json.RawMessage `json:"page"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		page, err := decodePage(w.Page)
		if err != nil {
			return nil, fmt.Errorf("page: %w", err)
		}
		return CommandUIRender{ID: withID(w.ID), Page: page}, nil
	case TypeCommandSystemDonate:
		var c CommandSystemDonate
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		c.ID = withID(c.ID)
		return c, nil
	case TypeCommandSystemExit:
		var c CommandSystemExit
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		c.ID = withID(c.ID)
		return c, nil
	}
	return nil, fmt.Errorf("unknown command type %q", env.Type)
}

func withID(id string) string {
	if id == "" {
		return NewID()
	}
	return id
}

// EncodeCommand encodes a command as a tagged JSON object.
func EncodeCommand(c Command) ([]byte, error) {
	if c == nil {
		return nil, ferrors.New(ferrors.MalformedCommand, "nil command")
	}
	return json.Marshal(c)
}

type responseWire struct {
	Type    string          `json:"__type__"`
	Command json.RawMessage `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	cmd, err := json.Marshal(r.Command)
	if err != nil {
		return nil, err
	}
	w := responseWire{Type: TypeResponse, Command: cmd, Error: r.Error}
	if r.Payload != nil {
		if w.Payload, err = json.Marshal(r.Payload); err != nil {
			return nil, err
		}
	}
	return json.Marshal(w)
}

// DecodeResponse decodes a response frame produced by EncodeResponse.
func DecodeResponse(data []byte) (Response, error) {
	var w responseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Response{}, err
	}
	if w.Type != TypeResponse {
		return Response{}, fmt.Errorf("unexpected frame type %q", w.Type)
	}
	var r Response
	if len(w.Command) > 0 && string(w.Command) != "null" {
		cmd, err := decodeCommand(w.Command)
		if err != nil {
			return Response{}, fmt.Errorf("command: %w", err)
		}
		r.Command = cmd
	}
	if len(w.Payload) > 0 && string(w.Payload) != "null" {
		p, err := DecodePayload(w.Payload)
		if err != nil {
			return Response{}, fmt.Errorf("payload: %w", err)
		}
		r.Payload = p
	}
	r.Error = w.Error
	if r.Payload == nil && r.Error == nil {
		return Response{}, fmt.Errorf("response carries neither payload nor error")
	}
	return r, nil
}

// EncodeResponse encodes a response frame.
func EncodeResponse(r Response) ([]byte, error) { return json.Marshal(r) }
