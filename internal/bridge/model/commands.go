// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	ferrors "footprint/cli/internal/errors"
)

// Command is a request issued by the processing engine. Commands are values and
// are never mutated after they are issued.
type Command interface {
	CommandID() string
	CommandType() string
	isCommand()
}

// CommandUI is a command handled by the visualisation engine.
type CommandUI interface {
	Command
	isUI()
}

// CommandSystem is a command forwarded to the host bridge.
type CommandSystem interface {
	Command
	isSystem()
}

// CommandUIRender asks the visualisation engine to show a page and report the
// user's answer.
type CommandUIRender struct {
	ID   string `json:"id"`
	Page Page   `json:"page"`
}

// CommandSystemDonate hands a donation to the host. JSONString is the donated
// document, already encoded.
type CommandSystemDonate struct {
	ID         string `json:"id"`
	Key        string `json:"key"`
	JSONString string `json:"json_string"`
}

// CommandSystemExit tells the host the flow has finished.
type CommandSystemExit struct {
	ID   string `json:"id"`
	Code int    `json:"code"`
	Info string `json:"info"`
}

// NewRender stamps a render command with a fresh id.
func NewRender(page Page) CommandUIRender { return CommandUIRender{ID: NewID(), Page: page} }

// NewDonate stamps a donate command with a fresh id.
func NewDonate(key, jsonString string) CommandSystemDonate {
	return CommandSystemDonate{ID: NewID(), Key: key, JSONString: jsonString}
}

// NewExit stamps an exit command with a fresh id.
func NewExit(code int, info string) CommandSystemExit {
	return CommandSystemExit{ID: NewID(), Code: code, Info: info}
}

func (c CommandUIRender) CommandID() string     { return c.ID }
func (c CommandSystemDonate) CommandID() string { return c.ID }
func (c CommandSystemExit) CommandID() string   { return c.ID }

func (CommandUIRender) CommandType() string     { return TypeCommandUIRender }
func (CommandSystemDonate) CommandType() string { return TypeCommandSystemDonate }
func (CommandSystemExit) CommandType() string   { return TypeCommandSystemExit }

func (CommandUIRender) isCommand()     {}
func (CommandSystemDonate) isCommand() {}
func (CommandSystemExit) isCommand()   {}

func (CommandUIRender) isUI() {}

func (CommandSystemDonate) isSystem() {}
func (CommandSystemExit) isSystem()   {}

func (c CommandUIRender) MarshalJSON() ([]byte, error) {
	type plain CommandUIRender
	return marshalTagged(TypeCommandUIRender, plain(c))
}

func (c CommandSystemDonate) MarshalJSON() ([]byte, error) {
	type plain CommandSystemDonate
	return marshalTagged(TypeCommandSystemDonate, plain(c))
}

func (c CommandSystemExit) MarshalJSON() ([]byte, error) {
	type plain CommandSystemExit
	return marshalTagged(TypeCommandSystemExit, plain(c))
}

// ErrorInfo is the wire form of a typed error returned instead of a payload.
type ErrorInfo struct {
	Kind    ferrors.Kind `json:"kind"`
	Message string       `json:"message"`
}

// Response answers exactly one command. Command is the command being answered,
// unchanged. Either Payload or Error is set.
type Response struct {
	Command Command
	Payload Payload
	Error   *ErrorInfo
}

// NewResponse builds a successful response.
func NewResponse(cmd Command, p Payload) Response { return Response{Command: cmd, Payload: p} }

// ErrorResponse builds a response reporting err. Untyped errors are reported as
// worker failures.
func ErrorResponse(cmd Command, err error) Response {
	kind := ferrors.KindOf(err)
	if kind == "" {
		kind = ferrors.WorkerFailed
	}
	return Response{Command: cmd, Error: &ErrorInfo{Kind: kind, Message: err.Error()}}
}

// Err returns the reported error as a typed error, or nil.
func (r Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return ferrors.New(r.Error.Kind, r.Error.Message)
}
