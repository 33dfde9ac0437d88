// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the messages exchanged between the processing engine,
// the visualisation engine and the host bridge.
//
// Every union on the wire (commands, payloads, pages, prompts) is a closed set of
// Go types behind an interface with an unexported marker method, so a switch at
// the boundary can be exhaustive. Values are encoded as JSON objects tagged with
// a "__type__" discriminator.
package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Wire discriminators.
const (
	TypeCommandUIRender     = "CommandUIRender"
	TypeCommandSystemDonate = "CommandSystemDonate"
	TypeCommandSystemExit   = "CommandSystemExit"
	TypeResponse            = "Response"

	TypePayloadVoid   = "PayloadVoid"
	TypePayloadTrue   = "PayloadTrue"
	TypePayloadFalse  = "PayloadFalse"
	TypePayloadString = "PayloadString"
	TypePayloadJSON   = "PayloadJSON"

	TypePageDonation = "PropsUIPageDonation"
	TypePageEnd      = "PropsUIPageEnd"
	TypeHeader       = "PropsUIHeader"
	TypeFooter       = "PropsUIFooter"

	TypePromptRadioInput   = "PropsUIPromptRadioInput"
	TypePromptFileInput    = "PropsUIPromptFileInput"
	TypePromptConfirm      = "PropsUIPromptConfirm"
	TypePromptConsentForm  = "PropsUIPromptConsentForm"
	TypePromptInstructions = "PropsUIPromptInstructions"
)

// NewID returns a fresh correlation id.
func NewID() string { return uuid.NewString() }

// Translatable carries one piece of copy in several locales.
type Translatable struct {
	Translations map[string]string `json:"translations"`
}

// marshalTagged encodes v as a JSON object with "__type__" as its first member.
// v must encode to an object and must not itself implement json.Marshaler
// through the same method, so callers pass a method-less alias of their type.
func marshalTagged(typ string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, _ := json.Marshal(typ)
	out := make([]byte, 0, len(body)+len(head)+14)
	out = append(out, `{"__type__":`...)
	out = append(out, head...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
		return out, nil
	}
	return append(out, '}'), nil
}

type envelope struct {
	Type string `json:"__type__"`
}
