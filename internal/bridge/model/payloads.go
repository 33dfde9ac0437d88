// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"encoding/json"
	"fmt"
)

// Payload is the user's answer to a render command.
type Payload interface {
	PayloadType() string
	isPayload()
}

// PayloadVoid answers pages that have nothing to report, such as the end page.
type PayloadVoid struct{}

// PayloadTrue is a positive confirmation.
type PayloadTrue struct{}

// PayloadFalse is a negative confirmation or a skipped prompt.
type PayloadFalse struct{}

// PayloadString carries a single string, e.g. a chosen radio value or a file path.
type PayloadString struct {
	Value string `json:"value"`
}

// PayloadJSON carries a JSON document encoded as a string.
type PayloadJSON struct {
	Value string `json:"value"`
}

func (PayloadVoid) PayloadType() string   { return TypePayloadVoid }
func (PayloadTrue) PayloadType() string   { return TypePayloadTrue }
func (PayloadFalse) PayloadType() string  { return TypePayloadFalse }
func (PayloadString) PayloadType() string { return TypePayloadString }
func (PayloadJSON) PayloadType() string   { return TypePayloadJSON }

func (PayloadVoid) isPayload()   {}
func (PayloadTrue) isPayload()   {}
func (PayloadFalse) isPayload()  {}
func (PayloadString) isPayload() {}
func (PayloadJSON) isPayload()   {}

func (p PayloadVoid) MarshalJSON() ([]byte, error)  { return marshalTagged(TypePayloadVoid, struct{}{}) }
func (p PayloadTrue) MarshalJSON() ([]byte, error)  { return marshalTagged(TypePayloadTrue, struct{}{}) }
func (p PayloadFalse) MarshalJSON() ([]byte, error) { return marshalTagged(TypePayloadFalse, struct{}{}) }

func (p PayloadString) MarshalJSON() ([]byte, error) {
	type plain PayloadString
	return marshalTagged(TypePayloadString, plain(p))
}

func (p PayloadJSON) MarshalJSON() ([]byte, error) {
	type plain PayloadJSON
	return marshalTagged(TypePayloadJSON, plain(p))
}

// DecodePayload decodes a tagged payload object.
func DecodePayload(data []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case TypePayloadVoid:
		return PayloadVoid{}, nil
	case TypePayloadTrue:
		return PayloadTrue{}, nil
	case TypePayloadFalse:
		return PayloadFalse{}, nil
	case TypePayloadString:
		var p PayloadString
		err := json.Unmarshal(data, &p)
		return p, err
	case TypePayloadJSON:
		var p PayloadJSON
		err := json.Unmarshal(data, &p)
		return p, err
	}
	return nil, fmt.Errorf("unknown payload type %q", env.Type)
}
