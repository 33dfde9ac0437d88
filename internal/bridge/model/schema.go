// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	ferrors "footprint/cli/internal/errors"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/command.schema.json
var commandSchemaJSON []byte

const commandSchemaURL = "https://footprint.local/schema/command.schema.json"

var (
	schemaOnce    sync.Once
	commandSchema *jsonschema.Schema
	schemaErr     error
)

func compiledCommandSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(commandSchemaURL, bytes.NewReader(commandSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load command schema: %w", err)
			return
		}
		commandSchema, schemaErr = c.Compile(commandSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile command schema: %w", schemaErr)
		}
	})
	return commandSchema, schemaErr
}

// CommandSchema returns the JSON schema every command frame must satisfy.
func CommandSchema() []byte { return bytes.Clone(commandSchemaJSON) }

// ValidateCommand checks data against the command schema.
func ValidateCommand(data []byte) error {
	schema, err := compiledCommandSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return ferrors.Wrap(ferrors.MalformedCommand, "frame is not JSON", err)
	}
	if err := schema.Validate(doc); err != nil {
		return ferrors.Wrap(ferrors.MalformedCommand, "schema validation failed", err)
	}
	return nil
}
