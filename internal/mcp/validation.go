package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator validates tool arguments against a compiled JSON Schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles a schema definition.
func NewSchemaValidator(name string, schemaMap map[string]interface{}) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	schemaJSON, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	url := name + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &SchemaValidator{schema: schema}, nil
}

// Validate checks args, reporting the deepest failing location.
func (v *SchemaValidator) Validate(args interface{}) error {
	err := v.schema.Validate(args)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		leaf := ve
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		return &ValidationError{
			Field:   leaf.InstanceLocation,
			Message: leaf.Message,
		}
	}
	return fmt.Errorf("validation failed: %w", err)
}

// ValidationError is a schema violation in tool arguments.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}
