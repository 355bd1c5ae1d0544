package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/flowconv/pkg/schema"
)

// uiWorkflowSchemaJSON is the JSON Schema for editor-format documents.
// Embedded as a constant to avoid filesystem dependencies. It checks the
// shapes the converter depends on (nodes/links arrays, link tuple arity,
// subgraph definition bodies); graph-level consistency is the semantic
// pass's job.
const uiWorkflowSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowconv.dev/schemas/ui-workflow.json",
  "type": "object",
  "required": ["nodes", "links"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "links": {
      "type": "array",
      "items": { "$ref": "#/$defs/link" }
    },
    "definitions": {
      "type": "object",
      "properties": {
        "subgraphs": {
          "type": "array",
          "items": { "$ref": "#/$defs/subgraph" }
        }
      }
    },
    "version": { "type": "number" },
    "extra": { "type": "object" }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": { "type": "integer" },
        "type": { "type": "string", "minLength": 1 },
        "mode": { "type": "integer" },
        "inputs": {
          "type": "array",
          "items": { "$ref": "#/$defs/input" }
        },
        "outputs": { "type": "array" },
        "widgets_values": {},
        "subgraph": { "$ref": "#/$defs/subgraph" }
      }
    },
    "input": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "type": { "type": "string" },
        "link": { "type": ["integer", "null"] },
        "value": {},
        "widget": {
          "type": "object",
          "properties": { "name": { "type": "string" } }
        }
      }
    },
    "link": {
      "type": "array",
      "minItems": 5,
      "prefixItems": [
        { "type": "integer" },
        { "type": "integer" },
        { "type": "integer" },
        { "type": "integer" },
        { "type": "integer" }
      ]
    },
    "subgraph": {
      "type": "object",
      "required": ["nodes", "links"],
      "properties": {
        "id": { "type": "string" },
        "name": { "type": "string" },
        "inputNode": { "$ref": "#/$defs/ionode" },
        "outputNode": { "$ref": "#/$defs/ionode" },
        "inputs": {
          "type": "array",
          "items": { "$ref": "#/$defs/port" }
        },
        "outputs": {
          "type": "array",
          "items": { "$ref": "#/$defs/port" }
        },
        "nodes": {
          "type": "array",
          "items": { "$ref": "#/$defs/node" }
        },
        "links": {
          "type": "array",
          "items": { "$ref": "#/$defs/link" }
        }
      }
    },
    "ionode": {
      "type": "object",
      "properties": { "id": { "type": "integer" } }
    },
    "port": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "id": { "type": "string" },
        "name": { "type": "string" },
        "type": { "type": "string" }
      }
    }
  }
}`

// JSONSchemaValidator validates editor-format documents against the embedded
// JSON Schema (Draft 2020-12). It is safe for concurrent use: the compiled
// schema is immutable after construction.
type JSONSchemaValidator struct {
	uiSchema *jsonschema.Schema
}

// NewJSONSchemaValidator compiles the UI workflow schema.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(uiWorkflowSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal ui workflow schema: %w", err)
	}
	if err := c.AddResource("https://flowconv.dev/schemas/ui-workflow.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add ui workflow schema resource: %w", err)
	}

	compiled, err := c.Compile("https://flowconv.dev/schemas/ui-workflow.json")
	if err != nil {
		return nil, fmt.Errorf("compile ui workflow schema: %w", err)
	}

	return &JSONSchemaValidator{uiSchema: compiled}, nil
}

// ValidateDocument validates a decoded JSON document against the UI schema.
func (v *JSONSchemaValidator) ValidateDocument(doc any) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "document is nil")
	}

	val, err := toJSONValue(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize document").WithCause(err)
	}

	if err := v.uiSchema.Validate(val); err != nil {
		return toConvertError(err)
	}
	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toConvertError converts a jsonschema.ValidationError into a ConvertError
// with instance locations in the messages.
func toConvertError(err error) *schema.ConvertError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}
	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
