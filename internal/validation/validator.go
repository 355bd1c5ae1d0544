package validation

import (
	"encoding/json"

	"github.com/rendis/flowconv/pkg/schema"
)

// WorkflowValidator orchestrates the two-stage validation pipeline:
// 1. Structural (JSON Schema)
// 2. Semantic (node/link consistency per graph scope)
// It separates "tolerate malformed input" from "transform a well-formed
// graph": only documents that pass both stages reach the converter.
type WorkflowValidator struct {
	jsonSchema *JSONSchemaValidator
}

// NewWorkflowValidator creates a WorkflowValidator.
func NewWorkflowValidator() (*WorkflowValidator, error) {
	jsv, err := NewJSONSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &WorkflowValidator{jsonSchema: jsv}, nil
}

// Validate runs both stages on a decoded JSON document. Structural errors
// short-circuit: the semantic stage is skipped on a malformed shape.
func (wv *WorkflowValidator) Validate(doc any) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	if err := wv.jsonSchema.ValidateDocument(doc); err != nil {
		appendStructural(result, err)
		return result
	}

	wf, err := Decode(doc)
	if err != nil {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return result
	}

	result.Merge(validateSemantic(wf))
	return result
}

// ValidateAndDecode validates a decoded JSON document and, on success,
// returns the strongly-typed workflow for conversion.
func (wv *WorkflowValidator) ValidateAndDecode(doc any) (*schema.UIWorkflow, error) {
	if result := wv.Validate(doc); !result.Valid() {
		return nil, result.ToError()
	}
	return Decode(doc)
}

// Decode converts a loosely-typed decoded JSON document into the typed
// UIWorkflow via a JSON round-trip.
func Decode(doc any) (*schema.UIWorkflow, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "document is not JSON-serializable").WithCause(err)
	}
	var wf schema.UIWorkflow
	if err := json.Unmarshal(b, &wf); err != nil {
		return nil, schema.NewError(schema.ErrCodeValidation, err.Error()).WithCause(err)
	}
	return &wf, nil
}

// appendStructural flattens a structural ConvertError into result issues.
func appendStructural(result *schema.ValidationResult, err error) {
	cErr, ok := err.(*schema.ConvertError)
	if !ok {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return
	}

	if cErr.Details != nil {
		if violations, ok := cErr.Details["violations"].([]string); ok {
			for _, v := range violations {
				result.AddError("/", schema.ErrCodeValidation, v)
			}
			return
		}
	}
	result.AddError("/", cErr.Code, cErr.Message)
}
