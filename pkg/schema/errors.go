package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeDuplicateNode     = "DUPLICATE_NODE"
	ErrCodeUnknownNode       = "UNKNOWN_NODE"
	ErrCodeMissingSubgraph   = "MISSING_SUBGRAPH"
	ErrCodeCycleDetected     = "CYCLE_DETECTED"
	ErrCodeDanglingReference = "DANGLING_REFERENCE"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ConvertError is the structured error type for all conversion failures.
// Every structural inconsistency in a caller-supplied document surfaces as
// one of these so the transport layer can map it to a client error instead
// of a server error.
type ConvertError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Scope   string         `json:"scope,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *ConvertError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Scope, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ConvertError) Unwrap() error {
	return e.Cause
}

// ClientFault reports whether the error is attributable to the supplied
// document rather than the converter itself.
func (e *ConvertError) ClientFault() bool {
	return e.Code != ErrCodeInternal
}

// NewError creates a new ConvertError.
func NewError(code, message string) *ConvertError {
	return &ConvertError{Code: code, Message: message}
}

// NewErrorf creates a new ConvertError with a formatted message.
func NewErrorf(code, format string, args ...any) *ConvertError {
	return &ConvertError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithScope attaches the graph scope the error occurred in ("" for the
// top-level graph, otherwise the colon-joined instance path).
func (e *ConvertError) WithScope(scope string) *ConvertError {
	e.Scope = scope
	return e
}

// WithCause attaches an underlying cause.
func (e *ConvertError) WithCause(err error) *ConvertError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *ConvertError) WithDetails(details map[string]any) *ConvertError {
	e.Details = details
	return e
}
