package segment

import (
	"errors"
	"fmt"

	"github.com/hupe1980/chromad/codes"
)

// ErrNilDescriptor is returned when a nil descriptor reaches the converter.
var ErrNilDescriptor = errors.New("nil segment descriptor")

// InvalidIdentifierError reports a missing or malformed UUID field on a
// descriptor. A missing required identifier is classified the same way as a
// malformed one; Value is empty in that case.
type InvalidIdentifierError struct {
	// Field names the descriptor field, "id" or "collection".
	Field string
	// Value is the offending wire string, empty when the field was absent.
	Value string
}

// Error implements the error interface.
func (e *InvalidIdentifierError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s identifier: missing", e.Field)
	}

	return fmt.Sprintf("invalid %s identifier %q", e.Field, e.Value)
}

// Code implements codes.Coder.
func (e *InvalidIdentifierError) Code() codes.Code {
	return codes.InvalidArgument
}

// ConfigurationParseError reports a configuration payload that is not
// syntactically valid JSON. Schema validation is explicitly not performed
// at this boundary.
type ConfigurationParseError struct {
	cause error
}

// Error implements the error interface.
func (e *ConfigurationParseError) Error() string {
	return fmt.Sprintf("parse segment configuration: %v", e.cause)
}

// Unwrap returns the underlying decode error.
func (e *ConfigurationParseError) Unwrap() error {
	return e.cause
}

// Code implements codes.Coder.
func (e *ConfigurationParseError) Code() codes.Code {
	return codes.InvalidArgument
}

// ConversionError wraps a failure from a delegated converter (metadata or
// scope). The classification of the inner error is preserved.
type ConversionError struct {
	// Field names the descriptor field whose conversion failed.
	Field string

	cause error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert segment %s: %v", e.Field, e.cause)
}

// Unwrap returns the delegated converter's error.
func (e *ConversionError) Unwrap() error {
	return e.cause
}

// Code implements codes.Coder by delegating to the wrapped error.
func (e *ConversionError) Code() codes.Code {
	return codes.Of(e.cause)
}
