// Package scope classifies the kind of data a segment serves.
package scope

import (
	"fmt"

	"github.com/hupe1980/chromad/codes"
)

// Scope is the validated data kind of a segment.
type Scope uint8

const (
	// Vector marks segments backing a vector index.
	Vector Scope = iota
	// Metadata marks segments backing metadata storage.
	Metadata
)

// String returns the canonical name of the scope.
func (s Scope) String() string {
	switch s {
	case Vector:
		return "VECTOR"
	case Metadata:
		return "METADATA"
	default:
		return fmt.Sprintf("Scope(%d)", uint8(s))
	}
}

// Code returns the wire enum code of the scope.
func (s Scope) Code() int32 {
	return int32(s)
}

// ConversionError reports a wire scope code outside the known set.
type ConversionError struct {
	// WireCode is the offending value as received.
	WireCode int32
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid segment scope code %d", e.WireCode)
}

// Code implements codes.Coder.
func (e *ConversionError) Code() codes.Code {
	return codes.InvalidArgument
}

// FromCode maps a wire enum code to a Scope. Codes outside the known set
// yield a ConversionError.
func FromCode(code int32) (Scope, error) {
	switch code {
	case 0:
		return Vector, nil
	case 1:
		return Metadata, nil
	default:
		return 0, &ConversionError{WireCode: code}
	}
}
