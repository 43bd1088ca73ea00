package chromad

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/chromad/codes"
)

// ErrNoCheckpoint is returned by RestoreLatest when the commit store
// has no committed version yet.
var ErrNoCheckpoint = errors.New("chromad: no checkpoint committed")

// DuplicateSegmentError is returned when a request would admit a
// segment ID twice.
type DuplicateSegmentError struct {
	ID uuid.UUID
}

// Error implements the error interface.
func (e *DuplicateSegmentError) Error() string {
	return fmt.Sprintf("duplicate segment ID %s", e.ID)
}

// Code implements codes.Coder.
func (e *DuplicateSegmentError) Code() codes.Code {
	return codes.AlreadyExists
}

// UnknownSegmentError is returned when an operation names a segment ID
// that is not in the catalog.
type UnknownSegmentError struct {
	ID uuid.UUID
}

// Error implements the error interface.
func (e *UnknownSegmentError) Error() string {
	return fmt.Sprintf("unknown segment ID %s", e.ID)
}

// Code implements codes.Coder.
func (e *UnknownSegmentError) Code() codes.Code {
	return codes.NotFound
}

// MissingDependencyError is returned by operations that need a backend
// the worker was built without.
type MissingDependencyError struct {
	// Dependency names the missing option, e.g. "storage".
	Dependency string
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return "no " + e.Dependency + " configured"
}

// Code implements codes.Coder.
func (e *MissingDependencyError) Code() codes.Code {
	return codes.FailedPrecondition
}

// CheckpointFormatError is returned when a checkpoint file cannot be
// decoded: torn header, unknown codec, schema drift or corrupt payload.
type CheckpointFormatError struct {
	Reason string

	cause error
}

// Error implements the error interface.
func (e *CheckpointFormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("checkpoint format: %s: %v", e.Reason, e.cause)
	}

	return fmt.Sprintf("checkpoint format: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *CheckpointFormatError) Unwrap() error {
	return e.cause
}

// Code implements codes.Coder.
func (e *CheckpointFormatError) Code() codes.Code {
	return codes.DataLoss
}
