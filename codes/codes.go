// Package codes defines the stable error codes carried by chromad errors.
//
// Every typed error in this module reports one of these codes so that a
// transport layer can map failures onto its own status scheme without
// inspecting error strings. The numbering follows the gRPC convention.
package codes

import (
	"errors"
	"strconv"
)

// Code is a stable machine-readable classification of an error.
type Code uint32

const (
	// OK means no error.
	OK Code = 0
	// Canceled means the operation was canceled by the caller.
	Canceled Code = 1
	// Unknown marks errors that carry no classification of their own.
	Unknown Code = 2
	// InvalidArgument means the caller supplied a malformed value.
	InvalidArgument Code = 3
	// DeadlineExceeded means the operation ran past its deadline.
	DeadlineExceeded Code = 4
	// NotFound means a referenced entity does not exist.
	NotFound Code = 5
	// AlreadyExists means an entity with the same identity is present.
	AlreadyExists Code = 6
	// PermissionDenied means the caller may not perform the operation.
	PermissionDenied Code = 7
	// ResourceExhausted means a quota or capacity limit was hit.
	ResourceExhausted Code = 8
	// FailedPrecondition means the system is not in a state the
	// operation requires.
	FailedPrecondition Code = 9
	// Aborted means the operation lost a concurrency race and can be
	// retried at a higher level.
	Aborted Code = 10
	// OutOfRange means a value fell outside its permitted interval.
	OutOfRange Code = 11
	// Unimplemented means the operation is not supported.
	Unimplemented Code = 12
	// Internal means an invariant expected by the module was broken.
	Internal Code = 13
	// Unavailable means a backend is temporarily unreachable.
	Unavailable Code = 14
	// DataLoss means stored data is unrecoverable or corrupt.
	DataLoss Code = 15
	// Unauthenticated means the caller has no valid credentials.
	Unauthenticated Code = 16
)

var codeNames = map[Code]string{
	OK:                 "OK",
	Canceled:           "CANCELED",
	Unknown:            "UNKNOWN",
	InvalidArgument:    "INVALID_ARGUMENT",
	DeadlineExceeded:   "DEADLINE_EXCEEDED",
	NotFound:           "NOT_FOUND",
	AlreadyExists:      "ALREADY_EXISTS",
	PermissionDenied:   "PERMISSION_DENIED",
	ResourceExhausted:  "RESOURCE_EXHAUSTED",
	FailedPrecondition: "FAILED_PRECONDITION",
	Aborted:            "ABORTED",
	OutOfRange:         "OUT_OF_RANGE",
	Unimplemented:      "UNIMPLEMENTED",
	Internal:           "INTERNAL",
	Unavailable:        "UNAVAILABLE",
	DataLoss:           "DATA_LOSS",
	Unauthenticated:    "UNAUTHENTICATED",
}

// String returns the canonical name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "CODE(" + strconv.FormatUint(uint64(c), 10) + ")"
}

// Coder is implemented by errors that classify themselves. Wrapping errors
// should delegate to the code of their cause where they merely add context.
type Coder interface {
	error

	// Code returns the stable classification of the error.
	Code() Code
}

// Of reports the code of err. A nil error is OK, an error chain without a
// Coder is Unknown, otherwise the outermost Coder in the chain decides.
func Of(err error) Code {
	if err == nil {
		return OK
	}

	var coder Coder
	if errors.As(err, &coder) {
		return coder.Code()
	}

	return Unknown
}
