package segment

import (
	"fmt"
	"sort"

	"github.com/hupe1980/chromad/codes"
)

// Type identifies the storage engine backing a segment.
type Type uint8

const (
	// TypeInvalid is the zero value and never appears in a validated
	// segment.
	TypeInvalid Type = iota
	// TypeHnswDistributed is a distributed HNSW vector index segment.
	TypeHnswDistributed
	// TypeBlockfileRecord is a blockfile-backed record log segment.
	TypeBlockfileRecord
	// TypeSqlite is a SQLite-backed metadata segment.
	TypeSqlite
	// TypeBlockfileMetadata is a blockfile-backed metadata segment.
	TypeBlockfileMetadata
)

// typeStrings is the single bidirectional table between segment types and
// their canonical wire strings. Adding a segment kind means adding one row
// here; both directions and Types derive from it.
var typeStrings = map[Type]string{
	TypeHnswDistributed:   "urn:chroma:segment/vector/hnsw-distributed",
	TypeBlockfileRecord:   "urn:chroma:segment/record/blockfile",
	TypeSqlite:            "urn:chroma:segment/metadata/sqlite",
	TypeBlockfileMetadata: "urn:chroma:segment/metadata/blockfile",
}

var stringTypes = func() map[string]Type {
	m := make(map[string]Type, len(typeStrings))
	for t, s := range typeStrings {
		m[s] = t
	}

	return m
}()

// Types returns all known segment types in stable order.
func Types() []Type {
	types := make([]Type, 0, len(typeStrings))
	for t := range typeStrings {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// String returns the canonical wire string of the type.
func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}

	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports whether t is a member of the known type set.
func (t Type) Valid() bool {
	_, ok := typeStrings[t]
	return ok
}

// InvalidTypeError reports a wire type string outside the canonical set.
type InvalidTypeError struct {
	// Value is the offending wire string.
	Value string
}

// Error implements the error interface.
func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid segment type %q", e.Value)
}

// Code implements codes.Coder.
func (e *InvalidTypeError) Code() codes.Code {
	return codes.InvalidArgument
}

// TypeFromString maps a canonical wire string to its Type. Unknown strings,
// including casing or whitespace variants of known ones, yield an
// InvalidTypeError.
func TypeFromString(s string) (Type, error) {
	if t, ok := stringTypes[s]; ok {
		return t, nil
	}

	return TypeInvalid, &InvalidTypeError{Value: s}
}
