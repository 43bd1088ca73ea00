// Package metadata provides the typed key/value model attached to segments.
//
// Values are scalar only: booleans, integers, floats and strings. The wire
// form is converted through FromWire, which rejects values that do not carry
// exactly one variant.
package metadata

import (
	"sort"
	"strconv"
)

// Kind identifies the type of a Value.
type Kind uint8

const (
	// KindInvalid is the zero value and marks an unset Value.
	KindInvalid Kind = iota
	// KindBool is a boolean value.
	KindBool
	// KindInt is a signed 64-bit integer value.
	KindInt
	// KindFloat is a 64-bit float value.
	KindFloat
	// KindString is a string value.
	KindString
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a typed metadata value. The zero value is invalid; construct
// values with Bool, Int, Float or String.
type Value struct {
	Kind Kind    `json:"k"`
	B    bool    `json:"b,omitempty"`
	I64  int64   `json:"i,omitempty"`
	F64  float64 `json:"f,omitempty"`
	S    string  `json:"s,omitempty"`
}

// Bool creates a boolean value.
func Bool(v bool) Value {
	return Value{Kind: KindBool, B: v}
}

// Int creates an integer value.
func Int(v int64) Value {
	return Value{Kind: KindInt, I64: v}
}

// Float creates a float value.
func Float(v float64) Value {
	return Value{Kind: KindFloat, F64: v}
}

// String creates a string value.
func String(v string) Value {
	return Value{Kind: KindString, S: v}
}

// AsBool returns the boolean value and whether the kind matched.
func (v Value) AsBool() (bool, bool) {
	return v.B, v.Kind == KindBool
}

// AsInt64 returns the integer value and whether the kind matched.
func (v Value) AsInt64() (int64, bool) {
	return v.I64, v.Kind == KindInt
}

// AsFloat64 returns the float value and whether the kind matched.
func (v Value) AsFloat64() (float64, bool) {
	return v.F64, v.Kind == KindFloat
}

// AsString returns the string value and whether the kind matched.
func (v Value) AsString() (string, bool) {
	return v.S, v.Kind == KindString
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}

	switch v.Kind {
	case KindBool:
		return v.B == o.B
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		return v.F64 == o.F64
	case KindString:
		return v.S == o.S
	default:
		return true
	}
}

// GoString returns a debug representation of the value.
func (v Value) GoString() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.S)
	default:
		return "<invalid>"
	}
}

// Metadata maps keys to typed values.
type Metadata map[string]Value

// Clone returns a deep copy of the metadata. Cloning nil metadata returns
// nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}

	clone := make(Metadata, len(m))
	for k, v := range m {
		clone[k] = v
	}

	return clone
}

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Equal reports whether two metadata documents hold the same entries.
func (m Metadata) Equal(o Metadata) bool {
	if len(m) != len(o) {
		return false
	}

	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}

	return true
}
