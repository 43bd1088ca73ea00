// Package wire defines the untrusted segment descriptors a worker receives
// from the coordinator.
//
// The structs mirror the transport payload field for field and perform no
// validation of their own. Conversion into the typed model, including all
// identifier, scope, metadata and configuration checks, lives in the segment
// package.
package wire

// Scope codes as they appear on the wire. The numbering is part of the
// protocol and must not change.
const (
	ScopeVector   int32 = 0
	ScopeMetadata int32 = 1
)

// FilePaths is the ordered list of storage paths registered for one file
// role of a segment. Order is meaningful and preserved end to end.
type FilePaths struct {
	Paths []string `json:"paths"`
}

// UpdateMetadataValue carries a single typed metadata value. Exactly one of
// the fields must be set; a value with none or several set is rejected
// during conversion.
type UpdateMetadataValue struct {
	StringValue *string  `json:"string_value,omitempty"`
	IntValue    *int64   `json:"int_value,omitempty"`
	FloatValue  *float64 `json:"float_value,omitempty"`
	BoolValue   *bool    `json:"bool_value,omitempty"`
}

// UpdateMetadata is the wire form of a metadata document.
type UpdateMetadata struct {
	Metadata map[string]*UpdateMetadataValue `json:"metadata"`
}

// Segment is an untrusted segment descriptor. All fields are raw wire
// values; in particular ID and Collection are unparsed strings and Type is
// the canonical type string, not an enum.
type Segment struct {
	ID                   string                `json:"id"`
	Type                 string                `json:"type"`
	Scope                int32                 `json:"scope"`
	Collection           *string               `json:"collection,omitempty"`
	Metadata             *UpdateMetadata       `json:"metadata,omitempty"`
	FilePaths            map[string]*FilePaths `json:"file_paths,omitempty"`
	ConfigurationJSONStr *string               `json:"configuration_json_str,omitempty"`
}

// String returns a pointer to v. Convenience for building descriptors.
func String(v string) *string { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
