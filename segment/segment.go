package segment

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hupe1980/chromad/metadata"
	"github.com/hupe1980/chromad/scope"
)

// Segment is a validated segment description. Instances are produced by the
// conversion pipeline and treated as immutable afterwards; use Clone before
// handing a segment to code that may mutate it.
type Segment struct {
	// ID is the segment identifier.
	ID uuid.UUID
	// Type is the storage engine kind backing the segment.
	Type Type
	// Scope is the data kind the segment serves.
	Scope scope.Scope
	// Collection is the owning collection. It is always set; descriptors
	// without a collection are rejected during conversion.
	Collection uuid.UUID
	// Metadata is the optional typed metadata document. Nil when the
	// descriptor carried none.
	Metadata metadata.Metadata
	// FilePath maps file roles to their ordered storage paths. Path order
	// within a role is meaningful and preserved from the descriptor.
	FilePath map[string][]string
	// ConfigurationJSON is the parsed configuration document, nil when the
	// descriptor carried none. Its schema is engine-specific and not
	// interpreted here.
	ConfigurationJSON any
}

// Clone returns a deep copy of the segment. The copy shares no mutable
// state with the original.
func (s *Segment) Clone() *Segment {
	if s == nil {
		return nil
	}

	clone := &Segment{
		ID:                s.ID,
		Type:              s.Type,
		Scope:             s.Scope,
		Collection:        s.Collection,
		Metadata:          s.Metadata.Clone(),
		ConfigurationJSON: cloneJSONValue(s.ConfigurationJSON),
	}

	if s.FilePath != nil {
		clone.FilePath = make(map[string][]string, len(s.FilePath))
		for role, paths := range s.FilePath {
			cp := make([]string, len(paths))
			copy(cp, paths)
			clone.FilePath[role] = cp
		}
	}

	return clone
}

// Roles returns the file roles of the segment in sorted order.
func (s *Segment) Roles() []string {
	roles := make([]string, 0, len(s.FilePath))
	for role := range s.FilePath {
		roles = append(roles, role)
	}

	sort.Strings(roles)

	return roles
}

// FileSet returns all registered paths flattened into one list. Roles are
// visited in sorted order; within a role the registered order is kept, so
// the result is deterministic for a given segment.
func (s *Segment) FileSet() []string {
	var files []string
	for _, role := range s.Roles() {
		files = append(files, s.FilePath[role]...)
	}

	return files
}

// cloneJSONValue deep-copies a generic JSON document as produced by codec
// unmarshalling (map[string]any, []any and scalars).
func cloneJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		cp := make(map[string]any, len(val))
		for k, e := range val {
			cp[k] = cloneJSONValue(e)
		}

		return cp
	case []any:
		cp := make([]any, len(val))
		for i, e := range val {
			cp[i] = cloneJSONValue(e)
		}

		return cp
	default:
		return val
	}
}
