package segment

import (
	"github.com/google/uuid"

	"github.com/hupe1980/chromad/codec"
	"github.com/hupe1980/chromad/metadata"
	"github.com/hupe1980/chromad/scope"
	"github.com/hupe1980/chromad/wire"
)

// MetadataConverter validates wire metadata into the typed model.
type MetadataConverter interface {
	FromWire(w *wire.UpdateMetadata) (metadata.Metadata, error)
}

// MetadataConverterFunc adapts a function to the MetadataConverter
// interface.
type MetadataConverterFunc func(w *wire.UpdateMetadata) (metadata.Metadata, error)

// FromWire implements MetadataConverter.
func (f MetadataConverterFunc) FromWire(w *wire.UpdateMetadata) (metadata.Metadata, error) {
	return f(w)
}

// ScopeConverter validates a wire scope code.
type ScopeConverter interface {
	FromCode(code int32) (scope.Scope, error)
}

// ScopeConverterFunc adapts a function to the ScopeConverter interface.
type ScopeConverterFunc func(code int32) (scope.Scope, error)

// FromCode implements ScopeConverter.
func (f ScopeConverterFunc) FromCode(code int32) (scope.Scope, error) {
	return f(code)
}

// Converter turns untrusted wire descriptors into validated segments. It is
// pure: no I/O, no logging, and the input descriptor is never mutated. The
// zero configuration uses the real metadata and scope converters and the
// default codec.
type Converter struct {
	meta  MetadataConverter
	scope ScopeConverter
	codec codec.Codec
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithMetadataConverter overrides the metadata converter.
func WithMetadataConverter(mc MetadataConverter) ConverterOption {
	return func(c *Converter) {
		c.meta = mc
	}
}

// WithScopeConverter overrides the scope converter.
func WithScopeConverter(sc ScopeConverter) ConverterOption {
	return func(c *Converter) {
		c.scope = sc
	}
}

// WithCodec overrides the codec used to parse configuration payloads.
func WithCodec(c codec.Codec) ConverterOption {
	return func(conv *Converter) {
		conv.codec = c
	}
}

// NewConverter creates a Converter.
func NewConverter(optFns ...ConverterOption) *Converter {
	c := &Converter{
		meta:  MetadataConverterFunc(metadata.FromWire),
		scope: ScopeConverterFunc(scope.FromCode),
		codec: codec.Default,
	}

	for _, fn := range optFns {
		fn(c)
	}

	return c
}

// Convert validates desc and assembles a Segment. Validation is fail-fast
// in a fixed order: id, collection, metadata, scope, type, file paths,
// configuration. The first failing step decides the returned error; later
// fields are not inspected.
func (c *Converter) Convert(desc *wire.Segment) (*Segment, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}

	id, err := uuid.Parse(desc.ID)
	if err != nil {
		return nil, &InvalidIdentifierError{Field: "id", Value: desc.ID}
	}

	if desc.Collection == nil {
		return nil, &InvalidIdentifierError{Field: "collection"}
	}

	collection, err := uuid.Parse(*desc.Collection)
	if err != nil {
		return nil, &InvalidIdentifierError{Field: "collection", Value: *desc.Collection}
	}

	md, err := c.meta.FromWire(desc.Metadata)
	if err != nil {
		return nil, &ConversionError{Field: "metadata", cause: err}
	}

	sc, err := c.scope.FromCode(desc.Scope)
	if err != nil {
		return nil, &ConversionError{Field: "scope", cause: err}
	}

	typ, err := TypeFromString(desc.Type)
	if err != nil {
		return nil, err
	}

	filePath := make(map[string][]string, len(desc.FilePaths))
	for role, fp := range desc.FilePaths {
		var paths []string
		if fp != nil {
			paths = make([]string, len(fp.Paths))
			copy(paths, fp.Paths)
		}

		filePath[role] = paths
	}

	seg := &Segment{
		ID:         id,
		Type:       typ,
		Scope:      sc,
		Collection: collection,
		Metadata:   md,
		FilePath:   filePath,
	}

	if desc.ConfigurationJSONStr != nil {
		var doc any
		if err := c.codec.Unmarshal([]byte(*desc.ConfigurationJSONStr), &doc); err != nil {
			return nil, &ConfigurationParseError{cause: err}
		}

		seg.ConfigurationJSON = doc
	}

	return seg, nil
}

var defaultConverter = NewConverter()

// FromWire converts desc using the default converter.
func FromWire(desc *wire.Segment) (*Segment, error) {
	return defaultConverter.Convert(desc)
}
