// Package segment models validated segments and the conversion boundary
// that produces them from untrusted wire descriptors.
//
// A descriptor arriving from the coordinator is plain wire data: string
// identifiers, a string type, an integer scope and raw JSON configuration.
// Convert checks every field in a fixed order and either returns a fully
// typed Segment or a typed error classifying exactly which field was
// rejected. Conversion is pure; storage and catalog concerns live in the
// storage package and the chromad root package.
//
// # Types
//
// The set of segment types is closed. Each type has one canonical wire
// string, and TypeFromString/Type.String map between the two forms without
// loss:
//
//	t, err := segment.TypeFromString("urn:chroma:segment/vector/hnsw-distributed")
//	// t == segment.TypeHnswDistributed
//
// # Conversion
//
//	seg, err := segment.FromWire(desc)
//	if err != nil {
//		var invalid *segment.InvalidIdentifierError
//		if errors.As(err, &invalid) {
//			// invalid.Field is "id" or "collection"
//		}
//	}
//
// Errors carry stable classification codes through the codes package, so
// callers can map failures onto transport status codes without matching on
// message text.
package segment
