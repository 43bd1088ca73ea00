package metadata

import (
	"fmt"

	"github.com/hupe1980/chromad/codes"
	"github.com/hupe1980/chromad/wire"
)

// ValueConversionError reports a wire metadata value that does not carry
// exactly one variant.
type ValueConversionError struct {
	// Key is the metadata key the offending value was registered under.
	Key string
}

// Error implements the error interface.
func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("metadata value for key %q must set exactly one variant", e.Key)
}

// Code implements codes.Coder.
func (e *ValueConversionError) Code() codes.Code {
	return codes.InvalidArgument
}

// FromWire converts a wire metadata document into the typed model. A nil
// document yields nil metadata; an empty document yields empty, non-nil
// metadata. The first invalid value aborts the conversion.
func FromWire(w *wire.UpdateMetadata) (Metadata, error) {
	if w == nil {
		return nil, nil
	}

	md := make(Metadata, len(w.Metadata))

	for key, value := range w.Metadata {
		v, err := valueFromWire(key, value)
		if err != nil {
			return nil, err
		}

		md[key] = v
	}

	return md, nil
}

func valueFromWire(key string, w *wire.UpdateMetadataValue) (Value, error) {
	if w == nil {
		return Value{}, &ValueConversionError{Key: key}
	}

	var (
		v   Value
		set int
	)

	if w.BoolValue != nil {
		v = Bool(*w.BoolValue)
		set++
	}

	if w.IntValue != nil {
		v = Int(*w.IntValue)
		set++
	}

	if w.FloatValue != nil {
		v = Float(*w.FloatValue)
		set++
	}

	if w.StringValue != nil {
		v = String(*w.StringValue)
		set++
	}

	if set != 1 {
		return Value{}, &ValueConversionError{Key: key}
	}

	return v, nil
}
