package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It is the most portable option: use it when checkpoint files must be
// readable by tooling that cannot carry third-party decoders. Segment
// configuration parsing accepts any Codec, so the choice only affects
// performance there.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is configured.
//
// This affects newly written checkpoints and configuration parsing. Existing
// checkpoint files are self-describing (they store the codec name in their
// header) and are opened by selecting the appropriate codec by name.
var Default Codec = GoJSON{}
