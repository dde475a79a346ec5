package persist

import (
	"encoding/json"
	"fmt"
)

// envelope wraps every stored value.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// encode wraps v in a versioned envelope.
func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}
	b, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return b, nil
}

// decode unwraps raw into out. Values written before envelopes existed are
// decoded directly and reported as legacy.
func decode(raw []byte, out any) (version int, err error) {
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Version > 0 {
		if env.Version > SchemaVersion {
			return env.Version, fmt.Errorf("unsupported schema version %d", env.Version)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Version, fmt.Errorf("decode data: %w", err)
		}
		return env.Version, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return 0, fmt.Errorf("decode legacy value: %w", err)
	}
	return 0, nil
}
