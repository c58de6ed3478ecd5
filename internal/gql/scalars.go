package gql

import (
	"encoding/json"
	"fmt"
)

// JSONObject preserves arbitrary JSON object values when fields are bound to the GraphQL JSONObject scalar.
type JSONObject map[string]json.RawMessage

// Values decodes every field into plain Go values.
func (o JSONObject) Values() (map[string]any, error) {
	out := make(map[string]any, len(o))
	for key, raw := range o {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decode field %q: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}
