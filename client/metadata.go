package client

import (
	"encoding/json"
	"strconv"
)

// Metadata is the loosely typed payload attached to a notification.
// Some endpoints serialize it as a JSON object, older ones as a
// JSON-encoded string of an object; both decode to the same map.
type Metadata map[string]interface{}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*m = nil
		return nil
	}

	// String form: unwrap, then parse the embedded document.
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*m = nil
			return nil
		}
		data = []byte(s)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

// FirstString probes the given keys in order and returns the first
// non-empty value, rendered as a string. The alternate spellings exist
// because the backend serializes inconsistently across endpoints; keep
// the probing confined to this one place.
func (m Metadata) FirstString(keys ...string) string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(val)
		}
	}
	return ""
}

// Float returns the first numeric value under the given keys, or 0.
func (m Metadata) Float(keys ...string) float64 {
	for _, key := range keys {
		if v, ok := m[key].(float64); ok {
			return v
		}
	}
	return 0
}
