// Package jsonutil provides shared helpers for the loosely typed JSON values
// that custom metrics carry: numeric coercion, string rendering, emptiness
// checks and map (de)serialization for storage columns.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnmarshalWithContext unmarshals JSON data into v and wraps any error
// with the provided context message.
func UnmarshalWithContext(data []byte, v any, context string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// ToFloat coerces a JSON-decoded value to a float64.
// Numbers pass through, numeric strings are parsed. Everything else
// (nil, bools, non-numeric strings, objects) reports false.
func ToFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ToString converts a value to a string representation.
// Whole floats are formatted without a fractional part.
func ToString(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsEmpty reports whether v is nil or a blank string.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// MarshalMap encodes m as JSON text. Nil or empty maps encode as "".
func MarshalMap(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal map: %w", err)
	}
	return string(data), nil
}

// UnmarshalMap decodes JSON object text. Empty text decodes to a nil map.
func UnmarshalMap(text, context string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := UnmarshalWithContext([]byte(text), &m, context); err != nil {
		return nil, err
	}
	return m, nil
}

// CloneMap returns a shallow copy of m, or nil when m is empty.
func CloneMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
