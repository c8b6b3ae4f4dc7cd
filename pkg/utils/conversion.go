package utils

import "encoding/json"

// number is satisfied by json.Number and the Number types of drop-in JSON
// decoders
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// FromJSONNumber converts a number decoded with UseNumber to int64 when it is
// integral and to float64 otherwise. Other values are returned unchanged.
func FromJSONNumber(val any) any {
	n, ok := val.(number)
	if !ok {
		return val
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	if s, ok := val.(json.Number); ok {
		return s.String()
	}
	return val
}

// NormalizeNumbers applies FromJSONNumber to every top-level value of m in place
func NormalizeNumbers(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = FromJSONNumber(v)
	}
	return m
}
