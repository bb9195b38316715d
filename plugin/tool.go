package plugin

import (
	"context"
	"strconv"
)

// Tool is one callable capability built by a plugin factory for a single
// execution context. Construction must be side-effect free; Execute is the
// only method that may perform I/O.
type Tool interface {
	// Description tells the language model what the tool does.
	Description() string

	// InputSchema declares the params Execute accepts.
	InputSchema() *Schema

	// Execute runs the tool. The result must be JSON-marshalable.
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// GetString reads a string parameter.
func GetString(params map[string]any, key string) (string, bool) {
	val, exists := params[key]
	if !exists {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetFloat reads a numeric parameter, narrowing the numeric types JSON
// decoding and Go callers produce.
func GetFloat(params map[string]any, key string) (float64, bool) {
	val, exists := params[key]
	if !exists {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// GetInt reads an integer parameter. JSON numbers arrive as float64 and are
// truncated.
func GetInt(params map[string]any, key string) (int, bool) {
	f, ok := GetFloat(params, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// GetBool reads a boolean parameter.
func GetBool(params map[string]any, key string) (bool, bool) {
	val, exists := params[key]
	if !exists {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}
