package types

import (
	"fmt"
	"strconv"
)

// =============================================================================
// TOOL ARGUMENT EXTRACTION UTILITIES
// =============================================================================
//
// Tool arguments arrive as map[string]any decoded from JSON, so a label such
// as 0 may be a float64 and a filename may be absent. These helpers never
// panic on type mismatch.

// ExtractString extracts a string representation from a tool argument.
func ExtractString(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ExtractInt64 extracts an int64 value from a tool argument.
// Returns (value, true) on success, (0, false) if the type is incompatible.
func ExtractInt64(arg any) (int64, bool) {
	switch v := arg.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// ExtractBool extracts a boolean value from a tool argument.
func ExtractBool(arg any) (bool, bool) {
	switch v := arg.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

// ArgString extracts args[key] as a string. Returns "" when absent.
func ArgString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	return ExtractString(v)
}

// ArgBool extracts args[key] as a bool. Returns false when absent or invalid.
func ArgBool(args map[string]any, key string) bool {
	b, _ := ExtractBool(args[key])
	return b
}
