package envelope

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number coerces a decoded JSON value to a finite float64. Numbers and
// numeric strings are accepted; everything else (nil, bools, objects,
// NaN, ±Inf, unparseable strings) reports false.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int coerces v like Number and truncates toward zero.
func Int(v any) (int, bool) {
	f, ok := Number(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// String renders scalar JSON values as text. Integral floats lose their
// fractional part so that numeric ids read "12", not "12.0".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	}
	if f, ok := Number(v); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// Field returns the first non-nil value among keys in m.
func Field(m map[string]any, keys ...string) any {
	if m == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Message extracts a human-readable message from an errorMessage-like value:
// a string, or the first string of an array.
func Message(v any) string {
	switch m := v.(type) {
	case string:
		return strings.TrimSpace(m)
	case []any:
		for _, item := range m {
			if s := Message(item); s != "" {
				return s
			}
		}
	case []string:
		for _, item := range m {
			if s := strings.TrimSpace(item); s != "" {
				return s
			}
		}
	}
	return ""
}
