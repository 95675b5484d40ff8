package chainhook

import (
	"encoding/json"
	"math"
	"strconv"
)

// field returns obj[key] when v is a JSON object.
func field(v any, key string) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj[key]
}

// path walks nested objects. Missing links yield nil.
func path(v any, keys ...string) any {
	for _, key := range keys {
		v = field(v, key)
		if v == nil {
			return nil
		}
	}
	return v
}

func stringField(v any, keys ...string) (string, bool) {
	s, ok := path(v, keys...).(string)
	return s, ok
}

func arrayField(v any, keys ...string) ([]any, bool) {
	arr, ok := path(v, keys...).([]any)
	return arr, ok
}

// int64Value converts a JSON number to int64. Non-numbers yield 0.
func int64Value(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func uint64Value(v any) uint64 {
	if i := int64Value(v); i > 0 {
		return uint64(i)
	}
	return 0
}

// stringify renders a raw JSON value as an argument string: strings verbatim, numbers in their literal
// form, booleans as true/false, null as empty, objects and arrays as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// reprString returns the decoded clarity `repr` of a value when it carries one.
func reprString(v any) (string, bool) {
	return stringField(v, "repr")
}

// argsValue maps a raw `args` value to positional argument strings. Arrays map each element to its `repr`
// when present, a bare string is a single argument, anything else is an empty list.
func argsValue(v any) []string {
	switch raw := v.(type) {
	case []any:
		args := make([]string, 0, len(raw))
		for _, arg := range raw {
			if repr, ok := reprString(arg); ok {
				args = append(args, repr)
				continue
			}
			args = append(args, stringify(arg))
		}
		return args
	case string:
		return []string{raw}
	default:
		return []string{}
	}
}

// resultValue returns a string result verbatim, or the `repr` of an object result. Otherwise empty.
func resultValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if repr, ok := reprString(v); ok {
		return repr
	}
	return ""
}
