package slots

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Normalize returns the first candidate key whose parameter value reduces to a
// non-empty string.
//
// Reduction: a keyed mapping becomes its first value and an ordered sequence
// its first element, repeatedly until a scalar remains, which is then
// stringified and trimmed. Empty strings and "[]" are absent, as are null, false, zero and
// empty containers.
func Normalize(params map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := Reduce(params[k]); ok {
			return v, true
		}
	}
	return "", false
}

// Reduce applies the reduction rules to a single parameter value. Nested
// mappings and sequences are unwrapped until a scalar remains.
func Reduce(v interface{}) (string, bool) {
	for {
		if isFalsy(v) {
			return "", false
		}

		switch t := v.(type) {
		case Object:
			v = t[0].Value
			continue
		case map[string]interface{}:
			v = t[firstKey(t)]
			continue
		case []interface{}:
			v = t[0]
			continue
		case []string:
			v = t[0]
			continue
		}
		break
	}

	str := strings.TrimSpace(stringify(v))
	if str == "" || str == "[]" {
		return "", false
	}
	return str, true
}

func isFalsy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case float64:
		return t == 0
	case int:
		return t == 0
	case Object:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// firstKey picks a deterministic key for plain maps, which carry no order.
func firstKey(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
