package styles

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Flatten collapses a nested theme data document into LESS variable
// assignments: nested keys join with underscore, so colors.general.padding
// becomes colors_general_padding. Flattening stops at the first value that
// is not a plain object; arrays and primitives become leaf values. An empty
// nested object is preserved as an empty leaf entry rather than dropped.
func Flatten(data map[string]any) map[string]any {
	out := map[string]any{}
	flattenInto(out, "", data)
	return out
}

func flattenInto(out map[string]any, prefix string, data map[string]any) {
	for key, value := range data {
		name := key
		if prefix != "" {
			name = prefix + "_" + key
		}
		if nested, ok := value.(map[string]any); ok {
			if len(nested) == 0 {
				out[name] = nested
				continue
			}
			flattenInto(out, name, nested)
			continue
		}
		out[name] = value
	}
}

// LessValue renders a flattened leaf as LESS variable content.
func LessValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, LessValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		// Empty-object leaves flatten to empty variable content.
		return ""
	default:
		return fmt.Sprint(typed)
	}
}

// sortedKeys returns map keys in deterministic order; compilation output
// must be byte-identical across runs for identical inputs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
