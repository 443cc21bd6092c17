package themes

import "strings"

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := strings.Clone(*value)
	return &cloned
}

func cloneTheme(theme *Theme) *Theme {
	if theme == nil {
		return nil
	}
	cloned := *theme
	cloned.Extends = cloneString(theme.Extends)
	cloned.Fonts = cloneFonts(theme.Fonts)
	cloned.Data = deepCloneMap(theme.Data)
	return &cloned
}

func cloneFonts(src map[string]FontAsset) map[string]FontAsset {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]FontAsset, len(src))
	for name, font := range src {
		out[name] = font
	}
	return out
}

func deepCloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = deepCloneValue(value)
	}
	return out
}

func deepCloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCloneMap(typed)
	case []any:
		cloned := make([]any, len(typed))
		for i, item := range typed {
			cloned[i] = deepCloneValue(item)
		}
		return cloned
	default:
		return value
	}
}

// deepMergeMaps overlays child onto parent: nested maps merge recursively,
// every other value type from the child replaces the parent's.
func deepMergeMaps(parent, child map[string]any) map[string]any {
	if len(parent) == 0 {
		return deepCloneMap(child)
	}
	out := deepCloneMap(parent)
	for key, childValue := range child {
		parentValue, exists := out[key]
		childMap, childIsMap := childValue.(map[string]any)
		parentMap, parentIsMap := parentValue.(map[string]any)
		if exists && childIsMap && parentIsMap {
			out[key] = deepMergeMaps(parentMap, childMap)
			continue
		}
		out[key] = deepCloneValue(childValue)
	}
	return out
}

// mergeFonts shallow-merges font declarations; child entries win.
func mergeFonts(parent, child map[string]FontAsset) map[string]FontAsset {
	if len(parent) == 0 {
		return cloneFonts(child)
	}
	out := cloneFonts(parent)
	for name, font := range child {
		out[name] = font
	}
	return out
}
