package styles

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// variablePattern matches plain references (@name), interpolations
// (@{name}) and the same forms inside escaped strings (~'...@{name}...').
var variablePattern = regexp.MustCompile(`@\{?([\w-]+)\}?`)

// importPattern matches @import statements in the subset the themes use:
// quoted relative paths, with or without the .less extension.
var importPattern = regexp.MustCompile(`@import\s+(?:\([^)]*\)\s+)?['"]([^'"]+)['"]\s*;`)

// atRuleKeywords are CSS at-rules the variable scanner must not mistake
// for variable references.
var atRuleKeywords = map[string]struct{}{
	"import":    {},
	"media":     {},
	"supports":  {},
	"font-face": {},
	"charset":   {},
	"keyframes": {},
	"page":      {},
	"namespace": {},
}

// FindVariables collects every LESS variable name referenced by the given
// sources, following @import statements transitively through searchPaths.
// Each imported file is visited at most once, so mutual imports terminate.
// Imports that cannot be resolved on disk are skipped rather than failed:
// remote and url() imports stay in the stylesheet untouched.
func FindVariables(sources []string, searchPaths []string) (map[string]struct{}, error) {
	found := map[string]struct{}{}
	visited := map[string]struct{}{}
	queue := append([]string{}, sources...)

	for len(queue) > 0 {
		content := queue[0]
		queue = queue[1:]

		for _, match := range variablePattern.FindAllStringSubmatch(content, -1) {
			name := match[1]
			if _, reserved := atRuleKeywords[name]; reserved {
				continue
			}
			found[name] = struct{}{}
		}

		for _, match := range importPattern.FindAllStringSubmatch(content, -1) {
			path := match[1]
			if isRemoteImport(path) {
				continue
			}
			resolved, ok := resolveImport(path, searchPaths)
			if !ok {
				continue
			}
			if _, seen := visited[resolved]; seen {
				continue
			}
			visited[resolved] = struct{}{}
			imported, err := os.ReadFile(resolved)
			if err != nil {
				return nil, fmt.Errorf("styles: read import %s: %w", resolved, err)
			}
			queue = append(queue, string(imported))
		}
	}
	return found, nil
}

func isRemoteImport(path string) bool {
	return strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//")
}

// resolveImport locates an imported file against the configured search
// paths, trying the path as given and with a .less extension appended.
func resolveImport(path string, searchPaths []string) (string, bool) {
	candidates := []string{path}
	if filepath.Ext(path) == "" {
		candidates = append(candidates, path+".less")
	}
	for _, dir := range searchPaths {
		for _, candidate := range candidates {
			full := filepath.Join(dir, candidate)
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return filepath.Clean(full), true
			}
		}
	}
	return "", false
}
