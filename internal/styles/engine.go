package styles

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ErrUnbalancedBraces reports a stylesheet whose rule blocks do not close.
var ErrUnbalancedBraces = errors.New("styles: unbalanced braces in stylesheet")

// maxSubstitutionDepth bounds variable-in-variable resolution so a
// self-referential definition cannot loop forever.
const maxSubstitutionDepth = 10

var (
	definitionPattern = regexp.MustCompile(`(?m)^[ \t]*@([\w-]+)[ \t]*:[ \t]*([^;{}]*);[ \t]*\r?\n?`)
	lineComment       = regexp.MustCompile(`(?m)(^|\s)//[^\n]*`)
	blockComment      = regexp.MustCompile(`(?s)/\*.*?\*/`)
	escapedString     = regexp.MustCompile(`~(['"])((?:[^'"])*)['"]`)
)

// renderLess evaluates the LESS subset the themes rely on: local @import
// inlining, global variable definitions with last-definition-wins
// semantics, @name and @{name} substitution (including inside escaped
// ~'...' strings) and comment stripping. modifyVars override every
// definition found in the source, mirroring how theme data is injected on
// top of the stylesheet's own defaults.
func renderLess(source string, modifyVars map[string]string, searchPaths []string) (string, error) {
	expanded, err := inlineImports(source, searchPaths, map[string]struct{}{})
	if err != nil {
		return "", err
	}

	expanded = blockComment.ReplaceAllString(expanded, "")
	expanded = lineComment.ReplaceAllString(expanded, "$1")

	defs := map[string]string{}
	for _, match := range definitionPattern.FindAllStringSubmatch(expanded, -1) {
		defs[match[1]] = strings.TrimSpace(match[2])
	}
	for name, value := range modifyVars {
		defs[name] = value
	}
	resolveDefinitions(defs)

	body := definitionPattern.ReplaceAllString(expanded, "")
	body = substitute(body, defs)

	// ~'...' escapes unquote after interpolation.
	body = escapedString.ReplaceAllString(body, "$2")

	if strings.Count(body, "{") != strings.Count(body, "}") {
		return "", ErrUnbalancedBraces
	}
	return body, nil
}

// inlineImports splices locally resolvable @import targets into the
// stylesheet. Each file is inlined at most once; remote and unresolved
// imports pass through untouched.
func inlineImports(source string, searchPaths []string, visited map[string]struct{}) (string, error) {
	var splicingErr error
	result := importPattern.ReplaceAllStringFunc(source, func(statement string) string {
		if splicingErr != nil {
			return statement
		}
		path := importPattern.FindStringSubmatch(statement)[1]
		if isRemoteImport(path) {
			return statement
		}
		resolved, ok := resolveImport(path, searchPaths)
		if !ok {
			return statement
		}
		if _, seen := visited[resolved]; seen {
			return ""
		}
		visited[resolved] = struct{}{}
		content, err := os.ReadFile(resolved)
		if err != nil {
			splicingErr = fmt.Errorf("styles: read import %s: %w", resolved, err)
			return statement
		}
		inlined, err := inlineImports(string(content), searchPaths, visited)
		if err != nil {
			splicingErr = err
			return statement
		}
		return inlined
	})
	if splicingErr != nil {
		return "", splicingErr
	}
	return result, nil
}

// resolveDefinitions rewrites definition values that reference other
// variables until they are fully expanded.
func resolveDefinitions(defs map[string]string) {
	for i := 0; i < maxSubstitutionDepth; i++ {
		changed := false
		for name, value := range defs {
			next := substitute(value, defs)
			if next != value {
				defs[name] = next
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// substitute replaces @{name} and @name references with their definitions.
// Names are applied longest first so @color never clips @color-dark.
func substitute(input string, defs map[string]string) string {
	if len(defs) == 0 {
		return input
	}
	names := sortedKeys(defs)
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	for i := 0; i < maxSubstitutionDepth; i++ {
		changed := false
		for _, name := range names {
			value := defs[name]
			interpolated := strings.ReplaceAll(input, "@{"+name+"}", value)
			if interpolated != input {
				input = interpolated
				changed = true
			}
			replaced := replaceReference(input, name, value)
			if replaced != input {
				input = replaced
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return input
}

// replaceReference swaps @name for its value wherever the reference is not
// followed by another identifier character.
func replaceReference(input, name, value string) string {
	token := "@" + name
	var b strings.Builder
	for {
		idx := strings.Index(input, token)
		if idx < 0 {
			b.WriteString(input)
			break
		}
		end := idx + len(token)
		if end < len(input) && isIdentChar(input[end]) {
			b.WriteString(input[:end])
			input = input[end:]
			continue
		}
		b.WriteString(input[:idx])
		b.WriteString(value)
		input = input[end:]
	}
	return b.String()
}

func isIdentChar(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
