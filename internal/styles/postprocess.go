package styles

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

// eliminationSentinel marks variables the theme never set. Declarations
// still carrying it after substitution are dropped so unset theme options
// never reach the published stylesheet.
const eliminationSentinel = "__UNSET__"

var (
	sentinelDeclaration = regexp.MustCompile(`(?m)[ \t]*[\w-]+[ \t]*:[^;{}]*` + eliminationSentinel + `[^;{}]*;[ \t]*\r?\n?`)
	declarationPattern  = regexp.MustCompile(`([\w-]+)([ \t]*:[ \t]*)([^;{}]+)(;)`)
	numberToken         = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)
)

// unitlessProperties take bare numbers; everything else gets px appended
// to unitless values so theme authors can write `padding: 5`.
var unitlessProperties = map[string]struct{}{
	"opacity":           {},
	"stroke-opacity":    {},
	"fill-opacity":      {},
	"z-index":           {},
	"font-weight":       {},
	"line-height":       {},
	"font-family":       {},
	"flex":              {},
	"flex-grow":         {},
	"flex-shrink":       {},
	"order":             {},
	"animation-duration": {},
}

// prefixedProperties still need vendor duplicates in the browsers the
// embeds target.
var prefixedProperties = map[string][]string{
	"user-select":     {"-webkit-user-select", "-moz-user-select"},
	"appearance":      {"-webkit-appearance", "-moz-appearance"},
	"backdrop-filter": {"-webkit-backdrop-filter"},
	"box-sizing":      {"-webkit-box-sizing"},
}

// stripSentinels removes every declaration whose value still contains the
// elimination sentinel. Running it twice is a no-op: removal never
// produces new sentinel declarations.
func stripSentinels(stylesheet string) string {
	return sentinelDeclaration.ReplaceAllString(stylesheet, "")
}

// normalizeUnits appends px to unitless numeric values, leaving zero and
// the inherently unitless properties alone.
func normalizeUnits(stylesheet string) string {
	return declarationPattern.ReplaceAllStringFunc(stylesheet, func(decl string) string {
		parts := declarationPattern.FindStringSubmatch(decl)
		property := strings.ToLower(parts[1])
		if _, unitless := unitlessProperties[property]; unitless {
			return decl
		}
		return parts[1] + parts[2] + appendPx(parts[3]) + parts[4]
	})
}

// appendPx rewrites each bare numeric token in a declaration value.
// Tokens inside a function call (rgba, scale, calc, ...) keep their bare
// form; those arguments are unitless by construction.
func appendPx(value string) string {
	var b strings.Builder
	token := strings.Builder{}
	depth := 0
	flush := func() {
		text := token.String()
		token.Reset()
		if text == "" {
			return
		}
		if depth == 0 && numberToken.MatchString(text) && text != "0" {
			b.WriteString(text + "px")
			return
		}
		b.WriteString(text)
	}
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '(':
			flush()
			depth++
			b.WriteByte(value[i])
		case ')':
			flush()
			if depth > 0 {
				depth--
			}
			b.WriteByte(value[i])
		case ' ', '\t', '\n', ',':
			flush()
			b.WriteByte(value[i])
		default:
			token.WriteByte(value[i])
		}
	}
	flush()
	return b.String()
}

// vendorPrefix duplicates declarations whose property still needs vendor
// variants, emitting prefixed forms ahead of the standard one.
func vendorPrefix(stylesheet string) string {
	return declarationPattern.ReplaceAllStringFunc(stylesheet, func(decl string) string {
		parts := declarationPattern.FindStringSubmatch(decl)
		prefixes, ok := prefixedProperties[strings.ToLower(parts[1])]
		if !ok {
			return decl
		}
		var b strings.Builder
		for _, prefixed := range prefixes {
			b.WriteString(prefixed + parts[2] + parts[3] + parts[4])
		}
		b.WriteString(decl)
		return b.String()
	})
}

// minifyCSS compacts the final stylesheet. Minification is deterministic,
// so identical inputs keep producing byte-identical published CSS.
func minifyCSS(stylesheet string) (string, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	out, err := m.String("text/css", stylesheet)
	if err != nil {
		return "", fmt.Errorf("styles: minify: %w", err)
	}
	return out, nil
}
