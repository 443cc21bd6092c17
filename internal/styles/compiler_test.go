package styles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chartpub/chartpub/themes"
)

func TestCompileSubstitutesThemeData(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chart.less")
	err := os.WriteFile(file, []byte(`
body {
	padding: @style_body_padding;
	background: @{style_body_background};
}
`), 0o644)
	if err != nil {
		t.Fatalf("write less: %v", err)
	}

	theme := &themes.Theme{
		Name: "acme",
		Data: map[string]any{
			"style": map[string]any{
				"body": map[string]any{
					"padding":    5.0,
					"background": "#123456",
				},
			},
		},
	}

	css, err := NewCompiler().Compile(context.Background(), theme, file)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(css, "padding:5px") {
		t.Fatalf("expected px-normalized padding in %q", css)
	}
	if !strings.Contains(css, "background:#123456") {
		t.Fatalf("expected interpolated background in %q", css)
	}
}

func TestCompileEliminatesUnsetVariables(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chart.less")
	err := os.WriteFile(file, []byte(`
body {
	color: @style_body_color;
	margin: 0;
}
`), 0o644)
	if err != nil {
		t.Fatalf("write less: %v", err)
	}

	theme := &themes.Theme{Name: "bare", Data: map[string]any{}}
	css, err := NewCompiler().Compile(context.Background(), theme, file)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if strings.Contains(css, eliminationSentinel) {
		t.Fatalf("sentinel leaked into output %q", css)
	}
	if strings.Contains(css, "color") {
		t.Fatalf("expected unset declaration dropped, got %q", css)
	}
	if !strings.Contains(css, "margin:0") {
		t.Fatalf("expected surviving declaration in %q", css)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	theme := &themes.Theme{
		Name: "stable",
		LESS: `.note { color: @colors_text; border-width: @colors_border; }`,
		Data: map[string]any{
			"colors": map[string]any{"text": "#333333", "border": 2.0},
		},
	}

	compiler := NewCompiler()
	first, err := compiler.Compile(context.Background(), theme)
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	second, err := compiler.Compile(context.Background(), theme)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output, got %q and %q", first, second)
	}
}

func TestCompileThemeLessOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "base.less")
	if err := os.WriteFile(file, []byte(`@accent: teal;
.a { color: @accent; }`), 0o644); err != nil {
		t.Fatalf("write less: %v", err)
	}

	theme := &themes.Theme{
		Name: "override",
		LESS: `@accent: navy;`,
		Data: map[string]any{},
	}
	css, err := NewCompiler().Compile(context.Background(), theme, file)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(css, "color:navy") {
		t.Fatalf("expected theme override to win in %q", css)
	}
}

func TestCompileReportsUnbalancedBraces(t *testing.T) {
	theme := &themes.Theme{
		Name: "broken",
		LESS: `.a { color: red;`,
		Data: map[string]any{},
	}
	_, err := NewCompiler().Compile(context.Background(), theme)
	if !errors.Is(err, ErrUnbalancedBraces) {
		t.Fatalf("expected ErrUnbalancedBraces, got %v", err)
	}
}

func TestCompileTreatsMissingFileAsEmpty(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chart.less")
	if err := os.WriteFile(file, []byte(`.a { margin: 2; }`), 0o644); err != nil {
		t.Fatalf("write less: %v", err)
	}

	theme := &themes.Theme{Name: "missing", Data: map[string]any{}}
	css, err := NewCompiler().Compile(context.Background(), theme,
		filepath.Join(dir, "nope.less"), file)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(css, "margin:2px") {
		t.Fatalf("readable file dropped alongside the missing one: %q", css)
	}
}

func TestStripSentinelsIsIdempotent(t *testing.T) {
	stylesheet := `.a {
	color: __UNSET__;
	border: 1px solid __UNSET__;
	margin: 4px;
}`
	once := stripSentinels(stylesheet)
	twice := stripSentinels(once)
	if once != twice {
		t.Fatalf("expected idempotent sentinel removal, got %q then %q", once, twice)
	}
	if strings.Contains(once, "__UNSET__") {
		t.Fatalf("sentinel survived removal: %q", once)
	}
	if !strings.Contains(once, "margin: 4px;") {
		t.Fatalf("unrelated declaration removed: %q", once)
	}
}

func TestNormalizeUnitsSkipsUnitlessProperties(t *testing.T) {
	input := `.a { stroke-opacity: 0.5; padding: 5; margin: 0; line-height: 1.4; }`
	got := normalizeUnits(input)
	if !strings.Contains(got, "stroke-opacity: 0.5;") {
		t.Fatalf("stroke-opacity gained a unit: %q", got)
	}
	if !strings.Contains(got, "padding: 5px;") {
		t.Fatalf("padding missing px: %q", got)
	}
	if !strings.Contains(got, "margin: 0;") {
		t.Fatalf("zero gained a unit: %q", got)
	}
	if !strings.Contains(got, "line-height: 1.4;") {
		t.Fatalf("line-height gained a unit: %q", got)
	}
}

func TestNormalizeUnitsLeavesFunctionArgumentsAlone(t *testing.T) {
	input := `.a { color: rgba(0, 0, 0, 0.5); transform: scale(1.2); width: calc(100% - 4); padding: 5; }`
	got := normalizeUnits(input)
	if !strings.Contains(got, "rgba(0, 0, 0, 0.5)") {
		t.Fatalf("rgba arguments gained a unit: %q", got)
	}
	if !strings.Contains(got, "scale(1.2)") {
		t.Fatalf("scale argument gained a unit: %q", got)
	}
	if !strings.Contains(got, "calc(100% - 4)") {
		t.Fatalf("calc arguments gained a unit: %q", got)
	}
	if !strings.Contains(got, "padding: 5px;") {
		t.Fatalf("bare value outside a function missing px: %q", got)
	}
}

func TestCompileKeepsFunctionValuesValid(t *testing.T) {
	theme := &themes.Theme{
		Name: "funcs",
		LESS: `.a { color: rgba(0, 0, 0, 0.5); transform: scale(1.2); }`,
		Data: map[string]any{},
	}
	css, err := NewCompiler().Compile(context.Background(), theme)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if strings.Contains(css, "px)") {
		t.Fatalf("function argument gained a unit: %q", css)
	}
	if !strings.Contains(css, "scale(1.2)") {
		t.Fatalf("expected scale to survive untouched: %q", css)
	}
}

func TestFontFacesRewritesProtocolRelativeImports(t *testing.T) {
	theme := &themes.Theme{
		Name: "fonts",
		Fonts: map[string]themes.FontAsset{
			"Roboto": {
				Method: themes.FontMethodImport,
				Import: "//fonts.example.com/roboto.css",
			},
			"Archivo": {
				Method: themes.FontMethodFile,
				Files: themes.FontFiles{
					Woff:     "//static.example.com/archivo.woff",
					TrueType: "https://static.example.com/archivo.ttf",
				},
				Weight: "400",
			},
		},
	}

	block := FontFaces(theme)
	if !strings.Contains(block, "@import url('https://fonts.example.com/roboto.css');") {
		t.Fatalf("expected https import in %q", block)
	}
	if !strings.Contains(block, "url('https://static.example.com/archivo.woff') format('woff')") {
		t.Fatalf("expected https woff source in %q", block)
	}
	if strings.Index(block, "@import") > strings.Index(block, "@font-face") {
		t.Fatalf("imports must precede font faces: %q", block)
	}
}

func TestFontFacesDeduplicatesTypographyVariants(t *testing.T) {
	theme := &themes.Theme{
		Name: "dedupe",
		Fonts: map[string]themes.FontAsset{
			"Archivo": {
				Method: themes.FontMethodFile,
				Files:  themes.FontFiles{Woff: "https://static.example.com/archivo.woff"},
				Weight: "400",
			},
		},
		Data: map[string]any{
			"typography": map[string]any{
				"fontFamilies": map[string]any{
					"Archivo": []any{
						map[string]any{"name": "Archivo", "weight": "400"},
						map[string]any{"name": "Archivo", "weight": "700"},
					},
				},
			},
		},
	}

	block := FontFaces(theme)
	if got := strings.Count(block, "font-weight: 400;"); got != 1 {
		t.Fatalf("expected one regular face, got %d in %q", got, block)
	}
	if got := strings.Count(block, "font-weight: 700;"); got != 1 {
		t.Fatalf("expected one bold face, got %d in %q", got, block)
	}
}
