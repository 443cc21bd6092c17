package styles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chartpub/chartpub/internal/logging"
	"github.com/chartpub/chartpub/pkg/interfaces"
	"github.com/chartpub/chartpub/themes"
)

var ErrThemeRequired = errors.New("styles: theme required")

// Compiler turns a resolved theme plus a set of LESS files into a single
// minified stylesheet. Each instance carries its own search paths and
// logger; concurrent publishes construct or share compilers freely since
// Compile keeps no mutable state on the receiver.
type Compiler struct {
	searchPaths []string
	logger      interfaces.Logger
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithSearchPaths sets the directories used to resolve local @import
// statements, tried in order.
func WithSearchPaths(paths ...string) CompilerOption {
	return func(c *Compiler) {
		c.searchPaths = append([]string{}, paths...)
	}
}

// WithLogger overrides the compiler logger.
func WithLogger(logger interfaces.Logger) CompilerOption {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCompiler constructs a stylesheet compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile renders the stylesheet for a theme and the given LESS files.
//
// The cascade is assembled in a fixed order: elimination sentinels for
// every referenced variable, the theme's font block, the file contents in
// argument order, and finally the theme's inline LESS so it can override
// anything before it. Theme data is flattened into modify-vars on top of
// the whole cascade. After rendering, declarations still carrying the
// sentinel are dropped, unitless values gain px, vendor prefixes are
// added and the result is minified.
func (c *Compiler) Compile(ctx context.Context, theme *themes.Theme, files ...string) (string, error) {
	if theme == nil {
		return "", ErrThemeRequired
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	contents := make([]string, 0, len(files))
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		content, err := os.ReadFile(file)
		if err != nil {
			// Unreadable files compile as empty so one missing vendor
			// stylesheet never blocks a publish.
			c.logger.Warn("skipping unreadable stylesheet", "file", file, "error", err)
			continue
		}
		contents = append(contents, string(content))
	}

	sources := append(append([]string{}, contents...), theme.LESS)
	referenced, err := FindVariables(sources, c.searchPaths)
	if err != nil {
		return "", err
	}

	var cascade strings.Builder
	for _, name := range sortedKeys(referenced) {
		cascade.WriteString("@" + name + ": " + eliminationSentinel + ";\n")
	}
	if fonts := FontFaces(theme); fonts != "" {
		cascade.WriteString(fonts)
		cascade.WriteString("\n")
	}
	for _, content := range contents {
		cascade.WriteString(content)
		cascade.WriteString("\n")
	}
	cascade.WriteString(theme.LESS)

	modifyVars := map[string]string{}
	for name, value := range Flatten(theme.Data) {
		modifyVars[name] = LessValue(value)
	}

	rendered, err := renderLess(cascade.String(), modifyVars, c.searchPaths)
	if err != nil {
		return "", fmt.Errorf("styles: compile theme %s: %w", theme.Name, err)
	}

	rendered = stripSentinels(rendered)
	rendered = normalizeUnits(rendered)
	rendered = vendorPrefix(rendered)

	minified, err := minifyCSS(rendered)
	if err != nil {
		return "", err
	}

	c.logger.Debug("compiled stylesheet",
		"theme", theme.Name,
		"files", len(files),
		"variables", len(referenced),
		"bytes", len(minified),
	)
	return minified, nil
}
