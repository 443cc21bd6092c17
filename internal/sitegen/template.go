package sitegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
)

// pageTemplate is the embed shell written as index.html. Published pages
// are meant to be iframed, never indexed, so robots are excluded at the
// document level. Styles are inlined to keep the page self-contained; only
// scripts and datasets ship as separate hashed files.
var pageTemplate = template.Must(template.New("chart-page").Parse(`<!DOCTYPE html>
<html lang="{{.Language}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex, nofollow">
<title>{{.Title}}</title>
{{range .HeadHTML}}{{.}}
{{end}}<style>{{.InlineCSS}}</style>
</head>
<body class="{{.ClassList}}">
<div class="chartpub-chart" id="chart" aria-label="{{.AriaLabel}}"></div>
{{if .NotesHTML}}<div class="chart-notes">{{.NotesHTML}}</div>
{{end}}{{range .BodyHTML}}{{.}}
{{end}}<script type="application/json" id="chart-props">{{.Props}}</script>
{{range .Scripts}}<script src="{{.}}"></script>
{{end}}</body>
</html>
`))

type pageData struct {
	Title     string
	Language  string
	AriaLabel string
	ClassList string
	InlineCSS template.CSS
	Props     template.JS
	Scripts   []string
	HeadHTML  []template.HTML
	BodyHTML  []template.HTML
	NotesHTML template.HTML
}

func renderPage(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("sitegen: render page: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeProps marshals the render props for inline embedding. Closing-tag
// sequences are escaped so the payload can never break out of its script
// element.
func encodeProps(props map[string]any) (template.JS, error) {
	encoded, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("sitegen: encode props: %w", err)
	}
	safe := strings.ReplaceAll(string(encoded), "</", `<\/`)
	return template.JS(safe), nil
}

// renderNotes converts the chart's markdown notes into HTML.
func renderNotes(notes string) (template.HTML, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("sitegen: render notes: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// pageClassList derives the body classes: height mode, theme id,
// visualization id, and the chart's publish settings.
func pageClassList(themeID, visID string, fixedHeight bool, autoDarkMode bool) string {
	classes := []string{"chartpub"}
	if fixedHeight {
		classes = append(classes, "vis-height-fixed")
	} else {
		classes = append(classes, "vis-height-fit")
	}
	if themeID != "" {
		classes = append(classes, "theme-"+themeID)
	}
	if visID != "" {
		classes = append(classes, "vis-"+visID)
	}
	if autoDarkMode {
		classes = append(classes, "dark-mode-auto")
	}
	return strings.Join(classes, " ")
}

// baseLanguage reduces a full tag to its two-letter language code, the
// form the page lang attribute carries (en-US to en).
func baseLanguage(language string) string {
	language = strings.TrimSpace(language)
	if base, _, found := strings.Cut(language, "-"); found {
		language = base
	}
	if language == "" {
		return "en"
	}
	return strings.ToLower(language)
}
