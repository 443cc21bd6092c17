package embeds

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/chartpub/chartpub/charts"
)

var (
	ErrChartRequired = errors.New("embeds: chart required")
	// ErrChartURLRequired marks a chart with no public URL; embed codes
	// only exist for published charts.
	ErrChartURLRequired = errors.New("embeds: chart public url required")
)

// Default embed dimensions applied when the chart metadata does not pin
// explicit ones.
const (
	defaultWidth  = 600
	defaultHeight = 400
)

// ResponsiveID and IframeID are the built-in embed variants.
const (
	ResponsiveID = "responsive"
	IframeID     = "iframe"
)

// Template is an embed snippet with %token% placeholders.
type Template struct {
	ID    string
	Title string
	Text  string
}

// Preferences select and extend the generated codes. Team settings win
// over user settings, and both fall back to the responsive variant.
type Preferences struct {
	TeamPreferred string
	UserPreferred string
	// Custom holds team-defined templates appended after the built-ins.
	Custom []Template
	// Tokens supplies values for %custom_KEY% placeholders.
	Tokens map[string]string
	// EmbedJSURL is the public URL of the embed loader script.
	EmbedJSURL string
	// PublicURL overrides the unversioned public URL token; the chart's
	// stored URL is used when empty.
	PublicURL string
}

// Code is one rendered embed snippet.
type Code struct {
	ID        string
	Title     string
	Preferred bool
	Template  string
	Snippet   string
}

var responsiveTemplate = Template{
	ID:    ResponsiveID,
	Title: "Responsive iframe",
	Text: `<div class="chartpub-embed" data-chart-id="%chart_id%" style="min-height: %chart_height%px">` +
		`<iframe title="%chart_title%" data-chart-id="%chart_id%" src="%chart_url%" scrolling="no" frameborder="0" ` +
		`style="width: 0; min-width: 100% !important; border: none;" height="%chart_height%"></iframe>` +
		`<script type="text/javascript" defer src="%embed_js%" charset="utf-8"></script></div>`,
}

var iframeTemplate = Template{
	ID:    IframeID,
	Title: "Plain iframe",
	Text: `<iframe title="%chart_title%" src="%chart_url%" width="%chart_width%" height="%chart_height%" ` +
		`scrolling="no" frameborder="0" style="border: none;"></iframe>`,
}

// Codes renders every embed variant for a published chart. Substitution
// order is fixed so templates nesting one token inside another expand
// predictably, and custom tokens always run last.
func Codes(chart *charts.Chart, prefs Preferences) ([]Code, error) {
	if chart == nil {
		return nil, ErrChartRequired
	}
	chartURL := ""
	if chart.PublicURL != nil {
		chartURL = strings.TrimSpace(*chart.PublicURL)
	}
	if chartURL == "" {
		return nil, fmt.Errorf("embeds: chart %s: %w", chart.ID, ErrChartURLRequired)
	}

	publicURL := strings.TrimSpace(prefs.PublicURL)
	if publicURL == "" {
		publicURL = chartURL
	}

	replacements := [][2]string{
		{"%chart_id%", chart.ID},
		{"%chart_url%", chartURL},
		{"%chart_public_url%", publicURL},
		{"%chart_title%", html.EscapeString(chart.Title)},
		{"%chart_width%", strconv.Itoa(embedDimension(chart, "embed-width", defaultWidth))},
		{"%chart_height%", strconv.Itoa(embedDimension(chart, "embed-height", defaultHeight))},
		{"%embed_js%", prefs.EmbedJSURL},
	}

	templates := append([]Template{responsiveTemplate, iframeTemplate}, prefs.Custom...)
	preferred := preferredID(templates, prefs)
	tokens := customTokens(chart, prefs.Tokens)

	codes := make([]Code, 0, len(templates))
	for _, tpl := range templates {
		snippet := tpl.Text
		for _, pair := range replacements {
			snippet = strings.ReplaceAll(snippet, pair[0], pair[1])
		}
		for _, key := range sortedTokenKeys(tokens) {
			snippet = strings.ReplaceAll(snippet, "%custom_"+key+"%", tokens[key])
		}
		codes = append(codes, Code{
			ID:        tpl.ID,
			Title:     tpl.Title,
			Preferred: tpl.ID == preferred,
			Template:  tpl.Text,
			Snippet:   snippet,
		})
	}
	return codes, nil
}

// preferredID resolves the preferred variant: team setting, then user
// setting, then responsive. Unknown ids fall through.
func preferredID(templates []Template, prefs Preferences) string {
	known := map[string]struct{}{}
	for _, tpl := range templates {
		known[tpl.ID] = struct{}{}
	}
	for _, candidate := range []string{prefs.TeamPreferred, prefs.UserPreferred} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ResponsiveID
}

func embedDimension(chart *charts.Chart, key string, fallback int) int {
	raw, ok := chart.Metadata.PublishValue(key)
	if !ok {
		return fallback
	}
	switch value := raw.(type) {
	case int:
		if value > 0 {
			return value
		}
	case float64:
		if value > 0 {
			return int(value)
		}
	}
	return fallback
}

// customTokens resolves %custom_KEY% values: configured tokens first, then
// the chart's metadata custom section on top. Chart values are user
// supplied, so they are escaped before substitution.
func customTokens(chart *charts.Chart, configured map[string]string) map[string]string {
	tokens := make(map[string]string, len(configured)+len(chart.Metadata.Custom))
	for key, value := range configured {
		tokens[key] = value
	}
	for key, value := range chart.Metadata.Custom {
		tokens[key] = html.EscapeString(tokenString(value))
	}
	return tokens
}

func tokenString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedTokenKeys(tokens map[string]string) []string {
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
