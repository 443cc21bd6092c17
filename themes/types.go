package themes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Theme is a named visual style: LESS source, font declarations, and a
// nested data document (colors, typography, options). A theme may extend
// one parent theme; resolution merges the chain before rendering.
type Theme struct {
	bun.BaseModel `bun:"table:themes,alias:t"`

	ID    uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name  string    `bun:"name,notnull,unique" json:"name"`
	Title string    `bun:"title,notnull" json:"title"`

	// Extends names the parent theme; nil for base themes. Inheritance is a
	// single-level chain: data deep-merges (child wins), fonts and assets
	// shallow-merge, LESS concatenates parent-first.
	Extends *string `bun:"extends" json:"extends,omitempty"`

	LESS  string               `bun:"less" json:"less"`
	Fonts map[string]FontAsset `bun:"fonts,type:jsonb" json:"fonts,omitempty"`
	Data  map[string]any       `bun:"data,type:jsonb" json:"data"`

	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// FontMethod selects how a font declaration is turned into CSS.
type FontMethod string

const (
	// FontMethodFile emits an @font-face rule with hosted file sources.
	FontMethodFile FontMethod = "file"
	// FontMethodURL emits an @font-face rule with a single remote source.
	FontMethodURL FontMethod = "url"
	// FontMethodImport emits an @import statement for a provider stylesheet.
	FontMethodImport FontMethod = "import"
)

// FontFiles lists per-format sources for a file-based font. Empty entries
// are skipped when building the src fallback list.
type FontFiles struct {
	Woff     string `json:"woff,omitempty"`
	TrueType string `json:"ttf,omitempty"`
	SVG      string `json:"svg,omitempty"`
}

// FontAsset declares one font a theme ships. Exactly one of Files, URL, or
// Import is consulted depending on Method.
type FontAsset struct {
	Method  FontMethod `json:"method"`
	Files   FontFiles  `json:"files,omitempty"`
	URL     string     `json:"url,omitempty"`
	Import  string     `json:"import,omitempty"`
	Weight  string     `json:"weight,omitempty"`
	Style   string     `json:"style,omitempty"`
	Display string     `json:"display,omitempty"`
}
