package charts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Chart is one visualization project: dataset, metadata document, type, and
// theme reference. The ID is a fixed 5-character token assigned at creation
// and never changes.
type Chart struct {
	bun.BaseModel `bun:"table:charts,alias:c"`

	ID       string   `bun:"id,pk" json:"id"`
	Title    string   `bun:"title,notnull" json:"title"`
	Type     string   `bun:"type,notnull" json:"type"`
	Theme    string   `bun:"theme,notnull" json:"theme"`
	Language string   `bun:"language,notnull,default:'en-US'" json:"language"`
	Metadata Metadata `bun:"metadata,type:jsonb" json:"metadata"`

	// ExternalData points at a live dataset source; nil for uploaded data.
	ExternalData *string `bun:"external_data" json:"external_data,omitempty"`

	LastEditStep  int        `bun:"last_edit_step,notnull,default:0" json:"last_edit_step"`
	PublicVersion int        `bun:"public_version,notnull,default:0" json:"public_version"`
	PublishedAt   *time.Time `bun:"published_at" json:"published_at,omitempty"`
	PublicURL     *string    `bun:"public_url" json:"public_url,omitempty"`

	AuthorID       uuid.UUID  `bun:"author_id,type:uuid" json:"author_id"`
	OrganizationID *uuid.UUID `bun:"organization_id,type:uuid" json:"organization_id,omitempty"`

	Deleted   bool       `bun:"deleted,notnull,default:false" json:"-"`
	DeletedAt *time.Time `bun:"deleted_at" json:"-"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// IsPublished reports whether a public version of the chart is live.
func (c *Chart) IsPublished() bool {
	return c != nil && c.PublicVersion > 0
}

// Metadata is the nested chart configuration document. Sections mirror the
// editing workflow; unknown keys inside each section are preserved verbatim.
type Metadata struct {
	Describe  map[string]any `json:"describe,omitempty"`
	Visualize map[string]any `json:"visualize,omitempty"`
	Annotate  map[string]any `json:"annotate,omitempty"`
	Publish   map[string]any `json:"publish,omitempty"`
	Custom    map[string]any `json:"custom,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// PublishValue reads a key from the publish section, returning ok=false when
// the section or key is absent.
func (m Metadata) PublishValue(key string) (any, bool) {
	if m.Publish == nil {
		return nil, false
	}
	value, ok := m.Publish[key]
	return value, ok
}

// ChartPublic is the denormalized snapshot of the currently published chart.
// It is upserted at the end of every successful publish and destroyed on
// unpublish, so it always reflects what is live regardless of later private
// edits to the Chart row.
type ChartPublic struct {
	bun.BaseModel `bun:"table:charts_public,alias:cp"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ChartID      string    `bun:"chart_id,notnull,unique" json:"chart_id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Type         string    `bun:"type,notnull" json:"type"`
	Metadata     Metadata  `bun:"metadata,type:jsonb" json:"metadata"`
	ExternalData *string   `bun:"external_data" json:"external_data,omitempty"`

	AuthorID       uuid.UUID  `bun:"author_id,type:uuid" json:"author_id"`
	OrganizationID *uuid.UUID `bun:"organization_id,type:uuid" json:"organization_id,omitempty"`

	FirstPublishedAt time.Time `bun:"first_published_at,nullzero" json:"first_published_at"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// ChartAsset is a named blob attached to a chart (datasets, public CSV cache,
// supplementary JSON). Assets are replaced wholesale on write.
type ChartAsset struct {
	bun.BaseModel `bun:"table:chart_assets,alias:ca"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ChartID   string    `bun:"chart_id,notnull,unique:chart_assets_chart_name" json:"chart_id"`
	Name      string    `bun:"name,notnull,unique:chart_assets_chart_name" json:"name"`
	Content   []byte    `bun:"content" json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
