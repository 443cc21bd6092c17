package interfaces

import "context"

// PublishData is the payload handed to the static site assembler. The
// platform assembles it from chart metadata, the raw dataset, and any
// translation strings the visualization frontend needs at render time.
type PublishData struct {
	// Data is the chart's dataset (CSV or JSON payload). Empty data is a
	// terminal build failure.
	Data string
	// Chart is the serialized chart document included in the render props.
	Chart map[string]any
	// Translations maps message keys to localized strings for the chart's
	// language.
	Translations map[string]string
	// BlockStyles is extra CSS contributed by embedded blocks.
	BlockStyles []string
}

// PublishDataProvider assembles the render payload for one chart. It mirrors
// the platform's internal publish-data endpoint: an in-process call that
// returns everything the embed shell needs besides theme and assets.
type PublishDataProvider interface {
	PublishData(ctx context.Context, chartID string, published bool) (*PublishData, error)
}
