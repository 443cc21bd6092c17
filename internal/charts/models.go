package charts

import pubcharts "github.com/chartpub/chartpub/charts"

type (
	Chart       = pubcharts.Chart
	ChartPublic = pubcharts.ChartPublic
	ChartAsset  = pubcharts.ChartAsset
	Metadata    = pubcharts.Metadata
)
