package charts

import (
	"strings"
	"time"
)

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := strings.Clone(*value)
	return &cloned
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneChart(chart *Chart) *Chart {
	if chart == nil {
		return nil
	}
	cloned := *chart
	cloned.Metadata = cloneMetadata(chart.Metadata)
	cloned.ExternalData = cloneString(chart.ExternalData)
	cloned.PublishedAt = cloneTimePtr(chart.PublishedAt)
	cloned.PublicURL = cloneString(chart.PublicURL)
	cloned.DeletedAt = cloneTimePtr(chart.DeletedAt)
	if chart.OrganizationID != nil {
		orgID := *chart.OrganizationID
		cloned.OrganizationID = &orgID
	}
	return &cloned
}

func cloneSnapshot(snapshot *ChartPublic) *ChartPublic {
	if snapshot == nil {
		return nil
	}
	cloned := *snapshot
	cloned.Metadata = cloneMetadata(snapshot.Metadata)
	cloned.ExternalData = cloneString(snapshot.ExternalData)
	if snapshot.OrganizationID != nil {
		orgID := *snapshot.OrganizationID
		cloned.OrganizationID = &orgID
	}
	return &cloned
}

func cloneMetadata(meta Metadata) Metadata {
	return Metadata{
		Describe:  deepCloneMap(meta.Describe),
		Visualize: deepCloneMap(meta.Visualize),
		Annotate:  deepCloneMap(meta.Annotate),
		Publish:   deepCloneMap(meta.Publish),
		Custom:    deepCloneMap(meta.Custom),
		Data:      deepCloneMap(meta.Data),
	}
}

func deepCloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = deepCloneValue(value)
	}
	return out
}

func deepCloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCloneMap(typed)
	case []any:
		cloned := make([]any, len(typed))
		for i, item := range typed {
			cloned[i] = deepCloneValue(item)
		}
		return cloned
	default:
		return value
	}
}
