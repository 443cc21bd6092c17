package charts

import (
	"context"
	"fmt"
)

// ChartRepository exposes persistence operations for chart rows. GetByID
// returns soft-deleted charts; callers decide whether deletion is visible.
type ChartRepository interface {
	Create(ctx context.Context, chart *Chart) (*Chart, error)
	Update(ctx context.Context, chart *Chart) (*Chart, error)
	GetByID(ctx context.Context, id string) (*Chart, error)
	List(ctx context.Context) ([]*Chart, error)
}

// ChartPublicRepository persists the published snapshot rows.
type ChartPublicRepository interface {
	Upsert(ctx context.Context, snapshot *ChartPublic) (*ChartPublic, error)
	GetByChartID(ctx context.Context, chartID string) (*ChartPublic, error)
	DeleteByChartID(ctx context.Context, chartID string) error
}

// AssetRepository stores named blobs per chart. Put replaces any existing
// asset with the same chart/name pair.
type AssetRepository interface {
	Put(ctx context.Context, chartID, name string, content []byte) error
	Get(ctx context.Context, chartID, name string) ([]byte, error)
}

// NotFoundError is returned when a chart resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError is returned when a create collides with an existing key.
// Chart token generation retries on this error.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}
