package charts

import (
	"context"
	"sort"
	"sync"
)

// MemoryChartRepository provides an in-memory implementation of ChartRepository.
type MemoryChartRepository struct {
	mu   sync.RWMutex
	byID map[string]*Chart
}

// NewMemoryChartRepository constructs an empty memory-backed chart repository.
func NewMemoryChartRepository() *MemoryChartRepository {
	return &MemoryChartRepository{byID: make(map[string]*Chart)}
}

func (r *MemoryChartRepository) Create(_ context.Context, chart *Chart) (*Chart, error) {
	if chart == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[chart.ID]; exists {
		return nil, &ConflictError{Resource: "chart", Key: chart.ID}
	}
	cloned := cloneChart(chart)
	r.byID[cloned.ID] = cloned
	return cloneChart(cloned), nil
}

func (r *MemoryChartRepository) Update(_ context.Context, chart *Chart) (*Chart, error) {
	if chart == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[chart.ID]; !ok {
		return nil, &NotFoundError{Resource: "chart", Key: chart.ID}
	}
	cloned := cloneChart(chart)
	r.byID[cloned.ID] = cloned
	return cloneChart(cloned), nil
}

func (r *MemoryChartRepository) GetByID(_ context.Context, id string) (*Chart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "chart", Key: id}
	}
	return cloneChart(record), nil
}

func (r *MemoryChartRepository) List(_ context.Context) ([]*Chart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Chart, 0, len(r.byID))
	for _, record := range r.byID {
		out = append(out, cloneChart(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemoryChartPublicRepository provides an in-memory snapshot store.
type MemoryChartPublicRepository struct {
	mu      sync.RWMutex
	byChart map[string]*ChartPublic
}

// NewMemoryChartPublicRepository constructs an empty snapshot repository.
func NewMemoryChartPublicRepository() *MemoryChartPublicRepository {
	return &MemoryChartPublicRepository{byChart: make(map[string]*ChartPublic)}
}

func (r *MemoryChartPublicRepository) Upsert(_ context.Context, snapshot *ChartPublic) (*ChartPublic, error) {
	if snapshot == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cloned := cloneSnapshot(snapshot)
	if existing, ok := r.byChart[cloned.ChartID]; ok {
		cloned.ID = existing.ID
		cloned.FirstPublishedAt = existing.FirstPublishedAt
	}
	r.byChart[cloned.ChartID] = cloned
	return cloneSnapshot(cloned), nil
}

func (r *MemoryChartPublicRepository) GetByChartID(_ context.Context, chartID string) (*ChartPublic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byChart[chartID]
	if !ok {
		return nil, &NotFoundError{Resource: "chart_public", Key: chartID}
	}
	return cloneSnapshot(record), nil
}

func (r *MemoryChartPublicRepository) DeleteByChartID(_ context.Context, chartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byChart, chartID)
	return nil
}

// MemoryAssetRepository provides an in-memory chart asset store.
type MemoryAssetRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryAssetRepository constructs an empty asset repository.
func NewMemoryAssetRepository() *MemoryAssetRepository {
	return &MemoryAssetRepository{blobs: make(map[string][]byte)}
}

func assetKey(chartID, name string) string {
	return chartID + "/" + name
}

func (r *MemoryAssetRepository) Put(_ context.Context, chartID, name string, content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := make([]byte, len(content))
	copy(copied, content)
	r.blobs[assetKey(chartID, name)] = copied
	return nil
}

func (r *MemoryAssetRepository) Get(_ context.Context, chartID, name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, ok := r.blobs[assetKey(chartID, name)]
	if !ok {
		return nil, &NotFoundError{Resource: "chart asset", Key: assetKey(chartID, name)}
	}
	copied := make([]byte, len(content))
	copy(copied, content)
	return copied, nil
}
