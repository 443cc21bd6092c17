package charts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunChartRepository implements ChartRepository on top of bun.
//
// Charts use a 5-character string primary key and assets a composite
// chart/name key, so the queries are written directly instead of going
// through go-repository-bun's uuid-keyed handlers.
type BunChartRepository struct {
	db *bun.DB
}

// NewBunChartRepository creates a chart repository.
func NewBunChartRepository(db *bun.DB) *BunChartRepository {
	return &BunChartRepository{db: db}
}

func (r *BunChartRepository) Create(ctx context.Context, chart *Chart) (*Chart, error) {
	if _, err := r.db.NewInsert().Model(chart).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Resource: "chart", Key: chart.ID}
		}
		return nil, fmt.Errorf("chart repository error: %w", err)
	}
	return chart, nil
}

func (r *BunChartRepository) Update(ctx context.Context, chart *Chart) (*Chart, error) {
	res, err := r.db.NewUpdate().Model(chart).WherePK().Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("chart repository error: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, &NotFoundError{Resource: "chart", Key: chart.ID}
	}
	return chart, nil
}

func (r *BunChartRepository) GetByID(ctx context.Context, id string) (*Chart, error) {
	chart := new(Chart)
	err := r.db.NewSelect().Model(chart).Where("?TableAlias.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "chart", Key: id}
		}
		return nil, fmt.Errorf("chart repository error: %w", err)
	}
	return chart, nil
}

func (r *BunChartRepository) List(ctx context.Context) ([]*Chart, error) {
	var records []*Chart
	if err := r.db.NewSelect().Model(&records).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("chart repository error: %w", err)
	}
	return records, nil
}

// BunChartPublicRepository implements ChartPublicRepository on top of bun.
type BunChartPublicRepository struct {
	db *bun.DB
}

// NewBunChartPublicRepository creates a snapshot repository.
func NewBunChartPublicRepository(db *bun.DB) *BunChartPublicRepository {
	return &BunChartPublicRepository{db: db}
}

func (r *BunChartPublicRepository) Upsert(ctx context.Context, snapshot *ChartPublic) (*ChartPublic, error) {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	_, err := r.db.NewInsert().
		Model(snapshot).
		On("CONFLICT (chart_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("type = EXCLUDED.type").
		Set("metadata = EXCLUDED.metadata").
		Set("external_data = EXCLUDED.external_data").
		Set("author_id = EXCLUDED.author_id").
		Set("organization_id = EXCLUDED.organization_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("chart_public repository error: %w", err)
	}
	return snapshot, nil
}

func (r *BunChartPublicRepository) GetByChartID(ctx context.Context, chartID string) (*ChartPublic, error) {
	snapshot := new(ChartPublic)
	err := r.db.NewSelect().Model(snapshot).Where("?TableAlias.chart_id = ?", chartID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "chart_public", Key: chartID}
		}
		return nil, fmt.Errorf("chart_public repository error: %w", err)
	}
	return snapshot, nil
}

func (r *BunChartPublicRepository) DeleteByChartID(ctx context.Context, chartID string) error {
	_, err := r.db.NewDelete().
		Model((*ChartPublic)(nil)).
		Where("chart_id = ?", chartID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("chart_public repository error: %w", err)
	}
	return nil
}

// BunAssetRepository implements AssetRepository on top of bun.
type BunAssetRepository struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunAssetRepository creates a chart asset repository.
func NewBunAssetRepository(db *bun.DB) *BunAssetRepository {
	return &BunAssetRepository{db: db, now: time.Now}
}

func (r *BunAssetRepository) Put(ctx context.Context, chartID, name string, content []byte) error {
	asset := &ChartAsset{
		ID:        uuid.New(),
		ChartID:   chartID,
		Name:      name,
		Content:   content,
		UpdatedAt: r.now().UTC(),
	}
	_, err := r.db.NewInsert().
		Model(asset).
		On("CONFLICT (chart_id, name) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("chart asset repository error: %w", err)
	}
	return nil
}

func (r *BunAssetRepository) Get(ctx context.Context, chartID, name string) ([]byte, error) {
	asset := new(ChartAsset)
	err := r.db.NewSelect().
		Model(asset).
		Where("?TableAlias.chart_id = ?", chartID).
		Where("?TableAlias.name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "chart asset", Key: chartID + "/" + name}
		}
		return nil, fmt.Errorf("chart asset repository error: %w", err)
	}
	return asset.Content, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
