package charts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chartpub/chartpub/internal/identity"
	"github.com/google/uuid"
)

// Service exposes chart entity operations consumed by the publishing core.
// Full editing endpoints live in the host application; this service carries
// the lifecycle pieces the pipeline depends on.
type Service interface {
	CreateChart(ctx context.Context, input CreateChartInput) (*Chart, error)
	GetChart(ctx context.Context, id string) (*Chart, error)
	UpdateMetadata(ctx context.Context, id string, meta Metadata) (*Chart, error)
	DeleteChart(ctx context.Context, id string) error

	PutAsset(ctx context.Context, chartID, name string, content []byte) error
	GetAsset(ctx context.Context, chartID, name string) ([]byte, error)
}

var (
	ErrChartRepositoryRequired = errors.New("charts: chart repository required")
	ErrAssetRepositoryRequired = errors.New("charts: asset repository required")

	ErrChartNotFound     = errors.New("charts: chart not found")
	ErrChartTypeRequired = errors.New("charts: type required")
	ErrTokenExhausted    = errors.New("charts: could not allocate a unique chart id")
)

// CreateChartInput carries the fields accepted at chart creation. Omitted
// Language defaults to en-US; Theme defaults to the service default theme.
type CreateChartInput struct {
	Title          string
	Type           string
	Theme          string
	Language       string
	Metadata       Metadata
	AuthorID       uuid.UUID
	OrganizationID *uuid.UUID
}

// TokenGenerator produces candidate chart identifiers.
type TokenGenerator func() (string, error)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithTokenGenerator overrides chart id generation (primarily for tests).
func WithTokenGenerator(generator TokenGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.token = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultTheme sets the theme assigned to charts created without one.
func WithDefaultTheme(name string) ServiceOption {
	return func(s *service) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.defaultTheme = trimmed
		}
	}
}

const tokenAttempts = 5

type service struct {
	charts       ChartRepository
	assets       AssetRepository
	token        TokenGenerator
	now          func() time.Time
	defaultTheme string
}

// NewService constructs a chart service instance.
func NewService(chartRepo ChartRepository, assetRepo AssetRepository, opts ...ServiceOption) Service {
	if chartRepo == nil {
		panic(ErrChartRepositoryRequired)
	}
	if assetRepo == nil {
		panic(ErrAssetRepositoryRequired)
	}

	s := &service{
		charts:       chartRepo,
		assets:       assetRepo,
		token:        identity.NewChartToken,
		now:          time.Now,
		defaultTheme: "default",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateChart(ctx context.Context, input CreateChartInput) (*Chart, error) {
	chartType := strings.TrimSpace(input.Type)
	if chartType == "" {
		return nil, ErrChartTypeRequired
	}
	if err := ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	theme := strings.TrimSpace(input.Theme)
	if theme == "" {
		theme = s.defaultTheme
	}
	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = "en-US"
	}

	record := &Chart{
		Title:          strings.TrimSpace(input.Title),
		Type:           chartType,
		Theme:          theme,
		Language:       language,
		Metadata:       cloneMetadata(input.Metadata),
		AuthorID:       input.AuthorID,
		OrganizationID: input.OrganizationID,
		CreatedAt:      s.now().UTC(),
		UpdatedAt:      s.now().UTC(),
	}

	// Token collisions are rare (62^5 space) but possible; retry a few
	// times before giving up.
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err := s.token()
		if err != nil {
			return nil, err
		}
		record.ID = token
		created, err := s.charts.Create(ctx, record)
		if err == nil {
			return cloneChart(created), nil
		}
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
	}
	return nil, ErrTokenExhausted
}

func (s *service) GetChart(ctx context.Context, id string) (*Chart, error) {
	chart, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneChart(chart), nil
}

func (s *service) UpdateMetadata(ctx context.Context, id string, meta Metadata) (*Chart, error) {
	if err := ValidateMetadata(meta); err != nil {
		return nil, err
	}
	chart, err := s.loadVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	chart.Metadata = cloneMetadata(meta)
	chart.UpdatedAt = s.now().UTC()
	updated, err := s.charts.Update(ctx, chart)
	if err != nil {
		return nil, err
	}
	return cloneChart(updated), nil
}

func (s *service) DeleteChart(ctx context.Context, id string) error {
	chart, err := s.loadVisible(ctx, id)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	chart.Deleted = true
	chart.DeletedAt = &now
	chart.UpdatedAt = now
	_, err = s.charts.Update(ctx, chart)
	return err
}

func (s *service) PutAsset(ctx context.Context, chartID, name string, content []byte) error {
	if _, err := s.loadVisible(ctx, chartID); err != nil {
		return err
	}
	return s.assets.Put(ctx, chartID, name, content)
}

func (s *service) GetAsset(ctx context.Context, chartID, name string) ([]byte, error) {
	if _, err := s.loadVisible(ctx, chartID); err != nil {
		return nil, err
	}
	return s.assets.Get(ctx, chartID, name)
}

// loadVisible fetches a chart and hides soft-deleted rows behind not-found.
func (s *service) loadVisible(ctx context.Context, id string) (*Chart, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrChartNotFound
	}
	chart, err := s.charts.GetByID(ctx, id)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, ErrChartNotFound
		}
		return nil, err
	}
	if chart.Deleted {
		return nil, ErrChartNotFound
	}
	return chart, nil
}
