package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	publicmodels "github.com/chartpub/chartpub/charts"
	"github.com/chartpub/chartpub/internal/charts"
	"github.com/chartpub/chartpub/internal/embeds"
	"github.com/chartpub/chartpub/internal/identity"
	"github.com/chartpub/chartpub/internal/logging"
	"github.com/chartpub/chartpub/internal/sitegen"
	"github.com/chartpub/chartpub/internal/vis"
	"github.com/chartpub/chartpub/pkg/activity"
	"github.com/chartpub/chartpub/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

// Service orchestrates the chart publish lifecycle.
type Service interface {
	Publish(ctx context.Context, req PublishRequest) (*Result, error)
	Unpublish(ctx context.Context, req UnpublishRequest) error
	Status(ctx context.Context, chartID string, version int) ([]ProgressEntry, error)
}

// SiteBuilder assembles the static chart website. *sitegen.Service is the
// production implementation.
type SiteBuilder interface {
	Build(ctx context.Context, chart *publicmodels.Chart, opts sitegen.BuildOptions) (*sitegen.Build, error)
}

var (
	ErrChartRepositoryRequired    = errors.New("publish: chart repository required")
	ErrSnapshotRepositoryRequired = errors.New("publish: chart public repository required")
	ErrAssetRepositoryRequired    = errors.New("publish: asset repository required")
	ErrBuilderRequired            = errors.New("publish: site builder required")
	ErrProgressRequired           = errors.New("publish: progress repository required")
	ErrStorageRequired            = errors.New("publish: storage required")

	ErrChartIDRequired = errors.New("publish: chart id required")
	ErrChartNotFound   = errors.New("publish: chart not found")
	ErrNotAllowed      = errors.New("publish: not allowed")
	// ErrChartNotPublished guards unpublish: only charts with at least one
	// published version can be retired.
	ErrChartNotPublished = errors.New("publish: chart not published")
	// ErrPublishAttemptNotFound means no publish was ever started for the
	// requested chart/version pair.
	ErrPublishAttemptNotFound = errors.New("publish: publish attempt not found")
)

// Editing workflow steps persisted on the chart. Publishing parks the
// chart on the publish step; unpublishing drops it back to visualize.
const (
	publishedEditStep   = 5
	unpublishedEditStep = 3
)

// PublishRequest asks for a chart to be published by an actor.
type PublishRequest struct {
	ChartID string
	Actor   interfaces.Actor
}

// UnpublishRequest retires the published version of a chart.
type UnpublishRequest struct {
	ChartID string
	Actor   interfaces.Actor
}

// Result summarizes a successful publish.
type Result struct {
	Chart      *publicmodels.Chart
	Version    int
	PublicURL  string
	EmbedCodes []embeds.Code
	FileMap    []string
}

// ServiceOption configures the orchestrator.
type ServiceOption func(*service)

// WithAuthorizer sets the permission check consulted before publishing.
func WithAuthorizer(authorizer interfaces.Authorizer) ServiceOption {
	return func(s *service) {
		if authorizer != nil {
			s.authorizer = authorizer
		}
	}
}

// WithActivitySink attaches an activity sink notified after publish and
// unpublish. Notification is fire-and-forget.
func WithActivitySink(sink interfaces.ActivitySink) ServiceOption {
	return func(s *service) {
		s.activity = sink
	}
}

// WithNotifier attaches an activity event notifier, typically an
// *activity.Emitter fanning out to registered hooks.
func WithNotifier(notifier activity.Notifier) ServiceOption {
	return func(s *service) {
		s.notifier = notifier
	}
}

// WithURLResolver overrides the public URL resolver.
func WithURLResolver(resolver *URLResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.urls = resolver
		}
	}
}

// WithEmbedPreferences sets the embed template preferences applied when
// regenerating embed codes.
func WithEmbedPreferences(prefs embeds.Preferences) ServiceOption {
	return func(s *service) {
		s.embedPrefs = prefs
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

// WithLogger overrides the orchestrator logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	charts     charts.ChartRepository
	snapshots  charts.ChartPublicRepository
	assets     charts.AssetRepository
	builder    SiteBuilder
	progress   ProgressRepository
	storage    interfaces.PublishStorage
	authorizer interfaces.Authorizer
	activity   interfaces.ActivitySink
	notifier   activity.Notifier
	urls       *URLResolver
	embedPrefs embeds.Preferences
	locks      *keyedMutex
	now        func() time.Time
	logger     interfaces.Logger
}

// NewService constructs the publish orchestrator.
func NewService(
	chartRepo charts.ChartRepository,
	snapshotRepo charts.ChartPublicRepository,
	assetRepo charts.AssetRepository,
	builder SiteBuilder,
	progress ProgressRepository,
	storage interfaces.PublishStorage,
	opts ...ServiceOption,
) Service {
	if chartRepo == nil {
		panic(ErrChartRepositoryRequired)
	}
	if snapshotRepo == nil {
		panic(ErrSnapshotRepositoryRequired)
	}
	if assetRepo == nil {
		panic(ErrAssetRepositoryRequired)
	}
	if builder == nil {
		panic(ErrBuilderRequired)
	}
	if progress == nil {
		panic(ErrProgressRequired)
	}
	if storage == nil {
		panic(ErrStorageRequired)
	}

	s := &service{
		charts:     chartRepo,
		snapshots:  snapshotRepo,
		assets:     assetRepo,
		builder:    builder,
		progress:   progress,
		storage:    storage,
		authorizer: interfaces.AllowAll(),
		locks:      newKeyedMutex(),
		now:        time.Now,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish runs the full publish sequence for one chart. Publishes of the
// same chart are serialized; distinct charts run in parallel.
func (s *service) Publish(ctx context.Context, req PublishRequest) (*Result, error) {
	chartID := strings.TrimSpace(req.ChartID)
	if chartID == "" {
		return nil, ErrChartIDRequired
	}

	s.locks.Lock(chartID)
	defer s.locks.Unlock(chartID)

	chart, err := s.loadChart(ctx, chartID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, req.Actor, chartID); err != nil {
		return nil, err
	}

	version := chart.PublicVersion + 1
	logKey := identity.PublishLogKey(chartID, version)
	logger := logging.WithPublishContext(s.logger, chartID, version, "")
	ctx = logging.ContextWithFields(ctx, map[string]any{
		"chart_id":        chartID,
		"publish_version": version,
	})

	s.record(ctx, logKey, TagPrepare)

	s.record(ctx, logKey, TagRender)
	build, err := s.builder.Build(ctx, chart, sitegen.BuildOptions{Published: true, Actor: req.Actor})
	if err != nil {
		switch {
		case errors.Is(err, vis.ErrVisualizationNotSupported):
			s.record(ctx, logKey, TagErrorVisNotSupported)
		case errors.Is(err, sitegen.ErrEmptyDataset):
			s.record(ctx, logKey, TagErrorData)
		default:
			s.record(ctx, logKey, TagErrorRender)
		}
		return nil, err
	}
	defer build.Cleanup()

	s.record(ctx, logKey, TagData)
	if err := s.assets.Put(ctx, chartID, chartID+".public.csv", []byte(build.Data)); err != nil {
		s.record(ctx, logKey, TagErrorData)
		return nil, fmt.Errorf("publish: store public dataset: %w", err)
	}

	s.record(ctx, logKey, TagUpload)
	destination, err := s.storage.Move(ctx, interfaces.MoveRequest{
		ChartID: chartID,
		Version: version,
		OutDir:  build.OutDir,
		FileMap: build.FileMap,
	})
	if err != nil {
		s.record(ctx, logKey, TagErrorUpload)
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "publish: storage move failed").
			WithTextCode("PUBLISH_STORAGE_MOVE")
	}

	publicURL := destination
	if publicURL == "" {
		publicURL, err = s.urls.ChartURL(chartID, version)
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	chart.PublicVersion = version
	chart.PublishedAt = &now
	chart.PublicURL = &publicURL
	if chart.LastEditStep < publishedEditStep {
		chart.LastEditStep = publishedEditStep
	}
	chart.UpdatedAt = now

	codes, err := s.regenerateEmbedCodes(chart, build.FileMap, publicURL)
	if err != nil {
		return nil, err
	}

	updated, err := s.charts.Update(ctx, chart)
	if err != nil {
		return nil, fmt.Errorf("publish: commit chart %s: %w", chartID, err)
	}

	if err := s.upsertSnapshot(ctx, updated, now); err != nil {
		return nil, err
	}

	s.notify(ctx, req.Actor, updated, "chart.published", map[string]any{
		"version":    version,
		"public_url": publicURL,
	})

	s.record(ctx, logKey, TagDone)
	logger.Info("published chart", "public_url", publicURL, "files", len(build.FileMap))

	return &Result{
		Chart:      updated,
		Version:    version,
		PublicURL:  publicURL,
		EmbedCodes: codes,
		FileMap:    append([]string{}, build.FileMap...),
	}, nil
}

// Unpublish retires the public version of a chart.
func (s *service) Unpublish(ctx context.Context, req UnpublishRequest) error {
	chartID := strings.TrimSpace(req.ChartID)
	if chartID == "" {
		return ErrChartIDRequired
	}

	s.locks.Lock(chartID)
	defer s.locks.Unlock(chartID)

	chart, err := s.loadChart(ctx, chartID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, req.Actor, chartID); err != nil {
		return err
	}
	if chart.PublicVersion == 0 {
		return fmt.Errorf("publish: chart %s: %w", chartID, ErrChartNotPublished)
	}

	version := chart.PublicVersion
	now := s.now().UTC()
	chart.PublicVersion = 0
	chart.PublishedAt = nil
	chart.PublicURL = nil
	// The chart drops back to the visualize step so the editor reopens
	// ahead of the publish screen.
	if chart.LastEditStep > unpublishedEditStep {
		chart.LastEditStep = unpublishedEditStep
	}
	chart.UpdatedAt = now

	if _, err := s.charts.Update(ctx, chart); err != nil {
		return fmt.Errorf("publish: commit unpublish %s: %w", chartID, err)
	}
	if err := s.snapshots.DeleteByChartID(ctx, chartID); err != nil {
		return fmt.Errorf("publish: delete snapshot %s: %w", chartID, err)
	}
	if err := s.storage.Retire(ctx, chartID, version); err != nil {
		return fmt.Errorf("publish: retire storage %s: %w", chartID, err)
	}

	s.notify(ctx, req.Actor, chart, "chart.unpublished", map[string]any{
		"version": version,
	})
	return nil
}

// Status returns the progress log of one publish attempt.
func (s *service) Status(ctx context.Context, chartID string, version int) ([]ProgressEntry, error) {
	chartID = strings.TrimSpace(chartID)
	if chartID == "" {
		return nil, ErrChartIDRequired
	}
	entries, err := s.progress.List(ctx, identity.PublishLogKey(chartID, version))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("publish: chart %s version %d: %w", chartID, version, ErrPublishAttemptNotFound)
	}
	return entries, nil
}

func (s *service) loadChart(ctx context.Context, chartID string) (*publicmodels.Chart, error) {
	chart, err := s.charts.GetByID(ctx, chartID)
	if err != nil {
		var nf *charts.NotFoundError
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("publish: chart %s: %w", chartID, ErrChartNotFound)
		}
		return nil, err
	}
	if chart.Deleted {
		return nil, fmt.Errorf("publish: chart %s: %w", chartID, ErrChartNotFound)
	}
	return chart, nil
}

func (s *service) authorize(ctx context.Context, actor interfaces.Actor, chartID string) error {
	allowed, err := s.authorizer.CanPublish(ctx, actor, chartID)
	if err != nil {
		return fmt.Errorf("publish: authorize %s: %w", chartID, err)
	}
	if !allowed {
		return fmt.Errorf("publish: chart %s: %w", chartID, ErrNotAllowed)
	}
	return nil
}

// record appends a progress tag. The log is best effort: a failing append
// is logged and never aborts the publish.
func (s *service) record(ctx context.Context, key, tag string) {
	entry := ProgressEntry{Tag: tag, RecordedAt: s.now().UTC()}
	if err := s.progress.Append(ctx, key, entry); err != nil {
		s.logger.Warn("progress append failed", "key", key, "tag", tag, "error", err)
	}
}

// regenerateEmbedCodes recomputes the embed snippets and stores them in
// the chart's publish metadata under embed-method-{id} keys.
func (s *service) regenerateEmbedCodes(chart *publicmodels.Chart, fileMap []string, publicURL string) ([]embeds.Code, error) {
	prefs := s.embedPrefs
	if prefs.EmbedJSURL == "" {
		for _, name := range fileMap {
			if strings.HasPrefix(name, "embed.") && strings.HasSuffix(name, ".js") {
				prefs.EmbedJSURL = strings.TrimSuffix(publicURL, "/") + "/" + name
				break
			}
		}
	}

	codes, err := embeds.Codes(chart, prefs)
	if err != nil {
		return nil, err
	}

	if chart.Metadata.Publish == nil {
		chart.Metadata.Publish = map[string]any{}
	}
	stored := map[string]any{}
	for _, code := range codes {
		stored["embed-method-"+code.ID] = code.Snippet
	}
	chart.Metadata.Publish["embed-codes"] = stored
	return codes, nil
}

func (s *service) upsertSnapshot(ctx context.Context, chart *publicmodels.Chart, now time.Time) error {
	snapshot := &publicmodels.ChartPublic{
		ID:               identity.ChartPublicUUID(chart.ID),
		ChartID:          chart.ID,
		Title:            chart.Title,
		Type:             chart.Type,
		Metadata:         chart.Metadata,
		ExternalData:     chart.ExternalData,
		AuthorID:         chart.AuthorID,
		OrganizationID:   chart.OrganizationID,
		FirstPublishedAt: now,
		UpdatedAt:        now,
	}
	if _, err := s.snapshots.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("publish: upsert snapshot %s: %w", chart.ID, err)
	}
	return nil
}

// notify emits an activity record and a notifier event without blocking
// the publish path.
func (s *service) notify(ctx context.Context, actor interfaces.Actor, chart *publicmodels.Chart, verb string, data map[string]any) {
	if s.activity == nil && s.notifier == nil {
		return
	}
	occurredAt := s.now().UTC()
	detached := context.WithoutCancel(ctx)

	if s.activity != nil {
		record := interfaces.ActivityRecord{
			ActorID:    actor.UserID,
			UserID:     chart.AuthorID,
			TenantID:   actor.TeamID,
			Verb:       verb,
			ObjectType: "chart",
			ObjectID:   chart.ID,
			Channel:    "publish",
			OccurredAt: occurredAt,
			Data:       data,
		}
		go func() {
			if err := s.activity.Log(detached, record); err != nil {
				s.logger.Warn("activity log failed", "verb", verb, "chart_id", chart.ID, "error", err)
			}
		}()
	}

	if s.notifier != nil {
		event := activity.Event{
			Verb:       verb,
			ActorID:    actor.UserID.String(),
			UserID:     chart.AuthorID.String(),
			TenantID:   actor.TeamID.String(),
			ObjectType: "chart",
			ObjectID:   chart.ID,
			Channel:    "publish",
			Metadata:   data,
			OccurredAt: occurredAt,
		}
		go func() {
			if err := s.notifier.Notify(detached, event); err != nil {
				s.logger.Warn("activity notify failed", "verb", verb, "chart_id", chart.ID, "error", err)
			}
		}()
	}
}
