// Package chartpub is the embeddable chart publishing core: theme-aware
// stylesheet compilation, static chart website assembly, and a publish
// lifecycle with versioned public snapshots and embed code generation.
package chartpub

import (
	"context"
	"errors"
	"strings"

	pubcharts "github.com/chartpub/chartpub/charts"
	"github.com/chartpub/chartpub/internal/charts"
	"github.com/chartpub/chartpub/internal/commands"
	chartscmd "github.com/chartpub/chartpub/internal/commands/charts"
	"github.com/chartpub/chartpub/internal/embeds"
	"github.com/chartpub/chartpub/internal/logging"
	"github.com/chartpub/chartpub/internal/logging/gologger"
	"github.com/chartpub/chartpub/internal/publish"
	"github.com/chartpub/chartpub/internal/sitegen"
	"github.com/chartpub/chartpub/internal/styles"
	"github.com/chartpub/chartpub/internal/themes"
	"github.com/chartpub/chartpub/internal/vis"
	"github.com/chartpub/chartpub/pkg/activity"
	"github.com/chartpub/chartpub/pkg/interfaces"
	"github.com/chartpub/chartpub/pkg/storage"
	pubthemes "github.com/chartpub/chartpub/themes"
	"github.com/uptrace/bun"
)

// ChartService exports the chart service contract for consumers of the
// chartpub package.
type ChartService = charts.Service

// ThemeService exports the theme service contract.
type ThemeService = themes.Service

// PublishService exports the publish orchestrator contract.
type PublishService = publish.Service

// SiteBuilder exports the site assembly contract consumed by the publish
// orchestrator.
type SiteBuilder = publish.SiteBuilder

// Chart exports the chart entity.
type Chart = pubcharts.Chart

// ChartMetadata exports the nested chart configuration document.
type ChartMetadata = pubcharts.Metadata

// Theme exports the theme entity.
type Theme = pubthemes.Theme

// Visualization exports a registrable chart type definition.
type Visualization = vis.Visualization

// VisualizationLibrary exports a visualization vendor library binding.
type VisualizationLibrary = vis.Library

// Build exports the assembled chart website handed to storage.
type Build = sitegen.Build

// BuildOptions exports the per-build assembly options.
type BuildOptions = sitegen.BuildOptions

// EmbedCode exports one generated embed snippet.
type EmbedCode = embeds.Code

// EmbedPreferences exports the embed template preferences.
type EmbedPreferences = embeds.Preferences

// Actor exports the caller identity consumed by chart operations.
type Actor = interfaces.Actor

// PublishRequest exports the publish orchestrator request.
type PublishRequest = publish.PublishRequest

// UnpublishRequest exports the unpublish request.
type UnpublishRequest = publish.UnpublishRequest

// PublishResult exports the publish outcome summary.
type PublishResult = publish.Result

// ProgressEntry exports one publish progress log entry.
type ProgressEntry = publish.ProgressEntry

var (
	// ErrDataProviderRequired flags module construction without a publish
	// data provider; the assembler cannot fetch datasets without one.
	ErrDataProviderRequired = errors.New("chartpub: publish data provider required")
	// ErrDatabaseRequired flags the bun storage provider without a database.
	ErrDatabaseRequired = errors.New("chartpub: bun storage provider requires a database")
	// ErrStorageRequired flags construction without a publish destination:
	// neither a local publishing root nor a host-supplied storage.
	ErrStorageRequired = errors.New("chartpub: publish storage required")
)

// Option overrides module wiring during construction.
type Option func(*moduleOptions)

type moduleOptions struct {
	db             *bun.DB
	provider       interfaces.PublishDataProvider
	storage        interfaces.PublishStorage
	authorizer     interfaces.Authorizer
	activitySink   interfaces.ActivitySink
	blockProviders []interfaces.BlockProvider
	loggerProvider interfaces.LoggerProvider
	visualizations []vis.Visualization
}

// WithDatabase supplies the bun database backing the "bun" storage provider.
func WithDatabase(db *bun.DB) Option {
	return func(o *moduleOptions) {
		o.db = db
	}
}

// WithPublishDataProvider supplies the render payload source. Required.
func WithPublishDataProvider(provider interfaces.PublishDataProvider) Option {
	return func(o *moduleOptions) {
		o.provider = provider
	}
}

// WithPublishStorage overrides the publish destination. When unset the
// module builds a local filesystem destination from Publishing.Root.
func WithPublishStorage(store interfaces.PublishStorage) Option {
	return func(o *moduleOptions) {
		o.storage = store
	}
}

// WithAuthorizer supplies the per-chart permission check.
func WithAuthorizer(authorizer interfaces.Authorizer) Option {
	return func(o *moduleOptions) {
		o.authorizer = authorizer
	}
}

// WithActivitySink attaches an activity sink notified after publish and
// unpublish.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(o *moduleOptions) {
		o.activitySink = sink
	}
}

// WithBlockProvider registers a provider of embedded block assets.
func WithBlockProvider(provider interfaces.BlockProvider) Option {
	return func(o *moduleOptions) {
		if provider != nil {
			o.blockProviders = append(o.blockProviders, provider)
		}
	}
}

// WithLoggerProvider overrides the logger provider built from Logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.loggerProvider = provider
	}
}

// WithVisualizations registers chart types at construction.
func WithVisualizations(visualizations ...vis.Visualization) Option {
	return func(o *moduleOptions) {
		o.visualizations = append(o.visualizations, visualizations...)
	}
}

// Module is the top level chartpub runtime facade. Construct one per
// deployment and share it; every service it exposes is safe for concurrent
// use.
type Module struct {
	config   Config
	loggers  interfaces.LoggerProvider
	hooks    *interfaces.HTMLHookRegistry
	registry *vis.Registry
	events   *activity.Emitter
	themes   themes.Service
	charts   charts.Service
	builder  *sitegen.Service
	publish  publish.Service
}

// New constructs a chartpub module from the provided configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &moduleOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.provider == nil {
		return nil, ErrDataProviderRequired
	}

	loggers, err := buildLoggerProvider(cfg.Logging, options.loggerProvider)
	if err != nil {
		return nil, err
	}

	useBun := strings.EqualFold(strings.TrimSpace(cfg.Storage.Provider), "bun")
	if useBun && options.db == nil {
		return nil, ErrDatabaseRequired
	}

	var (
		themeRepo    themes.ThemeRepository
		chartRepo    charts.ChartRepository
		snapshotRepo charts.ChartPublicRepository
		assetRepo    charts.AssetRepository
		progressRepo publish.ProgressRepository
	)
	if useBun {
		themeRepo = themes.NewBunThemeRepository(options.db)
		chartRepo = charts.NewBunChartRepository(options.db)
		snapshotRepo = charts.NewBunChartPublicRepository(options.db)
		assetRepo = charts.NewBunAssetRepository(options.db)
		progressRepo = publish.NewBunProgressRepository(options.db)
	} else {
		themeRepo = themes.NewMemoryThemeRepository()
		chartRepo = charts.NewMemoryChartRepository()
		snapshotRepo = charts.NewMemoryChartPublicRepository()
		assetRepo = charts.NewMemoryAssetRepository()
		progressRepo = publish.NewMemoryProgressRepository()
	}

	themeSvc := themes.NewService(themeRepo)
	chartSvc := charts.NewService(chartRepo, assetRepo,
		charts.WithDefaultTheme(cfg.Themes.DefaultTheme),
	)

	if dir := strings.TrimSpace(cfg.Themes.BootstrapDir); dir != "" {
		logger := logging.ThemesLogger(loggers)
		registered, errs := themes.BootstrapDir(context.Background(), themeSvc, dir)
		for _, bootErr := range errs {
			logger.Warn("theme bootstrap", "error", bootErr)
		}
		logger.Info("themes bootstrapped", "dir", dir, "registered", registered)
	}
	if err := ensureDefaultTheme(themeSvc, cfg.Themes.DefaultTheme); err != nil {
		return nil, err
	}

	registry := vis.NewRegistry()
	for _, visualization := range options.visualizations {
		if err := registry.Register(visualization); err != nil {
			return nil, err
		}
	}

	hooks := &interfaces.HTMLHookRegistry{}
	compiler := styles.NewCompiler(
		styles.WithSearchPaths(cfg.Assets.StyleSearchPaths...),
		styles.WithLogger(logging.StylesLogger(loggers)),
	)

	builderOpts := []sitegen.ServiceOption{
		sitegen.WithAssetRoot(cfg.Assets.Root),
		sitegen.WithPolyfills(cfg.Assets.Polyfills...),
		sitegen.WithCoreScripts(cfg.Assets.CoreScripts...),
		sitegen.WithCompiler(compiler),
		sitegen.WithHooks(hooks),
		sitegen.WithLogger(logging.SitegenLogger(loggers)),
	}
	for _, provider := range options.blockProviders {
		builderOpts = append(builderOpts, sitegen.WithBlockProvider(provider))
	}
	builder := sitegen.NewService(options.provider, themeSvc, registry, builderOpts...)

	store := options.storage
	if store == nil {
		root := strings.TrimSpace(cfg.Publishing.Root)
		if root == "" {
			return nil, ErrStorageRequired
		}
		local, err := storage.NewLocalStorage(root, cfg.Publishing.BaseURL)
		if err != nil {
			return nil, err
		}
		store = local
	}

	events := activity.NewEmitter()
	publishOpts := []publish.ServiceOption{
		publish.WithURLResolver(publish.NewURLResolver(cfg.Publishing.BaseURL)),
		publish.WithNotifier(events),
		publish.WithEmbedPreferences(embeds.Preferences{
			TeamPreferred: cfg.Embeds.TeamPreferred,
			UserPreferred: cfg.Embeds.UserPreferred,
			Tokens:        cfg.Embeds.Tokens,
		}),
		publish.WithLogger(logging.PublishLogger(loggers)),
	}
	if options.authorizer != nil {
		publishOpts = append(publishOpts, publish.WithAuthorizer(options.authorizer))
	}
	if options.activitySink != nil {
		publishOpts = append(publishOpts, publish.WithActivitySink(options.activitySink))
	}
	publishSvc := publish.NewService(chartRepo, snapshotRepo, assetRepo, builder, progressRepo, store, publishOpts...)

	return &Module{
		config:   cfg,
		loggers:  loggers,
		hooks:    hooks,
		registry: registry,
		events:   events,
		themes:   themeSvc,
		charts:   chartSvc,
		builder:  builder,
		publish:  publishSvc,
	}, nil
}

// Charts returns the configured chart service.
func (m *Module) Charts() ChartService {
	return m.charts
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	return m.themes
}

// Publish returns the configured publish orchestrator.
func (m *Module) Publish() PublishService {
	return m.publish
}

// Builder returns the static site assembler, useful for preview renders
// outside the publish lifecycle.
func (m *Module) Builder() *sitegen.Service {
	return m.builder
}

// Visualizations returns the chart type registry for late registration.
func (m *Module) Visualizations() *vis.Registry {
	return m.registry
}

// Hooks returns the HTML hook registry consulted on every page render.
func (m *Module) Hooks() *interfaces.HTMLHookRegistry {
	return m.hooks
}

// Events returns the activity emitter; hosts register notification hooks on
// it to observe publish lifecycle events.
func (m *Module) Events() *activity.Emitter {
	return m.events
}

// Logger returns a named logger from the module's provider.
func (m *Module) Logger(name string) interfaces.Logger {
	return logging.ModuleLogger(m.loggers, name)
}

// PublishChartHandler returns a command handler executing chart publishes.
func (m *Module) PublishChartHandler() *chartscmd.PublishChartHandler {
	return chartscmd.NewPublishChartHandler(m.publish, commands.CommandLogger(m.loggers, "charts"))
}

// UnpublishChartHandler returns a command handler retiring published charts.
func (m *Module) UnpublishChartHandler() *chartscmd.UnpublishChartHandler {
	return chartscmd.NewUnpublishChartHandler(m.publish, commands.CommandLogger(m.loggers, "charts"))
}

// buildLoggerProvider maps the logging configuration onto a provider. The
// override wins when supplied; the noop provider drops everything.
func buildLoggerProvider(cfg LoggingConfig, override interfaces.LoggerProvider) (interfaces.LoggerProvider, error) {
	if override != nil {
		return override, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "noop":
		return nil, nil
	case "console":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    "console",
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, ErrLoggingProviderUnknown
	}
}

// ensureDefaultTheme registers a bare default theme so freshly wired modules
// can build charts before the host loads real themes.
func ensureDefaultTheme(svc themes.Service, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	_, err := svc.RegisterTheme(context.Background(), themes.RegisterThemeInput{
		Name: name,
		Data: map[string]any{},
	})
	if err != nil && !errors.Is(err, themes.ErrThemeExists) {
		return err
	}
	return nil
}
