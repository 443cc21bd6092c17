package sitegen

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chartpub/chartpub/charts"
	"github.com/chartpub/chartpub/internal/assets"
	"github.com/chartpub/chartpub/internal/logging"
	"github.com/chartpub/chartpub/internal/styles"
	"github.com/chartpub/chartpub/internal/themes"
	"github.com/chartpub/chartpub/internal/vis"
	"github.com/chartpub/chartpub/pkg/interfaces"
)

var (
	ErrProviderRequired = errors.New("sitegen: publish data provider required")
	ErrThemesRequired   = errors.New("sitegen: theme service required")
	ErrRegistryRequired = errors.New("sitegen: visualization registry required")
	ErrChartRequired    = errors.New("sitegen: chart required")

	// ErrEmptyDataset marks a chart whose publish data carries no dataset.
	ErrEmptyDataset = errors.New("sitegen: chart has no data")
)

// Build is the assembled chart website: a self-contained directory plus
// the dataset the orchestrator persists alongside it.
type Build struct {
	// Data is the chart dataset, stored by the caller as the public CSV.
	Data string
	// OutDir is the temporary directory holding the generated site.
	OutDir string
	// FileMap lists every file written under OutDir, relative names.
	FileMap []string
	// Cleanup removes OutDir. Safe to call more than once.
	Cleanup func() error
}

// BuildOptions control a single build.
type BuildOptions struct {
	// Published selects the published payload instead of the draft one.
	Published bool
	// Actor is attached to the build context so data providers can scope
	// their responses to the caller. The zero Actor is not attached.
	Actor interfaces.Actor
	// OmitPolyfills skips the configured polyfill scripts, trimming preview
	// and export builds that target modern browsers only.
	OmitPolyfills bool
	// FlatAssets drops block asset prefixes so every file lands directly in
	// the output directory root.
	FlatAssets bool
	// Log, when set, receives a step name as each build stage completes.
	Log func(step string)
}

func (o BuildOptions) step(name string) {
	if o.Log != nil {
		o.Log(name)
	}
}

// Service assembles static chart websites. A single instance is shared by
// concurrent publishes; all per-build state lives on the stack.
type Service struct {
	provider  interfaces.PublishDataProvider
	themes    themes.Service
	registry  *vis.Registry
	compiler  *styles.Compiler
	hooks     *interfaces.HTMLHookRegistry
	blocks    []interfaces.BlockProvider
	assetRoot string
	polyfills []string
	core      []string
	logger    interfaces.Logger
}

// ServiceOption configures the assembler.
type ServiceOption func(*Service)

// WithAssetRoot sets the directory holding core scripts, vendor bundles
// and visualization assets.
func WithAssetRoot(dir string) ServiceOption {
	return func(s *Service) {
		s.assetRoot = dir
	}
}

// WithPolyfills sets the polyfill scripts staged before everything else,
// paths relative to the asset root.
func WithPolyfills(paths ...string) ServiceOption {
	return func(s *Service) {
		s.polyfills = append([]string{}, paths...)
	}
}

// WithCoreScripts sets the runtime scripts staged after polyfills, paths
// relative to the asset root.
func WithCoreScripts(paths ...string) ServiceOption {
	return func(s *Service) {
		s.core = append([]string{}, paths...)
	}
}

// WithCompiler overrides the stylesheet compiler.
func WithCompiler(compiler *styles.Compiler) ServiceOption {
	return func(s *Service) {
		if compiler != nil {
			s.compiler = compiler
		}
	}
}

// WithHooks attaches the HTML hook registry consulted for head and body
// fragments.
func WithHooks(hooks *interfaces.HTMLHookRegistry) ServiceOption {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithBlockProvider registers a provider of embedded block assets.
func WithBlockProvider(provider interfaces.BlockProvider) ServiceOption {
	return func(s *Service) {
		if provider != nil {
			s.blocks = append(s.blocks, provider)
		}
	}
}

// WithLogger overrides the assembler logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a site assembler.
func NewService(provider interfaces.PublishDataProvider, themeSvc themes.Service, registry *vis.Registry, opts ...ServiceOption) *Service {
	if provider == nil {
		panic(ErrProviderRequired)
	}
	if themeSvc == nil {
		panic(ErrThemesRequired)
	}
	if registry == nil {
		panic(ErrRegistryRequired)
	}

	s := &Service{
		provider: provider,
		themes:   themeSvc,
		registry: registry,
		compiler: styles.NewCompiler(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build assembles the chart website into a fresh temporary directory.
//
// The stylesheet compilation and script staging run concurrently; both
// must succeed before the page is rendered. On any failure the partially
// written directory is removed and the caller gets only the error.
func (s *Service) Build(ctx context.Context, chart *charts.Chart, opts BuildOptions) (*Build, error) {
	if chart == nil {
		return nil, ErrChartRequired
	}
	if opts.Actor != (interfaces.Actor{}) {
		ctx = interfaces.WithActor(ctx, opts.Actor)
	}

	visualization, err := s.registry.Get(chart.Type)
	if err != nil {
		return nil, fmt.Errorf("sitegen: chart %s type %s: %w", chart.ID, chart.Type, err)
	}

	payload, err := s.provider.PublishData(ctx, chart.ID, opts.Published)
	if err != nil {
		return nil, fmt.Errorf("sitegen: publish data for %s: %w", chart.ID, err)
	}
	if strings.TrimSpace(payload.Data) == "" {
		return nil, fmt.Errorf("sitegen: chart %s: %w", chart.ID, ErrEmptyDataset)
	}
	opts.step("data")

	theme, err := s.themes.Resolve(ctx, chart.Theme)
	if err != nil {
		return nil, fmt.Errorf("sitegen: resolve theme %s: %w", chart.Theme, err)
	}
	opts.step("theme")

	outDir, err := os.MkdirTemp("", "chart-"+chart.ID+"-*")
	if err != nil {
		return nil, fmt.Errorf("sitegen: create output dir: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(outDir) }

	var (
		wg      sync.WaitGroup
		css     string
		cssErr  error
		scripts []string
		stgErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		css, cssErr = s.compileStyles(ctx, theme, visualization, payload.BlockStyles)
	}()
	go func() {
		defer wg.Done()
		scripts, stgErr = s.stageScripts(outDir, visualization, chart.Language, opts.OmitPolyfills)
	}()
	wg.Wait()

	if cssErr != nil {
		cleanup()
		return nil, cssErr
	}
	if stgErr != nil {
		cleanup()
		return nil, stgErr
	}
	opts.step("assets")

	files := append([]string{}, scripts...)

	dataName := assets.HashedName(chart.ID+".csv", []byte(payload.Data))
	if err := os.WriteFile(filepath.Join(outDir, dataName), []byte(payload.Data), 0o644); err != nil {
		cleanup()
		return nil, fmt.Errorf("sitegen: write dataset: %w", err)
	}
	files = append(files, dataName)

	loaderName, err := writeEmbedLoader(outDir)
	if err != nil {
		cleanup()
		return nil, err
	}
	files = append(files, loaderName)

	blockFiles, err := s.stageBlocks(ctx, chart.ID, outDir, opts.FlatAssets)
	if err != nil {
		cleanup()
		return nil, err
	}
	files = append(files, blockFiles...)

	page, err := s.renderIndex(ctx, chart, visualization, theme, payload, css, dataName, scripts)
	if err != nil {
		cleanup()
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "index.html"), page, 0o644); err != nil {
		cleanup()
		return nil, fmt.Errorf("sitegen: write index.html: %w", err)
	}
	files = append(files, "index.html")
	opts.step("html")

	s.logger.Info("assembled chart website",
		"chart_id", chart.ID,
		"type", chart.Type,
		"theme", theme.Name,
		"files", len(files),
	)
	return &Build{
		Data:    payload.Data,
		OutDir:  outDir,
		FileMap: files,
		Cleanup: cleanup,
	}, nil
}

func (s *Service) compileStyles(ctx context.Context, theme *themes.Theme, visualization vis.Visualization, blockStyles []string) (string, error) {
	files := []string{}
	if visualization.Less != "" {
		files = append(files, filepath.Join(s.assetRoot, visualization.Less))
	}
	css, err := s.compiler.Compile(ctx, theme, files...)
	if err != nil {
		return "", err
	}
	if len(blockStyles) > 0 {
		css = css + "\n" + strings.Join(blockStyles, "\n")
	}
	return css, nil
}

// stageScripts copies every script the page needs into the output
// directory under content-addressed names. Order matters and is preserved
// in the returned slice: polyfills, core runtime, vendor locale bundles,
// visualization libraries, then the visualization script itself.
func (s *Service) stageScripts(outDir string, visualization vis.Visualization, language string, omitPolyfills bool) ([]string, error) {
	sources := []string{}
	if !omitPolyfills {
		sources = append(sources, s.polyfills...)
	}
	sources = append(sources, s.core...)
	for _, library := range visualization.Libraries {
		if bundle, ok := localeBundle(library.Locales, language); ok {
			sources = append(sources, bundle)
		}
	}
	for _, library := range visualization.Libraries {
		if library.URI != "" {
			sources = append(sources, library.URI)
		}
	}
	sources = append(sources, visualization.Dependencies...)
	if visualization.ScriptPath != "" {
		sources = append(sources, visualization.ScriptPath)
	}

	staged := make([]string, 0, len(sources))
	for _, rel := range sources {
		name, err := assets.CopyFileHashed(filepath.Join(s.assetRoot, rel), outDir)
		if err != nil {
			return nil, fmt.Errorf("sitegen: stage %s: %w", rel, err)
		}
		staged = append(staged, name)
	}
	return staged, nil
}

// localeBundle picks the bundle for a language, falling back from the
// full tag to its base language (en-US to en).
func localeBundle(locales map[string]string, language string) (string, bool) {
	if len(locales) == 0 {
		return "", false
	}
	if bundle, ok := locales[language]; ok {
		return bundle, true
	}
	if base, _, found := strings.Cut(language, "-"); found {
		if bundle, ok := locales[base]; ok {
			return bundle, true
		}
	}
	return "", false
}

func (s *Service) stageBlocks(ctx context.Context, chartID, outDir string, flat bool) ([]string, error) {
	files := []string{}
	for _, provider := range s.blocks {
		blocks, err := provider.Blocks(ctx, chartID)
		if err != nil {
			return nil, fmt.Errorf("sitegen: block assets for %s: %w", chartID, err)
		}
		for _, block := range blocks {
			opts := []assets.Option{}
			if block.Prefix != "" && !flat {
				opts = append(opts, assets.WithPrefix(block.Prefix))
			}
			name, err := assets.CopyFileHashed(block.Source, outDir, opts...)
			if err != nil {
				return nil, fmt.Errorf("sitegen: stage block asset %s: %w", block.Source, err)
			}
			files = append(files, name)
		}
	}
	return files, nil
}

func (s *Service) renderIndex(ctx context.Context, chart *charts.Chart, visualization vis.Visualization, theme *themes.Theme, payload *interfaces.PublishData, css, dataName string, scripts []string) ([]byte, error) {
	props := map[string]any{
		"chart":        payload.Chart,
		"data":         payload.Data,
		"dataFile":     dataName,
		"translations": payload.Translations,
		"visualization": map[string]any{
			"id":     visualization.ID,
			"height": visualization.Height,
		},
		"theme": map[string]any{
			"id":   theme.Name,
			"data": theme.Data,
		},
	}
	if blocks, ok := chart.Metadata.PublishValue("blocks"); ok {
		props["blocks"] = blocks
	}
	encoded, err := encodeProps(props)
	if err != nil {
		return nil, err
	}

	notes := ""
	if raw, ok := chart.Metadata.Annotate["notes"].(string); ok {
		notes = raw
	}
	notesHTML, err := renderNotes(notes)
	if err != nil {
		return nil, err
	}

	autoDark := false
	if raw, ok := chart.Metadata.PublishValue("autoDarkMode"); ok {
		autoDark, _ = raw.(bool)
	}

	head := make([]template.HTML, 0)
	body := make([]template.HTML, 0)
	if s.hooks != nil {
		for _, fragment := range s.hooks.HeadHTML(ctx, chart.ID) {
			head = append(head, template.HTML(fragment))
		}
		for _, fragment := range s.hooks.BodyHTML(ctx, chart.ID) {
			body = append(body, template.HTML(fragment))
		}
	}

	ariaLabel := visualization.AriaLabel
	if ariaLabel == "" {
		ariaLabel = visualization.Title
	}

	return renderPage(pageData{
		Title:     chart.Title,
		Language:  baseLanguage(chart.Language),
		AriaLabel: ariaLabel,
		ClassList: pageClassList(theme.Name, visualization.ID, visualization.Height > 0, autoDark),
		InlineCSS: template.CSS(css),
		Props:     encoded,
		Scripts:   scripts,
		HeadHTML:  head,
		BodyHTML:  body,
		NotesHTML: notesHTML,
	})
}
