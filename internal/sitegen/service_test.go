package sitegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chartpub/chartpub/charts"
	"github.com/chartpub/chartpub/internal/assets"
	"github.com/chartpub/chartpub/internal/themes"
	"github.com/chartpub/chartpub/internal/vis"
	"github.com/chartpub/chartpub/pkg/interfaces"
)

type stubProvider struct {
	payload *interfaces.PublishData
	err     error
}

func (p *stubProvider) PublishData(_ context.Context, _ string, _ bool) (*interfaces.PublishData, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.payload, nil
}

func newTestThemes(t *testing.T) themes.Service {
	t.Helper()
	svc := themes.NewService(themes.NewMemoryThemeRepository())
	_, err := svc.RegisterTheme(context.Background(), themes.RegisterThemeInput{
		Name: "default",
		Data: map[string]any{},
	})
	if err != nil {
		t.Fatalf("register theme: %v", err)
	}
	return svc
}

func newTestRegistry(t *testing.T, assetRoot string) *vis.Registry {
	t.Helper()
	mustWrite(t, filepath.Join(assetRoot, "d3-lines.js"), "vis script")
	mustWrite(t, filepath.Join(assetRoot, "core.js"), "core runtime")
	mustWrite(t, filepath.Join(assetRoot, "polyfill.js"), "polyfill")
	mustWrite(t, filepath.Join(assetRoot, "d3.js"), "library")
	mustWrite(t, filepath.Join(assetRoot, "d3.en.js"), "library locale")

	registry := vis.NewRegistry()
	err := registry.Register(vis.Visualization{
		ID:         "d3-lines",
		Title:      "Lines",
		ScriptPath: "d3-lines.js",
		Libraries: []vis.Library{
			{
				Name:    "d3",
				URI:     "d3.js",
				Locales: map[string]string{"en": "d3.en.js"},
			},
		},
	})
	if err != nil {
		t.Fatalf("register visualization: %v", err)
	}
	return registry
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testChart() *charts.Chart {
	return &charts.Chart{
		ID:       "abcd1",
		Title:    "Test Chart",
		Type:     "d3-lines",
		Theme:    "default",
		Language: "en-US",
		Metadata: charts.Metadata{
			Annotate: map[string]any{"notes": "Source: *census*"},
		},
	}
}

func newTestService(t *testing.T, provider interfaces.PublishDataProvider, opts ...ServiceOption) *Service {
	t.Helper()
	assetRoot := t.TempDir()
	registry := newTestRegistry(t, assetRoot)
	base := []ServiceOption{
		WithAssetRoot(assetRoot),
		WithPolyfills("polyfill.js"),
		WithCoreScripts("core.js"),
	}
	return NewService(provider, newTestThemes(t), registry, append(base, opts...)...)
}

func TestBuildAssemblesSite(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{
		Data:         "x,y\n1,2\n",
		Chart:        map[string]any{"id": "abcd1"},
		Translations: map[string]string{"tooltip": "Tooltip"},
	}}
	svc := newTestService(t, provider)

	build, err := svc.Build(context.Background(), testChart(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	if build.Data != "x,y\n1,2\n" {
		t.Fatalf("unexpected dataset %q", build.Data)
	}

	page, err := os.ReadFile(filepath.Join(build.OutDir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	html := string(page)

	if !strings.Contains(html, `<meta name="robots" content="noindex, nofollow">`) {
		t.Fatalf("missing robots exclusion in %s", html)
	}
	if !strings.Contains(html, "<em>census</em>") {
		t.Fatalf("notes not rendered as markdown in %s", html)
	}

	// Scripts load in staged order: polyfill, core, locale, library, vis.
	order := []string{
		assets.HashedName("polyfill.js", []byte("polyfill")),
		assets.HashedName("core.js", []byte("core runtime")),
		assets.HashedName("d3.en.js", []byte("library locale")),
		assets.HashedName("d3.js", []byte("library")),
		assets.HashedName("d3-lines.js", []byte("vis script")),
	}
	last := -1
	for _, name := range order {
		idx := strings.Index(html, `<script src="`+name+`"`)
		if idx < 0 {
			t.Fatalf("missing script %s in %s", name, html)
		}
		if idx <= last {
			t.Fatalf("script %s out of order in %s", name, html)
		}
		last = idx
	}

	for _, name := range build.FileMap {
		if _, err := os.Stat(filepath.Join(build.OutDir, name)); err != nil {
			t.Fatalf("file map entry %s missing on disk: %v", name, err)
		}
	}
}

func TestBuildHashesStagedAssets(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}
	svc := newTestService(t, provider)

	build, err := svc.Build(context.Background(), testChart(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	found := false
	for _, name := range build.FileMap {
		if strings.HasPrefix(name, "d3-lines.") && strings.HasSuffix(name, ".js") {
			if len(strings.Split(name, ".")) != 3 {
				t.Fatalf("expected hashed name, got %s", name)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("visualization script missing from file map %v", build.FileMap)
	}
}

func TestBuildRejectsEmptyDataset(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "   "}}
	svc := newTestService(t, provider)

	_, err := svc.Build(context.Background(), testChart(), BuildOptions{})
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestBuildRejectsUnsupportedType(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}
	svc := newTestService(t, provider)

	chart := testChart()
	chart.Type = "hologram"
	_, err := svc.Build(context.Background(), chart, BuildOptions{})
	if !errors.Is(err, vis.ErrVisualizationNotSupported) {
		t.Fatalf("expected ErrVisualizationNotSupported, got %v", err)
	}
}

func TestBuildInjectsHookFragments(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}

	hooks := &interfaces.HTMLHookRegistry{}
	hooks.OnHeadHTML(func(context.Context, string) (string, error) {
		return `<meta name="generator" content="chartpub">`, nil
	})
	hooks.OnHeadHTML(func(context.Context, string) (string, error) {
		return "", errors.New("broken hook")
	})
	hooks.OnBodyHTML(func(context.Context, string) (string, error) {
		return `<div id="consent"></div>`, nil
	})

	svc := newTestService(t, provider, WithHooks(hooks))
	build, err := svc.Build(context.Background(), testChart(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	page, err := os.ReadFile(filepath.Join(build.OutDir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	html := string(page)
	if !strings.Contains(html, `content="chartpub"`) {
		t.Fatalf("head hook fragment missing in %s", html)
	}
	if !strings.Contains(html, `<div id="consent"></div>`) {
		t.Fatalf("body hook fragment missing in %s", html)
	}
}

func TestBuildStagesBlockAssets(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}

	blockDir := t.TempDir()
	source := filepath.Join(blockDir, "panel.js")
	mustWrite(t, source, "panel widget")

	svc := newTestService(t, provider, WithBlockProvider(blockProviderFunc(func(context.Context, string) ([]interfaces.BlockAsset, error) {
		return []interfaces.BlockAsset{{Source: source, Prefix: "block"}}, nil
	})))

	build, err := svc.Build(context.Background(), testChart(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	found := false
	for _, name := range build.FileMap {
		if strings.HasPrefix(name, "block.panel.") {
			found = true
		}
	}
	if !found {
		t.Fatalf("block asset missing from file map %v", build.FileMap)
	}
}

func TestBuildOmitsPolyfillsOnRequest(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}
	svc := newTestService(t, provider)

	build, err := svc.Build(context.Background(), testChart(), BuildOptions{OmitPolyfills: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	for _, name := range build.FileMap {
		if strings.HasPrefix(name, "polyfill.") {
			t.Fatalf("polyfill staged despite OmitPolyfills: %v", build.FileMap)
		}
	}
}

func TestBuildFlatAssetsDropBlockPrefix(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}

	blockDir := t.TempDir()
	source := filepath.Join(blockDir, "panel.js")
	mustWrite(t, source, "panel widget")

	svc := newTestService(t, provider, WithBlockProvider(blockProviderFunc(func(context.Context, string) ([]interfaces.BlockAsset, error) {
		return []interfaces.BlockAsset{{Source: source, Prefix: "block"}}, nil
	})))

	build, err := svc.Build(context.Background(), testChart(), BuildOptions{FlatAssets: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	for _, name := range build.FileMap {
		if strings.HasPrefix(name, "block.") {
			t.Fatalf("prefix kept despite FlatAssets: %v", build.FileMap)
		}
	}
	found := false
	for _, name := range build.FileMap {
		if strings.HasPrefix(name, "panel.") && strings.HasSuffix(name, ".js") {
			found = true
		}
	}
	if !found {
		t.Fatalf("flat block asset missing from file map %v", build.FileMap)
	}
}

func TestBuildReportsSteps(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}
	svc := newTestService(t, provider)

	steps := []string{}
	build, err := svc.Build(context.Background(), testChart(), BuildOptions{
		Log: func(step string) { steps = append(steps, step) },
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	want := []string{"data", "theme", "assets", "html"}
	if len(steps) != len(want) {
		t.Fatalf("expected steps %v, got %v", want, steps)
	}
	for i, step := range want {
		if steps[i] != step {
			t.Fatalf("expected steps %v, got %v", want, steps)
		}
	}
}

func TestBuildAttachesActorToContext(t *testing.T) {
	var seen interfaces.Actor
	provider := &actorCapturingProvider{payload: &interfaces.PublishData{Data: "a,b\n"}, seen: &seen}
	svc := newTestService(t, provider)

	actor := interfaces.Actor{IsAdmin: true}
	build, err := svc.Build(context.Background(), testChart(), BuildOptions{Actor: actor})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	if !seen.IsAdmin {
		t.Fatalf("expected actor on provider context, got %+v", seen)
	}
}

type actorCapturingProvider struct {
	payload *interfaces.PublishData
	seen    *interfaces.Actor
}

func (p *actorCapturingProvider) PublishData(ctx context.Context, _ string, _ bool) (*interfaces.PublishData, error) {
	if actor, ok := interfaces.ActorFromContext(ctx); ok {
		*p.seen = actor
	}
	return p.payload, nil
}

func TestBuildPageLanguageAndClasses(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}
	svc := newTestService(t, provider)

	build, err := svc.Build(context.Background(), testChart(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer build.Cleanup()

	page, err := os.ReadFile(filepath.Join(build.OutDir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	html := string(page)

	if !strings.Contains(html, `<html lang="en">`) {
		t.Fatalf("expected two-letter lang attribute in %s", html)
	}
	if !strings.Contains(html, "theme-default") {
		t.Fatalf("theme class missing from body in %s", html)
	}
	if !strings.Contains(html, "vis-d3-lines") {
		t.Fatalf("visualization class missing from body in %s", html)
	}
	if !strings.Contains(html, "vis-height-fit") {
		t.Fatalf("height mode class missing from body in %s", html)
	}
}

func TestBuildCleanupRemovesOutDir(t *testing.T) {
	provider := &stubProvider{payload: &interfaces.PublishData{Data: "a,b\n"}}
	svc := newTestService(t, provider)

	build, err := svc.Build(context.Background(), testChart(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := build.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(build.OutDir); !os.IsNotExist(err) {
		t.Fatalf("expected output dir removed, stat err %v", err)
	}
}

type blockProviderFunc func(ctx context.Context, chartID string) ([]interfaces.BlockAsset, error)

func (f blockProviderFunc) Blocks(ctx context.Context, chartID string) ([]interfaces.BlockAsset, error) {
	return f(ctx, chartID)
}
