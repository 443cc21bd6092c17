package chartpub_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chartpub/chartpub"
	"github.com/chartpub/chartpub/internal/charts"
	"github.com/chartpub/chartpub/internal/publish"
	"github.com/chartpub/chartpub/pkg/testsupport"
)

func TestModuleBunBackedPublishLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := chartpub.CreateSchema(ctx, db); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	assetRoot := t.TempDir()
	for name, content := range map[string]string{
		"core.js":     "window.chartpub = {};",
		"d3-lines.js": "window.chartpub.lines = true;",
	} {
		if err := os.WriteFile(filepath.Join(assetRoot, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write asset %s: %v", name, err)
		}
	}

	publishRoot := t.TempDir()
	cfg := chartpub.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Publishing.BaseURL = "https://charts.example.com"
	cfg.Publishing.Root = publishRoot
	cfg.Assets.Root = assetRoot
	cfg.Assets.CoreScripts = []string{"core.js"}
	cfg.Logging.Provider = "noop"

	module, err := chartpub.New(cfg,
		chartpub.WithDatabase(db),
		chartpub.WithPublishDataProvider(&staticDataProvider{data: "x,y\n1,2\n"}),
		chartpub.WithVisualizations(chartpub.Visualization{
			ID:         "d3-lines",
			Title:      "Line chart",
			ScriptPath: "d3-lines.js",
			Height:     400,
		}),
	)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	chart, err := module.Charts().CreateChart(ctx, charts.CreateChartInput{
		Title: "Regional totals",
		Type:  "d3-lines",
	})
	if err != nil {
		t.Fatalf("create chart: %v", err)
	}

	result, err := module.Publish().Publish(ctx, chartpub.PublishRequest{ChartID: chart.ID})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.Version != 1 {
		t.Fatalf("expected version 1, got %d", result.Version)
	}
	if _, err := os.Stat(filepath.Join(publishRoot, chart.ID, "1", "index.html")); err != nil {
		t.Fatalf("published index missing: %v", err)
	}

	// Progress and snapshot rows must survive a fresh service wired to the
	// same database.
	entries, err := module.Publish().Status(ctx, chart.ID, 1)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(entries) == 0 || entries[len(entries)-1].Tag != publish.TagDone {
		t.Fatalf("expected done progress entry, got %+v", entries)
	}

	reloaded, err := module.Charts().GetChart(ctx, chart.ID)
	if err != nil {
		t.Fatalf("reload chart: %v", err)
	}
	if reloaded.PublicVersion != 1 {
		t.Fatalf("expected persisted public version 1, got %d", reloaded.PublicVersion)
	}

	// Republish bumps the version through the same rows.
	second, err := module.Publish().Publish(ctx, chartpub.PublishRequest{ChartID: chart.ID})
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("expected version 2, got %d", second.Version)
	}

	if err := module.Publish().Unpublish(ctx, chartpub.UnpublishRequest{ChartID: chart.ID}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	reloaded, err = module.Charts().GetChart(ctx, chart.ID)
	if err != nil {
		t.Fatalf("reload chart after unpublish: %v", err)
	}
	if reloaded.IsPublished() {
		t.Fatalf("chart should be unpublished, got version %d", reloaded.PublicVersion)
	}
}
