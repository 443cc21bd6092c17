package themes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestService(t *testing.T) (Service, *MemoryThemeRepository) {
	t.Helper()
	repo := NewMemoryThemeRepository()
	return NewService(repo), repo
}

func strPtr(value string) *string {
	return &value
}

func TestRegisterThemeNormalizesName(t *testing.T) {
	svc, _ := newTestService(t)

	theme, err := svc.RegisterTheme(context.Background(), RegisterThemeInput{
		Name:  "Corporate Blue",
		Title: "Corporate",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if theme.Name != "corporate-blue" {
		t.Fatalf("expected normalized slug, got %s", theme.Name)
	}
	if theme.Title != "Corporate" {
		t.Fatalf("unexpected title %s", theme.Title)
	}
}

func TestRegisterThemeDefaultsTitleToName(t *testing.T) {
	svc, _ := newTestService(t)

	theme, err := svc.RegisterTheme(context.Background(), RegisterThemeInput{Name: "default"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if theme.Title != "default" {
		t.Fatalf("expected title fallback, got %s", theme.Title)
	}
}

func TestRegisterThemeValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RegisterTheme(ctx, RegisterThemeInput{}); !errors.Is(err, ErrThemeNameRequired) {
		t.Fatalf("expected name required, got %v", err)
	}

	if _, err := svc.RegisterTheme(ctx, RegisterThemeInput{Name: "base"}); err != nil {
		t.Fatalf("register base: %v", err)
	}
	if _, err := svc.RegisterTheme(ctx, RegisterThemeInput{Name: "base"}); !errors.Is(err, ErrThemeExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	_, err := svc.RegisterTheme(ctx, RegisterThemeInput{Name: "child", Extends: strPtr("missing")})
	if !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected missing parent error, got %v", err)
	}
}

func TestGetThemeClonesRecords(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RegisterTheme(ctx, RegisterThemeInput{
		Name: "base",
		Data: map[string]any{"colors": map[string]any{"background": "#ffffff"}},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := svc.GetThemeByName(ctx, "base")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.Data["colors"].(map[string]any)["background"] = "#000000"

	second, err := svc.GetThemeByName(ctx, "base")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if second.Data["colors"].(map[string]any)["background"] != "#ffffff" {
		t.Fatalf("stored theme mutated through returned copy")
	}
}

func TestResolveMergesParentChain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RegisterTheme(ctx, RegisterThemeInput{
		Name: "base",
		LESS: "body { color: @color; }",
		Fonts: map[string]FontAsset{
			"Roboto": {Method: FontMethodURL, URL: "https://fonts.example.com/roboto.woff"},
			"Mono":   {Method: FontMethodURL, URL: "https://fonts.example.com/mono.woff"},
		},
		Data: map[string]any{
			"colors":  map[string]any{"background": "#ffffff", "chart": "#333333"},
			"options": map[string]any{"padding": 4},
		},
	}); err != nil {
		t.Fatalf("register base: %v", err)
	}

	if _, err := svc.RegisterTheme(ctx, RegisterThemeInput{
		Name:    "night",
		Extends: strPtr("base"),
		LESS:    "body { background: #000; }",
		Fonts: map[string]FontAsset{
			"Roboto": {Method: FontMethodURL, URL: "https://fonts.example.com/roboto-dark.woff"},
		},
		Data: map[string]any{
			"colors": map[string]any{"background": "#111111"},
		},
	}); err != nil {
		t.Fatalf("register night: %v", err)
	}

	resolved, err := svc.Resolve(ctx, "night")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	colors := resolved.Data["colors"].(map[string]any)
	if colors["background"] != "#111111" {
		t.Fatalf("child data should win, got %v", colors["background"])
	}
	if colors["chart"] != "#333333" {
		t.Fatalf("parent keys should survive, got %v", colors["chart"])
	}
	if resolved.Data["options"].(map[string]any)["padding"] != 4 {
		t.Fatalf("parent-only sections should survive")
	}

	if resolved.Fonts["Roboto"].URL != "https://fonts.example.com/roboto-dark.woff" {
		t.Fatalf("child font should replace parent entry")
	}
	if _, ok := resolved.Fonts["Mono"]; !ok {
		t.Fatalf("parent-only font should survive")
	}

	parentIdx := strings.Index(resolved.LESS, "@color")
	childIdx := strings.Index(resolved.LESS, "background: #000")
	if parentIdx < 0 || childIdx < 0 || childIdx < parentIdx {
		t.Fatalf("less should concatenate parent-first, got %q", resolved.LESS)
	}
	if resolved.Name != "night" {
		t.Fatalf("resolved identity should stay the child's, got %s", resolved.Name)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	repo := NewMemoryThemeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	// The service refuses unknown parents at registration, so a cycle can
	// only come from records written behind its back.
	a := &Theme{ID: uuid.New(), Name: "a", Title: "a", Extends: strPtr("b")}
	b := &Theme{ID: uuid.New(), Name: "b", Title: "b", Extends: strPtr("a")}
	if _, err := repo.Create(ctx, a); err != nil {
		t.Fatalf("seed a: %v", err)
	}
	if _, err := repo.Create(ctx, b); err != nil {
		t.Fatalf("seed b: %v", err)
	}

	if _, err := svc.Resolve(ctx, "a"); !errors.Is(err, ErrThemeCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestResolveUnknownTheme(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Resolve(context.Background(), "missing"); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
