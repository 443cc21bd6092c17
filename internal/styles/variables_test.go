package styles

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindVariablesMatchesEveryReferenceForm(t *testing.T) {
	source := `
.chart {
	color: @foo;
	background: @{bar};
	content: ~'label @{baz} suffix';
}
@media (max-width: 500px) { .chart { display: none; } }
`
	found, err := FindVariables([]string{source}, nil)
	if err != nil {
		t.Fatalf("find variables: %v", err)
	}

	for _, name := range []string{"foo", "bar", "baz"} {
		if _, ok := found[name]; !ok {
			t.Fatalf("expected variable %s in %v", name, found)
		}
	}
	if _, ok := found["media"]; ok {
		t.Fatalf("at-rule keyword leaked into variable set: %v", found)
	}
}

func TestFindVariablesFollowsImportsTransitively(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "shared.less"), []byte(`
@import 'deep.less';
.shared { color: @shared_color; }
`), 0o644); err != nil {
		t.Fatalf("write shared: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "deep.less"), []byte(`
@import 'shared.less';
.deep { fill: @deep_fill; }
`), 0o644); err != nil {
		t.Fatalf("write deep: %v", err)
	}

	source := `@import 'shared'; .root { border-color: @root_border; }`
	found, err := FindVariables([]string{source}, []string{dir})
	if err != nil {
		t.Fatalf("find variables: %v", err)
	}

	for _, name := range []string{"root_border", "shared_color", "deep_fill"} {
		if _, ok := found[name]; !ok {
			t.Fatalf("expected variable %s in %v", name, found)
		}
	}
}

func TestFindVariablesIgnoresRemoteImports(t *testing.T) {
	source := `@import 'https://fonts.example.com/roboto.css'; .a { color: @a; }`
	found, err := FindVariables([]string{source}, nil)
	if err != nil {
		t.Fatalf("find variables: %v", err)
	}
	if _, ok := found["a"]; !ok {
		t.Fatalf("expected variable a in %v", found)
	}
	if len(found) != 1 {
		t.Fatalf("expected a single variable, got %v", found)
	}
}
