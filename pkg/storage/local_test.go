package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chartpub/chartpub/pkg/interfaces"
)

func TestLocalStorageMoveAndRetire(t *testing.T) {
	root := t.TempDir()
	outDir := t.TempDir()

	for _, name := range []string{"index.html", "core.11111111.js"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	store, err := NewLocalStorage(root, "https://charts.example.com/")
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	url, err := store.Move(context.Background(), interfaces.MoveRequest{
		ChartID: "abcd1",
		Version: 2,
		OutDir:  outDir,
		FileMap: []string{"index.html", "core.11111111.js"},
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if url != "https://charts.example.com/abcd1/2/" {
		t.Fatalf("unexpected url %s", url)
	}

	for _, name := range []string{"index.html", "core.11111111.js"} {
		content, err := os.ReadFile(filepath.Join(root, "abcd1", "2", name))
		if err != nil {
			t.Fatalf("read published %s: %v", name, err)
		}
		if string(content) != name {
			t.Fatalf("unexpected content %q", content)
		}
		if _, err := os.Stat(filepath.Join(outDir, name)); !os.IsNotExist(err) {
			t.Fatalf("source %s should be moved away", name)
		}
	}

	if err := store.Retire(context.Background(), "abcd1", 2); err != nil {
		t.Fatalf("retire: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "abcd1", "2")); !os.IsNotExist(err) {
		t.Fatalf("version dir should be removed")
	}
}

func TestLocalStorageMissingFileFails(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "https://charts.example.com")
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	_, err = store.Move(context.Background(), interfaces.MoveRequest{
		ChartID: "abcd1",
		Version: 1,
		OutDir:  t.TempDir(),
		FileMap: []string{"missing.js"},
	})
	if err == nil {
		t.Fatalf("expected error for missing build file")
	}
}

func TestLocalStorageRequiresRoot(t *testing.T) {
	if _, err := NewLocalStorage("  ", ""); err == nil {
		t.Fatalf("expected root validation error")
	}
}
