package themes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

const (
	themeDataFile  = "theme.json"
	themeFontsFile = "fonts.json"
	themeLessFile  = "theme.less"
)

// BootstrapDir registers every theme found under root. Each theme directory
// carries a go-theme manifest plus the chartpub style inputs: theme.json
// (data document), fonts.json (font declarations), and theme.less. Missing
// style inputs are tolerated; a missing or invalid manifest skips the
// directory with an error in the returned slice.
//
// Already-registered theme names are left untouched, so bootstrap is safe to
// run on every start.
func BootstrapDir(ctx context.Context, svc Service, root string) (int, []error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, []error{fmt.Errorf("themes: read bootstrap dir %s: %w", root, err)}
	}

	registry := gotheme.NewRegistry()
	registered := 0
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		manifest, err := gotheme.LoadDir(os.DirFS(dir), ".")
		if err != nil {
			errs = append(errs, fmt.Errorf("themes: load manifest %s: %w", dir, err))
			continue
		}
		if strings.TrimSpace(manifest.Name) == "" {
			manifest.Name = entry.Name()
		}
		if err := registry.Register(manifest); err != nil {
			errs = append(errs, fmt.Errorf("themes: register manifest %s: %w", manifest.Name, err))
			continue
		}

		input, err := readThemeInputs(os.DirFS(dir), manifest.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := svc.RegisterTheme(ctx, input); err != nil {
			if errors.Is(err, ErrThemeExists) {
				continue
			}
			errs = append(errs, fmt.Errorf("themes: register %s: %w", manifest.Name, err))
			continue
		}
		registered++
	}
	return registered, errs
}

func readThemeInputs(dir fs.FS, name string) (RegisterThemeInput, error) {
	input := RegisterThemeInput{Name: name}

	if raw, err := fs.ReadFile(dir, themeDataFile); err == nil {
		var doc struct {
			Title   string         `json:"title"`
			Extends *string        `json:"extends"`
			Data    map[string]any `json:"data"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return input, fmt.Errorf("themes: parse %s for %s: %w", themeDataFile, name, err)
		}
		input.Title = doc.Title
		input.Extends = doc.Extends
		input.Data = doc.Data
	}

	if raw, err := fs.ReadFile(dir, themeFontsFile); err == nil {
		fonts := map[string]FontAsset{}
		if err := json.Unmarshal(raw, &fonts); err != nil {
			return input, fmt.Errorf("themes: parse %s for %s: %w", themeFontsFile, name, err)
		}
		input.Fonts = fonts
	}

	if raw, err := fs.ReadFile(dir, themeLessFile); err == nil {
		input.LESS = string(raw)
	}

	return input, nil
}
