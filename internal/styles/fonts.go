package styles

import (
	"fmt"
	"strings"

	"github.com/chartpub/chartpub/themes"
)

// FontFaces renders the CSS font block for a resolved theme: one @import
// per import-method font, followed by one @font-face per declared font and
// typography variant. Import statements come first so the final stylesheet
// stays valid CSS. Output order is deterministic.
//
// Typography variants reference declared fonts by name with their own
// weight and style; a variant that duplicates a directly declared face
// (same family, weight and style) is emitted only once.
func FontFaces(theme *themes.Theme) string {
	if theme == nil || len(theme.Fonts) == 0 {
		return ""
	}

	seen := map[string]struct{}{}
	imports := []string{}
	faces := []string{}

	for _, name := range sortedKeys(theme.Fonts) {
		asset := theme.Fonts[name]
		switch asset.Method {
		case themes.FontMethodImport:
			target := httpsURL(asset.Import)
			if target == "" {
				continue
			}
			imports = append(imports, fmt.Sprintf("@import url('%s');", target))
		default:
			face, key := fontFace(name, asset)
			if face == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			faces = append(faces, face)
		}
	}

	for _, face := range typographyFaces(theme, seen) {
		faces = append(faces, face)
	}

	blocks := append(imports, faces...)
	return strings.Join(blocks, "\n")
}

// typographyFaces synthesizes faces for the theme's typography font-family
// variants, deduplicated against the directly declared faces.
func typographyFaces(theme *themes.Theme, seen map[string]struct{}) []string {
	typography, ok := theme.Data["typography"].(map[string]any)
	if !ok {
		return nil
	}
	families, ok := typography["fontFamilies"].(map[string]any)
	if !ok {
		return nil
	}

	faces := []string{}
	for _, family := range sortedKeys(families) {
		variants, ok := families[family].([]any)
		if !ok {
			continue
		}
		for _, raw := range variants {
			variant, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := variant["name"].(string)
			base, declared := theme.Fonts[name]
			if !declared || base.Method == themes.FontMethodImport {
				continue
			}
			asset := base
			if weight, ok := variant["weight"].(string); ok {
				asset.Weight = weight
			}
			if style, ok := variant["style"].(string); ok {
				asset.Style = style
			}
			face, key := fontFace(family, asset)
			if face == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			faces = append(faces, face)
		}
	}
	return faces
}

func fontFace(family string, asset themes.FontAsset) (string, string) {
	sources := fontSources(family, asset)
	if len(sources) == 0 {
		return "", ""
	}

	var b strings.Builder
	b.WriteString("@font-face {\n")
	fmt.Fprintf(&b, "\tfont-family: '%s';\n", family)
	fmt.Fprintf(&b, "\tsrc: %s;\n", strings.Join(sources, ",\n\t\t"))
	if asset.Weight != "" {
		fmt.Fprintf(&b, "\tfont-weight: %s;\n", asset.Weight)
	}
	if asset.Style != "" {
		fmt.Fprintf(&b, "\tfont-style: %s;\n", asset.Style)
	}
	if asset.Display != "" {
		fmt.Fprintf(&b, "\tfont-display: %s;\n", asset.Display)
	}
	b.WriteString("}")

	key := family + "|" + asset.Weight + "|" + asset.Style
	return b.String(), key
}

// fontSources builds the src list for a face, preferring woff and falling
// back through truetype to svg.
func fontSources(family string, asset themes.FontAsset) []string {
	if asset.Method == themes.FontMethodURL {
		target := httpsURL(asset.URL)
		if target == "" {
			return nil
		}
		return []string{fmt.Sprintf("url('%s')", target)}
	}

	sources := []string{}
	if woff := httpsURL(asset.Files.Woff); woff != "" {
		sources = append(sources, fmt.Sprintf("url('%s') format('woff')", woff))
	}
	if ttf := httpsURL(asset.Files.TrueType); ttf != "" {
		sources = append(sources, fmt.Sprintf("url('%s') format('truetype')", ttf))
	}
	if svg := httpsURL(asset.Files.SVG); svg != "" {
		sources = append(sources, fmt.Sprintf("url('%s#%s') format('svg')", svg, family))
	}
	return sources
}

// httpsURL rewrites protocol-relative references to https so published
// pages never trigger mixed-content warnings when embedded.
func httpsURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}
