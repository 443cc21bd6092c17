package sitegen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chartpub/chartpub/internal/assets"
)

// embedLoaderJS is the host-side loader referenced by generated embed
// codes. It listens for height announcements from embedded chart frames
// and resizes the matching iframe so responsive embeds never clip.
const embedLoaderJS = `(function () {
	"use strict";
	if (window.__chartpubEmbedLoader) return;
	window.__chartpubEmbedLoader = true;
	window.addEventListener("message", function (event) {
		var data = event.data;
		if (!data || data.source !== "chartpub" || !data.chartId) return;
		var frames = document.querySelectorAll("iframe[data-chart-id='" + data.chartId + "']");
		for (var i = 0; i < frames.length; i++) {
			if (typeof data.height === "number" && data.height > 0) {
				frames[i].style.height = data.height + "px";
			}
		}
	});
})();
`

// writeEmbedLoader stages the loader into the output directory under its
// content-addressed name and returns that name.
func writeEmbedLoader(outDir string) (string, error) {
	content := []byte(embedLoaderJS)
	name := assets.HashedName("embed.js", content)
	if err := os.WriteFile(filepath.Join(outDir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("sitegen: write embed loader: %w", err)
	}
	return name, nil
}
