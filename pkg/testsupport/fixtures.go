package testsupport

import (
	"encoding/json"
	"os"
)

// LoadFixture reads a raw fixture file.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden unmarshals a JSON golden file into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// MetadataFixture builds a minimal chart metadata document with the
// publish section set, the shape most publish-pipeline tests need.
func MetadataFixture(publish map[string]any) map[string]any {
	return map[string]any{
		"describe":  map[string]any{},
		"visualize": map[string]any{},
		"annotate":  map[string]any{},
		"publish":   publish,
	}
}
