package charts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMetadataInvalid wraps schema violations found in a chart metadata document.
var ErrMetadataInvalid = errors.New("charts: metadata invalid")

// metadataSchema constrains the shape of the nested metadata document. The
// individual sections stay open maps so visualization plugins can attach
// their own keys, but section types and the publish embed dimensions are
// enforced here rather than in every consumer.
const metadataSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"describe": {"type": "object"},
		"visualize": {"type": "object"},
		"annotate": {"type": "object"},
		"publish": {
			"type": "object",
			"properties": {
				"embed-width": {"type": "number", "minimum": 1},
				"embed-height": {"type": "number", "minimum": 1},
				"autoDarkMode": {"type": "boolean"},
				"blocks": {"type": "object"}
			}
		},
		"custom": {"type": "object"},
		"data": {"type": "object"}
	}
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiledMetadataSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("chart-metadata.json", bytes.NewReader([]byte(metadataSchema))); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = compiler.Compile("chart-metadata.json")
	})
	return compiledSchema, compileErr
}

// ValidateMetadata checks a metadata document against the chart metadata
// schema. Violations are flattened into a single error listing every failed
// instance location.
func ValidateMetadata(meta Metadata) error {
	schema, err := compiledMetadataSchema()
	if err != nil {
		return fmt.Errorf("charts: compile metadata schema: %w", err)
	}

	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("%w: %s", ErrMetadataInvalid, joinIssues(validationErr))
		}
		return fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	return nil
}

func joinIssues(err *jsonschema.ValidationError) string {
	issues := []string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "#"
			}
			issues = append(issues, location+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return strings.Join(issues, "; ")
}
