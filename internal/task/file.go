package task

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed task.schema.json
var schemaJSON []byte

// Load reads a task file. The format is chosen by extension (.json, .yaml, .yml)
// and the document is checked against the task JSON Schema before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := validateDocument(gojsonschema.NewBytesLoader(data)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := validateDocument(gojsonschema.NewGoLoader(doc)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported task file extension %q (expected .json, .yaml or .yml)", ext)
	}

	if cfg.Language == "" {
		cfg.Language = DefaultLanguage()
	} else {
		cfg.Language = NormalizeLanguage(cfg.Language)
	}
	if cfg.ExportFormat == "" {
		cfg.ExportFormat = FormatJSON
	}
	for i := range cfg.Tables {
		if cfg.Tables[i].RowCount == 0 {
			cfg.Tables[i].RowCount = DefaultRowCount
		}
	}
	return &cfg, nil
}

// Save writes the task to path, choosing JSON or YAML by extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("unsupported task file extension %q (expected .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func validateDocument(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), doc)
	if err != nil {
		return fmt.Errorf("failed to validate task document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("task document is invalid:\n  - %s", strings.Join(msgs, "\n  - "))
}
