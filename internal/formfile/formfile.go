// Package formfile reads prediction forms from YAML or JSON files.
//
// A file holds one form (a flat mapping of feature names to values), a list
// of forms, or a batch document with a "predictions" list.
package formfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

// ErrEmpty is returned when a file holds no forms.
var ErrEmpty = errors.New("no forms in file")

// LoadFromPath reads the forms in path. The format comes from the extension
// (.yaml/.yml or .json) or, failing that, from the content.
func LoadFromPath(path string) ([]domain.FormPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}
	forms, err := Load(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return forms, nil
}

// Load parses forms from data. ext is a format hint; empty means detect.
func Load(data []byte, ext string) ([]domain.FormPayload, error) {
	var doc any
	switch strings.ToLower(ext) {
	case ".json":
		if err := decodeJSON(data, &doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
			if err := decodeJSON(data, &doc); err != nil {
				return nil, err
			}
		} else if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return forms(doc)
}

// Marshal renders a form as YAML with keys sorted.
func Marshal(form domain.FormPayload) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(form)); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

func forms(doc any) ([]domain.FormPayload, error) {
	var items []any
	switch v := doc.(type) {
	case map[string]any:
		if batch, ok := v["predictions"].([]any); ok && len(v) == 1 {
			items = batch
		} else {
			items = []any{v}
		}
	case []any:
		items = v
	case nil:
		return nil, ErrEmpty
	default:
		return nil, fmt.Errorf("expected a mapping or a list of mappings, got %T", doc)
	}
	if len(items) == 0 {
		return nil, ErrEmpty
	}

	out := make([]domain.FormPayload, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("form %d: expected a mapping, got %T", i+1, item)
		}
		for k, v := range m {
			if _, nested := v.(map[string]any); nested {
				return nil, fmt.Errorf("form %d: field %q must be a scalar", i+1, k)
			}
			if _, nested := v.([]any); nested {
				return nil, fmt.Errorf("form %d: field %q must be a scalar", i+1, k)
			}
		}
		out[i] = domain.FormPayload(m)
	}
	return out, nil
}
