package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/reqsift/internal/importer"
	"github.com/ppiankov/reqsift/internal/model"
)

// SaveCorpus writes reqs to path. The extension selects the format:
// .yaml/.yml, .csv, anything else JSON.
func SaveCorpus(path string, reqs []model.Requirement) error {
	if reqs == nil {
		reqs = []model.Requirement{}
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(reqs); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	case ".csv":
		if err := importer.WriteCSV(&buf, reqs); err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(reqs); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadCorpus reads a saved corpus (JSON, CSV or YAML) and normalizes it, so
// a hand-edited file regains unique ids and defaults
func LoadCorpus(ctx context.Context, path string, cfg *model.Config) ([]model.Requirement, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	var raw []any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, &importer.FileError{Name: filepath.Base(path), Err: err}
		}
		switch t := v.(type) {
		case []any:
			raw = t
		case nil:
		default:
			raw = []any{t}
		}
	default:
		var err error
		raw, err = importer.LoadFiles(ctx, []string{path}, 1)
		if err != nil {
			return nil, err
		}
	}

	reqs, _, err := importer.NewNormalizer(importer.Options{
		NumericMajority:    cfg.Import.NumericMajority,
		DuplicateSeparator: cfg.Import.DuplicateSeparator,
	}).Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return reqs, nil
}
