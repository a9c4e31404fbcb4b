// Package importer turns pasted text and uploaded files into a normalized requirement corpus.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/reqsift/internal/chunk"
	"github.com/ppiankov/reqsift/internal/extract"
	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/logger"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/prompt"
)

// Route records how an input was turned into raw records
type Route string

const (
	RouteDirect    Route = "direct"    // schema-shaped JSON, no model call
	RouteRepaired  Route = "repaired"  // concatenated arrays joined
	RouteExtracted Route = "extracted" // free text sent through the model
	RouteFiles     Route = "files"     // structured multi-file import
)

// ErrNoProvider is returned when free text needs a model but none is configured
var ErrNoProvider = errors.New("input needs model extraction but no provider is configured")

// shapeFields mark a JSON object as requirement-shaped
var shapeFields = []string{"req_id", "text_original", "criticality", "source_doc"}

// Result is the outcome of one import call
type Result struct {
	Requirements []model.Requirement
	Stats        model.ImportStats
	Route        Route
	Chunks       int
}

// Option configures an Importer
type Option func(*Importer)

// WithChunkSize sets the maximum chunk length for model extraction
func WithChunkSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.chunkSize = n
		}
	}
}

// WithNormalizer replaces the default normalizer
func WithNormalizer(n *Normalizer) Option {
	return func(i *Importer) {
		if n != nil {
			i.normalizer = n
		}
	}
}

// WithPrompts replaces the default prompt renderer
func WithPrompts(r *prompt.Renderer) Option {
	return func(i *Importer) {
		if r != nil {
			i.prompts = r
		}
	}
}

// Importer classifies raw input and normalizes the records it yields
type Importer struct {
	client     llm.Client
	normalizer *Normalizer
	prompts    *prompt.Renderer
	chunkSize  int
}

// New creates an importer. client may be nil when only structured input is expected.
func New(client llm.Client, opts ...Option) *Importer {
	i := &Importer{
		client:     client,
		normalizer: NewNormalizer(DefaultOptions()),
		chunkSize:  chunk.DefaultMaxLen,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.prompts == nil {
		i.prompts = prompt.MustNew()
	}
	return i
}

// Import classifies input, extracts raw records and normalizes them.
// Model calls are made only when the input is not usable JSON.
func (i *Importer) Import(ctx context.Context, input string) (*Result, error) {
	raw, route, chunks, err := i.Parse(ctx, input)
	if err != nil {
		return nil, err
	}

	reqs, stats, err := i.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	return &Result{Requirements: reqs, Stats: stats, Route: route, Chunks: chunks}, nil
}

// ImportRecords normalizes records that were already parsed, e.g. from files
func (i *Importer) ImportRecords(raw []any) (*Result, error) {
	reqs, stats, err := i.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return &Result{Requirements: reqs, Stats: stats, Route: RouteFiles}, nil
}

// Parse returns the raw records for input without normalizing them
func (i *Importer) Parse(ctx context.Context, input string) ([]any, Route, int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, "", 0, ErrEmptyInput
	}

	if v, err := extract.Decode(trimmed); err == nil {
		if looksLikeRequirements(v) {
			logger.Debug("import route decided", "route", RouteDirect)
			return asArray(v), RouteDirect, 0, nil
		}
		logger.Debug("valid JSON without requirement fields, trying repair")
	}

	repaired, err := RepairConcatenated(trimmed)
	if err == nil {
		logger.Debug("import route decided", "route", RouteRepaired, "records", len(repaired))
		return repaired, RouteRepaired, 0, nil
	}
	logger.Debug("repair skipped", "reason", err)

	raw, chunks, err := i.extractText(ctx, trimmed)
	if err != nil {
		return nil, "", chunks, err
	}
	logger.Debug("import route decided", "route", RouteExtracted, "chunks", chunks, "records", len(raw))
	return raw, RouteExtracted, chunks, nil
}

// extractText sends each chunk to the model in order and concatenates the arrays
func (i *Importer) extractText(ctx context.Context, text string) ([]any, int, error) {
	if i.client == nil {
		return nil, 0, ErrNoProvider
	}

	system, err := i.prompts.ExtractionSystem(model.RequirementFields)
	if err != nil {
		return nil, 0, err
	}

	chunks := chunk.Split(text, i.chunkSize)
	var all []any
	for n, c := range chunks {
		logger.Info("extracting requirements", "chunk", n+1, "of", len(chunks), "chars", len(c))

		resp, err := i.client.Complete(ctx, llm.Request{
			Task:   llm.TaskExtract,
			System: system,
			User:   prompt.ExtractUserPrefix + c,
			JSON:   true,
		})
		if err != nil {
			return nil, len(chunks), fmt.Errorf("chunk %d/%d: %w", n+1, len(chunks), err)
		}
		if strings.TrimSpace(resp.Text) == "" {
			return nil, len(chunks), fmt.Errorf("chunk %d/%d: %w", n+1, len(chunks), llm.ErrEmptyResponse)
		}

		items, err := extract.JSONArray(resp.Text)
		if err != nil {
			return nil, len(chunks), fmt.Errorf("chunk %d/%d: %w", n+1, len(chunks), err)
		}
		all = append(all, items...)
	}
	return all, len(chunks), nil
}

// looksLikeRequirements checks the first element (or the value itself) for a known field
func looksLikeRequirements(v any) bool {
	sample := v
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return false
		}
		sample = arr[0]
	}

	obj, ok := sample.(map[string]any)
	if !ok {
		return false
	}
	for _, f := range shapeFields {
		if _, ok := obj[f]; ok {
			return true
		}
	}
	return false
}

func asArray(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{v}
}
