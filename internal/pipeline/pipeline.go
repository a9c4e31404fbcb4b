// Package pipeline wires provider, importer, analyzer and workspace together.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/ppiankov/reqsift/internal/analysis"
	"github.com/ppiankov/reqsift/internal/corpus"
	"github.com/ppiankov/reqsift/internal/importer"
	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/logger"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/prompt"
)

// ErrUnknownCategory is returned when an audit names a category the corpus does not hold
var ErrUnknownCategory = errors.New("unknown category")

// Pipeline orchestrates imports and analyses over one workspace
type Pipeline struct {
	config    *model.Config
	provider  llm.ProviderConfig
	client    llm.Client
	importer  *importer.Importer
	analyzer  *analysis.Analyzer
	fetcher   *Fetcher
	workspace *corpus.Workspace
}

// New creates a pipeline. A zero provider leaves the pipeline without a
// model client: structured imports work, everything else fails with a
// no-provider error.
func New(ctx context.Context, cfg *model.Config, pc llm.ProviderConfig) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var client llm.Client
	if pc != (llm.ProviderConfig{}) {
		c, err := llm.NewClient(ctx, pc, cfg)
		if err != nil {
			return nil, err
		}
		client = c
	}
	return NewWithClient(cfg, pc, client), nil
}

// NewWithClient creates a pipeline around an existing client
func NewWithClient(cfg *model.Config, pc llm.ProviderConfig, client llm.Client) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	prompts := prompt.MustNew()

	normalizer := importer.NewNormalizer(importer.Options{
		NumericMajority:    cfg.Import.NumericMajority,
		DuplicateSeparator: cfg.Import.DuplicateSeparator,
	})

	ws := corpus.NewWorkspace()
	ws.SetProvider(pc)

	return &Pipeline{
		config:   cfg,
		provider: pc,
		client:   client,
		importer: importer.New(client,
			importer.WithChunkSize(cfg.Import.ChunkSize),
			importer.WithNormalizer(normalizer),
			importer.WithPrompts(prompts),
		),
		analyzer:  analysis.NewAnalyzer(client, cfg.Analysis, prompts),
		fetcher:   NewFetcher(cfg.HTTP),
		workspace: ws,
	}
}

// Workspace returns the pipeline's corpus state
func (p *Pipeline) Workspace() *corpus.Workspace {
	return p.workspace
}

// Provider returns the resolved provider configuration
func (p *Pipeline) Provider() llm.ProviderConfig {
	return p.provider
}

// ImportText runs the smart import over pasted text and installs the result
func (p *Pipeline) ImportText(ctx context.Context, text string) (*importer.Result, error) {
	result, err := p.importer.Import(ctx, text)
	if err != nil {
		return nil, err
	}
	p.workspace.Install(result.Requirements)
	return result, nil
}

// ImportSource imports a local file or an http(s) URL
func (p *Pipeline) ImportSource(ctx context.Context, source string) (*importer.Result, error) {
	if isURL(source) {
		return p.ImportURL(ctx, source)
	}

	text, err := importer.ReadText(source)
	if err != nil {
		return nil, err
	}
	return p.ImportText(ctx, text)
}

// ImportURL downloads a document and runs the smart import over it
func (p *Pipeline) ImportURL(ctx context.Context, rawURL string) (*importer.Result, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	logger.Debug("document fetched", "url", fetched.FinalURL, "bytes", len(fetched.Body), "content_type", fetched.ContentType)

	text := string(fetched.Body)
	if fetched.IsHTML() {
		text, err = importer.HTMLToText(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", rawURL, err)
		}
	}
	return p.ImportText(ctx, text)
}

// ImportFiles loads structured JSON/CSV files and installs the combined corpus
func (p *Pipeline) ImportFiles(ctx context.Context, paths []string) (*importer.Result, error) {
	raw, err := importer.LoadFiles(ctx, paths, p.config.Import.FileWorkers)
	if err != nil {
		return nil, err
	}

	result, err := p.importer.ImportRecords(raw)
	if err != nil {
		return nil, err
	}
	p.workspace.Install(result.Requirements)
	return result, nil
}

// Install replaces the workspace corpus, e.g. with a previously saved one
func (p *Pipeline) Install(reqs []model.Requirement) {
	p.workspace.Install(reqs)
}

// Chat asks a question about the current corpus and records the exchange
func (p *Pipeline) Chat(ctx context.Context, question string) (string, error) {
	answer, err := p.analyzer.Chat(ctx, question, p.workspace.Corpus(), p.workspace.History())
	if err != nil {
		return "", err
	}
	p.workspace.AppendChat(
		model.ChatTurn{Role: model.RoleUser, Text: question},
		model.ChatTurn{Role: model.RoleModel, Text: answer},
	)
	return answer, nil
}

// Summary returns the executive summary, generating it when not cached
func (p *Pipeline) Summary(ctx context.Context) (string, error) {
	if s := p.workspace.Summary(); s != "" {
		return s, nil
	}
	s, err := p.analyzer.Summarize(ctx, p.workspace.Corpus())
	if err != nil {
		return "", err
	}
	p.workspace.SetSummary(s)
	return s, nil
}

// Audit returns suggestions for the current corpus
func (p *Pipeline) Audit(ctx context.Context, mode model.AuditType, category string) ([]model.AuditSuggestion, error) {
	if category != "" && category != analysis.AllCategories {
		cats := p.workspace.Categories()
		if !slices.Contains(cats, category) {
			return nil, fmt.Errorf("%w %q (have: %s)", ErrUnknownCategory, category, strings.Join(cats, ", "))
		}
	}
	return p.analyzer.Audit(ctx, p.workspace.Corpus(), mode, category)
}

// Apply applies the selected suggestions to the workspace corpus
func (p *Pipeline) Apply(suggestions []model.AuditSuggestion) int {
	applied, _ := p.workspace.ApplySuggestions(suggestions)
	return applied
}

// Commit applies the suggestions and writes the edited corpus to path.
// If the write fails the workspace is rolled back to the previous corpus.
func (p *Pipeline) Commit(path string, suggestions []model.AuditSuggestion) (int, error) {
	applied := p.Apply(suggestions)
	if err := SaveCorpus(path, p.workspace.Corpus()); err != nil {
		if p.workspace.CanUndo() {
			if uerr := p.workspace.Undo(); uerr != nil {
				logger.Warn("rollback failed", "error", uerr)
			}
		}
		return 0, err
	}
	logger.Info("corpus saved", "path", path, "version", p.workspace.Version(), "applied", applied)
	return applied, nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
