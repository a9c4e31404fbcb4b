package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/reqsift/internal/analysis"
	"github.com/ppiankov/reqsift/internal/corpus"
	"github.com/ppiankov/reqsift/internal/importer"
	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/model"
)

func demoPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.LLM.DemoDelay = 0
	p, err := New(context.Background(), cfg, llm.ProviderConfig{Kind: llm.KindDemo})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestPipeline_DemoFlow(t *testing.T) {
	ctx := context.Background()
	p := demoPipeline(t)

	result, err := p.ImportText(ctx, "Our Source of Truth is the database.")
	if err != nil {
		t.Fatalf("ImportText failed: %v", err)
	}
	if result.Route != importer.RouteExtracted || p.Workspace().Len() != 5 {
		t.Fatalf("unexpected import %+v", result)
	}

	answer, err := p.Chat(ctx, "Which encryption is required?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if !strings.Contains(answer, "AES-256") {
		t.Errorf("unexpected demo answer %q", answer)
	}
	if len(p.Workspace().History()) != 2 {
		t.Errorf("chat exchange not recorded")
	}

	summary, err := p.Summary(ctx)
	if err != nil || !strings.Contains(summary, "Executive Summary") {
		t.Fatalf("Summary failed: %q %v", summary, err)
	}

	suggestions, err := p.Audit(ctx, model.AuditVague, analysis.AllCategories)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	applied := p.Apply(suggestions)
	if applied != 2 {
		t.Errorf("expected 2 applied suggestions, got %d", applied)
	}
	if p.Workspace().Summary() != "" {
		t.Error("applied audit should invalidate the summary")
	}
	if err := p.Workspace().Undo(); err != nil {
		t.Errorf("Undo failed: %v", err)
	}
}

func TestPipeline_AuditUnknownCategory(t *testing.T) {
	ctx := context.Background()
	p := demoPipeline(t)
	p.Install(model.SampleRequirements())

	_, err := p.Audit(ctx, model.AuditVague, "No Such Category")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}

	cat := p.Workspace().Categories()[0]
	if _, err := p.Audit(ctx, model.AuditVague, cat); err != nil {
		t.Errorf("Audit(%q) failed: %v", cat, err)
	}
}

func TestPipeline_Commit(t *testing.T) {
	p := demoPipeline(t)
	p.Install(model.SampleRequirements())
	first := p.Workspace().Corpus()[0].ReqID
	del := []model.AuditSuggestion{{ID: first, Type: model.SuggestionDelete, Issue: "dup", Confidence: model.ConfidenceHigh}}

	out := filepath.Join(t.TempDir(), "cleaned.json")
	applied, err := p.Commit(out, del)
	if err != nil || applied != 1 {
		t.Fatalf("Commit: applied=%d err=%v", applied, err)
	}
	saved, err := LoadCorpus(context.Background(), out, model.DefaultConfig())
	if err != nil {
		t.Fatalf("LoadCorpus failed: %v", err)
	}
	if len(saved) != 4 {
		t.Errorf("expected 4 saved records, got %d", len(saved))
	}
}

func TestPipeline_CommitRollsBackOnWriteFailure(t *testing.T) {
	p := demoPipeline(t)
	p.Install(model.SampleRequirements())
	version := p.Workspace().Version()
	first := p.Workspace().Corpus()[0].ReqID

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	del := []model.AuditSuggestion{{ID: first, Type: model.SuggestionDelete, Issue: "dup", Confidence: model.ConfidenceHigh}}
	if _, err := p.Commit(filepath.Join(blocker, "out.json"), del); err == nil {
		t.Fatal("expected write error")
	}

	w := p.Workspace()
	if w.Len() != 5 || w.Version() != version || w.CanUndo() {
		t.Errorf("workspace not rolled back: len=%d version changed=%v canUndo=%v", w.Len(), w.Version() != version, w.CanUndo())
	}
}

func TestPipeline_WithoutProvider(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, nil, llm.ProviderConfig{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := p.ImportText(ctx, `[{"req_id":"R-1"},{"req_id":"R-1"}]`); err != nil {
		t.Fatalf("structured import should work without a provider: %v", err)
	}
	if p.Workspace().Corpus()[1].ReqID != "R-1_1" {
		t.Errorf("duplicate not renamed: %+v", p.Workspace().Corpus())
	}

	if _, err := p.ImportText(ctx, "free text"); !errors.Is(err, importer.ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
	if p.Workspace().Len() != 2 {
		t.Error("failed import must leave the corpus untouched")
	}
	if _, err := p.Chat(ctx, "q"); !errors.Is(err, analysis.ErrNoProvider) {
		t.Errorf("expected analysis.ErrNoProvider, got %v", err)
	}
}

func TestPipeline_InvalidConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.CascadeModels = nil
	if _, err := New(context.Background(), cfg, llm.ProviderConfig{Kind: llm.KindDemo}); err == nil {
		t.Error("expected validation error")
	}
}

func TestPipeline_ImportURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>The Source of Truth is Postgres.</p></body></html>`)
	}))
	defer server.Close()

	p := demoPipeline(t)
	result, err := p.ImportSource(context.Background(), server.URL+"/doc.html")
	if err != nil {
		t.Fatalf("ImportSource failed: %v", err)
	}
	if len(result.Requirements) != 5 {
		t.Errorf("expected demo sample, got %d records", len(result.Requirements))
	}
}

func TestPipeline_ImportFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	os.WriteFile(a, []byte(`[{"req_id":"R-1"},{"req_id":"R-2"}]`), 0o644)
	os.WriteFile(b, []byte(`[{"req_id":"R-2"},{"req_id":"R-5"}]`), 0o644)

	p := demoPipeline(t)
	result, err := p.ImportFiles(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("ImportFiles failed: %v", err)
	}
	if result.Route != importer.RouteFiles || result.Stats.DuplicatesFixed != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Stats.SequenceGap == nil || result.Stats.SequenceGap.Missing() != 1 {
		t.Errorf("expected a gap of one, got %+v", result.Stats.SequenceGap)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	sample := model.SampleRequirements()

	for _, name := range []string{"corpus.json", "corpus.yaml", "nested/corpus.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveCorpus(path, sample); err != nil {
				t.Fatalf("SaveCorpus failed: %v", err)
			}
			got, err := LoadCorpus(context.Background(), path, nil)
			if err != nil {
				t.Fatalf("LoadCorpus failed: %v", err)
			}
			if len(got) != len(sample) {
				t.Fatalf("expected %d records, got %d", len(sample), len(got))
			}
			for i := range sample {
				if got[i] != sample[i] {
					t.Errorf("record %d changed: %+v", i, got[i])
				}
			}
		})
	}
}

func TestLoadCorpus_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := SaveCorpus(path, nil); err != nil {
		t.Fatalf("SaveCorpus failed: %v", err)
	}
	if _, err := LoadCorpus(context.Background(), path, nil); !errors.Is(err, importer.ErrEmptyImport) {
		t.Errorf("expected ErrEmptyImport, got %v", err)
	}
}

func TestRenderImport(t *testing.T) {
	result := &importer.Result{
		Route:  importer.RouteExtracted,
		Chunks: 2,
		Stats: model.ImportStats{
			Total:           3,
			DuplicatesFixed: 1,
			SequenceGap:     &model.SequenceGap{Min: 1, Max: 5, Expected: 5, Actual: 3},
		},
	}
	var buf bytes.Buffer
	RenderImport(&buf, result, corpus.BreakdownOf(model.SampleRequirements()))

	out := buf.String()
	for _, want := range []string{"extracted (2 chunks)", "Records:      3", "1 id renamed", "2 missing", "MUST 3, SHOULD 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSuggestions(t *testing.T) {
	var buf bytes.Buffer
	RenderSuggestions(&buf, []model.AuditSuggestion{
		{ID: "R-1", Type: model.SuggestionUpdate, Confidence: model.ConfidenceHigh, Issue: "vague", SuggestedText: "better"},
		{ID: "R-2", Type: model.SuggestionDelete, Confidence: model.ConfidenceLow, Issue: "dup"},
	}, map[string]bool{"R-1": true})

	out := buf.String()
	if !strings.Contains(out, "[x] R-1") || !strings.Contains(out, "[ ] R-2") || !strings.Contains(out, "→ better") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
