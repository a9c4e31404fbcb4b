package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/reqsift/internal/extract"
	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/model"
)

// recordingClient returns a fixed reply and remembers the last request
type recordingClient struct {
	reply string
	err   error
	last  llm.Request
	calls int
}

func (c *recordingClient) Name() string { return "recording" }

func (c *recordingClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.calls++
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{Text: c.reply, Model: "m", Provider: "recording"}, nil
}

func corpusOf(n int, text string) []model.Requirement {
	out := make([]model.Requirement, n)
	for i := range out {
		out[i] = model.Requirement{
			ReqID:        fmt.Sprintf("R-%d", i+1),
			Category:     "Security",
			Criticality:  model.CriticalityMust,
			TextOriginal: text,
		}
	}
	return out
}

func TestChat_CondensesDataset(t *testing.T) {
	client := &recordingClient{reply: "answer"}
	a := NewAnalyzer(client, model.AnalysisConfig{MaxContextItems: 3, MaxChatText: 5}, nil)

	got, err := a.Chat(context.Background(), "what?", corpusOf(4, "äöüßabcdef"), nil)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got != "answer" {
		t.Errorf("unexpected answer %q", got)
	}

	req := client.last
	if req.Task != llm.TaskChat || req.User != "what?" || req.JSON {
		t.Errorf("unexpected request %+v", req)
	}
	if !strings.Contains(req.System, "First 3 items") {
		t.Errorf("truncated dataset should be announced: %q", req.System)
	}
	if strings.Contains(req.System, "R-4") {
		t.Error("records beyond the context limit must not be sent")
	}
	if !strings.Contains(req.System, `"txt":"äöüßa"`) || !strings.Contains(req.System, `"crit":"M"`) {
		t.Errorf("records not condensed: %q", req.System)
	}
}

func TestChat_FullDatasetAndHistory(t *testing.T) {
	client := &recordingClient{reply: "ok"}
	a := NewAnalyzer(client, model.AnalysisConfig{}, nil)

	history := []model.ChatTurn{
		{Role: model.RoleModel, Text: "Hello! Ask me anything."},
		{Role: model.RoleUser, Text: "first"},
		{Role: model.RoleModel, Text: "reply"},
	}
	if _, err := a.Chat(context.Background(), "second", corpusOf(2, "x"), history); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if !strings.Contains(client.last.System, "Full dataset") {
		t.Errorf("expected full dataset marker: %q", client.last.System)
	}
	if len(client.last.History) != 2 || client.last.History[0].Text != "first" || client.last.History[1].Role != model.RoleModel {
		t.Errorf("unexpected history %+v", client.last.History)
	}
}

func TestChat_Errors(t *testing.T) {
	if _, err := NewAnalyzer(nil, model.AnalysisConfig{}, nil).Chat(context.Background(), "q", nil, nil); !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}

	exhausted := &llm.ExhaustedError{Operation: "chat", Models: []string{"a"}}
	client := &recordingClient{err: exhausted}
	_, err := NewAnalyzer(client, model.AnalysisConfig{}, nil).Chat(context.Background(), "q", corpusOf(1, "x"), nil)
	if !errors.Is(err, llm.ErrAllModelsExhausted) {
		t.Errorf("expected exhausted error to surface, got %v", err)
	}

	client = &recordingClient{reply: ""}
	_, err = NewAnalyzer(client, model.AnalysisConfig{}, nil).Chat(context.Background(), "q", corpusOf(1, "x"), nil)
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	client := &recordingClient{reply: "## Executive Summary\nfine\n"}
	a := NewAnalyzer(client, model.AnalysisConfig{MaxSummaryText: 4}, nil)

	got, err := a.Summarize(context.Background(), corpusOf(2, "abcdefgh"))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "## Executive Summary\nfine" {
		t.Errorf("unexpected summary %q", got)
	}
	if client.last.Task != llm.TaskSummary || client.last.System != "You are a CTO." {
		t.Errorf("unexpected request %+v", client.last)
	}
	if !strings.Contains(client.last.User, `"text":"abcd"`) || strings.Contains(client.last.User, "abcde") {
		t.Errorf("summary text not capped: %q", client.last.User)
	}

	if _, err := a.Summarize(context.Background(), nil); err == nil {
		t.Error("expected error for empty corpus")
	}
}

func TestSummarize_Demo(t *testing.T) {
	a := NewAnalyzer(llm.NewDemoClient(0), model.AnalysisConfig{}, nil)
	got, err := a.Summarize(context.Background(), model.SampleRequirements())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if !strings.Contains(got, "Executive Summary (DEMO)") {
		t.Errorf("unexpected demo summary %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 2, "he"},
		{"grüße", 3, "grü"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestAudit_ParsesAndValidates(t *testing.T) {
	reply, _ := json.Marshal([]any{
		map[string]any{"id": "R-1", "type": "update", "issue": "vague", "suggested_text": "better", "confidence": "high"},
		map[string]any{"id": "R-2", "type": "DELETE", "issue": "dup", "confidence": "MEDIUM"},
		map[string]any{"id": "R-3", "type": "MERGE", "issue": "bad type"},
		map[string]any{"id": "R-99", "type": "DELETE", "issue": "not in scope"},
		map[string]any{"type": "DELETE"},
		"garbage",
	})
	client := &recordingClient{reply: "```json\n" + string(reply) + "\n```"}
	a := NewAnalyzer(client, model.AnalysisConfig{}, nil)

	got, err := a.Audit(context.Background(), corpusOf(3, "text"), model.AuditVague, AllCategories)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 valid suggestions, got %+v", got)
	}
	if got[0].Type != model.SuggestionUpdate || got[0].Confidence != model.ConfidenceHigh || got[0].SuggestedText != "better" {
		t.Errorf("unexpected first suggestion %+v", got[0])
	}

	req := client.last
	if req.Task != llm.TaskAudit || !req.JSON || !strings.HasPrefix(req.User, "AUDIT DATA:\n") {
		t.Errorf("unexpected request %+v", req)
	}
	if !strings.Contains(req.System, "MODE: VAGUE") || strings.Contains(req.System, "SCOPE:") {
		t.Errorf("unexpected system instruction %q", req.System)
	}

	sel := DefaultSelection(got)
	if !sel["R-1"] || sel["R-2"] {
		t.Errorf("unexpected default selection %v", sel)
	}
}

func TestAudit_CategoryScope(t *testing.T) {
	corpus := corpusOf(2, "text")
	corpus = append(corpus, model.Requirement{ReqID: "P-1", Category: "Performance", TextOriginal: "fast"})

	client := &recordingClient{reply: "[]"}
	a := NewAnalyzer(client, model.AnalysisConfig{}, nil)

	got, err := a.Audit(context.Background(), corpus, model.AuditSpelling, "Performance")
	if err != nil || len(got) != 0 {
		t.Fatalf("unexpected result %v (%v)", got, err)
	}
	if !strings.Contains(client.last.User, "P-1") || strings.Contains(client.last.User, "R-1") {
		t.Errorf("audit data not scoped: %q", client.last.User)
	}
	if !strings.Contains(client.last.System, `category "Performance"`) {
		t.Errorf("scope missing from instruction: %q", client.last.System)
	}

	client.calls = 0
	if got, err := a.Audit(context.Background(), corpus, model.AuditSpelling, "Nope"); err != nil || got != nil || client.calls != 0 {
		t.Errorf("empty scope should skip the model: %v %v calls=%d", got, err, client.calls)
	}
}

func TestAudit_UnparseableIsAnError(t *testing.T) {
	client := &recordingClient{reply: "I found nothing wrong."}
	_, err := NewAnalyzer(client, model.AnalysisConfig{}, nil).Audit(context.Background(), corpusOf(1, "x"), model.AuditDuplicate, AllCategories)
	if !errors.Is(err, extract.ErrUnparseableResponse) {
		t.Errorf("expected ErrUnparseableResponse, got %v", err)
	}
}

func TestAudit_Demo(t *testing.T) {
	a := NewAnalyzer(llm.NewDemoClient(0), model.AnalysisConfig{}, nil)
	got, err := a.Audit(context.Background(), model.SampleRequirements(), model.AuditConsistency, AllCategories)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "R-005" {
		t.Errorf("unexpected demo suggestions %+v", got)
	}
}

func TestParseAuditType(t *testing.T) {
	if mode, err := ParseAuditType(" vague "); err != nil || mode != model.AuditVague {
		t.Errorf("got %q, %v", mode, err)
	}
	if _, err := ParseAuditType("grammar"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
