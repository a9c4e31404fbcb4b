package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/ppiankov/reqsift/internal/extract"
	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/logger"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/prompt"
)

type auditItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ParseAuditType validates an audit mode name, case-insensitively
func ParseAuditType(s string) (model.AuditType, error) {
	mode := model.AuditType(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(model.AuditTypes, mode) {
		return "", fmt.Errorf("unknown audit mode %q (want one of %s)", s, strings.Join(auditModeNames(), ", "))
	}
	return mode, nil
}

// Scope returns the records an audit of category covers
func Scope(corpus []model.Requirement, category string) []model.Requirement {
	if category == "" || category == AllCategories {
		return corpus
	}
	var scoped []model.Requirement
	for _, r := range corpus {
		if r.Category == category {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

// Audit asks the model for edits of the given kind over one category (or ALL).
// Suggestions that do not validate or name an id outside the scope are dropped.
func (a *Analyzer) Audit(ctx context.Context, corpus []model.Requirement, mode model.AuditType, category string) ([]model.AuditSuggestion, error) {
	if a.client == nil {
		return nil, ErrNoProvider
	}
	if !slices.Contains(model.AuditTypes, mode) {
		return nil, fmt.Errorf("unknown audit mode %q", mode)
	}

	scoped := Scope(corpus, category)
	if len(scoped) == 0 {
		logger.Info("nothing to audit", "category", category)
		return nil, nil
	}

	items := make([]auditItem, len(scoped))
	ids := make(map[string]bool, len(scoped))
	for i, r := range scoped {
		items[i] = auditItem{ID: r.ReqID, Text: r.TextOriginal}
		ids[r.ReqID] = true
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	scopeName := category
	if scopeName == AllCategories {
		scopeName = ""
	}
	system, err := a.prompts.AuditSystem(string(mode), auditModeNames(), scopeName)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		Task:   llm.TaskAudit,
		System: system,
		User:   prompt.AuditUserPrefix + string(data),
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("audit failed: %w", err)
	}

	raw, err := extract.JSONArray(resp.Text)
	if err != nil {
		return nil, err
	}

	suggestions := make([]model.AuditSuggestion, 0, len(raw))
	for n, item := range raw {
		s, err := toSuggestion(item)
		if err != nil {
			logger.Warn("dropping audit suggestion", "index", n, "error", err)
			continue
		}
		if !ids[s.ID] {
			logger.Warn("dropping audit suggestion", "index", n, "id", s.ID, "error", "unknown requirement id")
			continue
		}
		suggestions = append(suggestions, s)
	}

	logger.Debug("audit finished", "mode", mode, "category", category, "records", len(scoped), "suggestions", len(suggestions))
	return suggestions, nil
}

// DefaultSelection returns the ids of HIGH-confidence suggestions
func DefaultSelection(suggestions []model.AuditSuggestion) map[string]bool {
	selected := make(map[string]bool)
	for _, s := range suggestions {
		if s.Confidence == model.ConfidenceHigh {
			selected[s.ID] = true
		}
	}
	return selected
}

func toSuggestion(item any) (model.AuditSuggestion, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return model.AuditSuggestion{}, fmt.Errorf("expected an object, got %T", item)
	}

	s := model.AuditSuggestion{
		ID:            strings.TrimSpace(field(obj, "id")),
		Type:          model.SuggestionType(strings.ToUpper(strings.TrimSpace(field(obj, "type")))),
		Issue:         field(obj, "issue"),
		SuggestedText: field(obj, "suggested_text"),
		Confidence:    strings.ToUpper(strings.TrimSpace(field(obj, "confidence"))),
	}
	if err := suggestionValidator.Struct(s); err != nil {
		return model.AuditSuggestion{}, err
	}
	return s, nil
}

func field(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func auditModeNames() []string {
	names := make([]string, len(model.AuditTypes))
	for i, t := range model.AuditTypes {
		names[i] = string(t)
	}
	return names
}
