// Package analysis asks the configured model questions about a requirement corpus.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/prompt"
)

// AllCategories scopes an audit to the whole corpus
const AllCategories = "ALL"

// greeting marks the canned opening turn a chat UI shows before the first question
const greeting = "Hello!"

// ErrNoProvider is returned when an analysis is requested without a model client
var ErrNoProvider = errors.New("no model provider configured")

var suggestionValidator = validator.New()

// Analyzer runs chat, summary and audit requests against one client
type Analyzer struct {
	client  llm.Client
	prompts *prompt.Renderer
	cfg     model.AnalysisConfig
}

// NewAnalyzer creates an analyzer; zero limits take the defaults
func NewAnalyzer(client llm.Client, cfg model.AnalysisConfig, prompts *prompt.Renderer) *Analyzer {
	def := model.DefaultConfig().Analysis
	if cfg.MaxContextItems <= 0 {
		cfg.MaxContextItems = def.MaxContextItems
	}
	if cfg.MaxChatText <= 0 {
		cfg.MaxChatText = def.MaxChatText
	}
	if cfg.MaxSummaryText <= 0 {
		cfg.MaxSummaryText = def.MaxSummaryText
	}
	if prompts == nil {
		prompts = prompt.MustNew()
	}
	return &Analyzer{client: client, prompts: prompts, cfg: cfg}
}

type chatItem struct {
	ID   string `json:"id"`
	Cat  string `json:"cat"`
	Crit string `json:"crit"`
	Txt  string `json:"txt"`
	Note string `json:"note,omitempty"`
}

// Chat answers question against the corpus, continuing the given conversation
func (a *Analyzer) Chat(ctx context.Context, question string, corpus []model.Requirement, history []model.ChatTurn) (string, error) {
	if a.client == nil {
		return "", ErrNoProvider
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is empty")
	}

	limit := a.cfg.MaxContextItems
	items := make([]chatItem, 0, min(len(corpus), limit))
	for _, r := range corpus[:min(len(corpus), limit)] {
		items = append(items, chatItem{
			ID:   r.ReqID,
			Cat:  r.Category,
			Crit: r.ShortCriticality(),
			Txt:  truncate(r.TextOriginal, a.cfg.MaxChatText),
			Note: r.CTONote,
		})
	}
	dataset, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	system, err := a.prompts.ChatSystem(string(dataset), len(corpus) > limit, limit)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		Task:    llm.TaskChat,
		System:  system,
		User:    question,
		History: chatHistory(history),
	})
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Text, nil
}

// chatHistory drops the opening greeting turn and empty turns
func chatHistory(history []model.ChatTurn) []model.ChatTurn {
	out := make([]model.ChatTurn, 0, len(history))
	for i, turn := range history {
		if i == 0 && turn.Role == model.RoleModel && strings.Contains(turn.Text, greeting) {
			continue
		}
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		out = append(out, turn)
	}
	return out
}

type summaryItem struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Criticality string `json:"criticality"`
	Text        string `json:"text"`
}

// Summarize returns a Markdown executive summary of the corpus
func (a *Analyzer) Summarize(ctx context.Context, corpus []model.Requirement) (string, error) {
	if a.client == nil {
		return "", ErrNoProvider
	}
	if len(corpus) == 0 {
		return "", errors.New("corpus is empty")
	}

	items := make([]summaryItem, len(corpus))
	for i, r := range corpus {
		items[i] = summaryItem{
			ID:          r.ReqID,
			Category:    r.Category,
			Criticality: r.Criticality,
			Text:        truncate(r.TextOriginal, a.cfg.MaxSummaryText),
		}
	}
	dataset, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	user, err := a.prompts.SummaryPrompt(string(dataset))
	if err != nil {
		return "", err
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		Task:   llm.TaskSummary,
		System: prompt.SummarySystem,
		User:   user,
	})
	if err != nil {
		return "", fmt.Errorf("summary failed: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Text), nil
}

// truncate caps s at n runes
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
