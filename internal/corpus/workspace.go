// Package corpus owns the in-memory requirement corpus and its edit history.
package corpus

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/logger"
	"github.com/ppiankov/reqsift/internal/model"
)

// ErrNothingToUndo is returned by Undo when no snapshot is held
var ErrNothingToUndo = errors.New("nothing to undo")

// Workspace holds the current corpus, a single-level undo snapshot, the chat
// conversation and the cached summary. All methods are safe for concurrent use.
type Workspace struct {
	mu       sync.RWMutex
	corpus   []model.Requirement
	version  string
	snapshot *snapshot
	provider llm.ProviderConfig
	history  []model.ChatTurn
	summary  string
}

type snapshot struct {
	corpus  []model.Requirement
	version string
}

// NewWorkspace creates an empty workspace
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Install replaces the corpus with reqs, e.g. after an import.
// The undo snapshot, conversation and summary belong to the old corpus and are cleared.
func (w *Workspace) Install(reqs []model.Requirement) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.corpus = cloneAll(reqs)
	w.version = uuid.NewString()
	w.snapshot = nil
	w.history = nil
	w.summary = ""
	logger.Debug("corpus installed", "version", w.version, "records", len(reqs))
	return w.version
}

// Corpus returns a copy of the current corpus
func (w *Workspace) Corpus() []model.Requirement {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneAll(w.corpus)
}

// Version identifies the current corpus; empty when nothing is installed
func (w *Workspace) Version() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Len returns the number of records in the corpus
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.corpus)
}

// ApplySuggestions applies the selected audit suggestions as a new corpus
// version. DELETE removes the record; UPDATE replaces its text when suggested
// text is present. The previous version becomes the undo snapshot.
func (w *Workspace) ApplySuggestions(suggestions []model.AuditSuggestion) (applied int, version string) {
	deletes := make(map[string]bool)
	updates := make(map[string]string)
	for _, s := range suggestions {
		switch s.Type {
		case model.SuggestionDelete:
			deletes[s.ID] = true
		case model.SuggestionUpdate:
			if s.SuggestedText != "" {
				updates[s.ID] = s.SuggestedText
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]model.Requirement, 0, len(w.corpus))
	for _, r := range w.corpus {
		if deletes[r.ReqID] {
			applied++
			continue
		}
		if text, ok := updates[r.ReqID]; ok {
			r.TextOriginal = text
			applied++
		}
		next = append(next, r)
	}

	w.snapshot = &snapshot{corpus: w.corpus, version: w.version}
	w.corpus = next
	w.version = uuid.NewString()
	w.summary = ""
	logger.Info("audit suggestions applied", "applied", applied, "records", len(next), "version", w.version)
	return applied, w.version
}

// CanUndo reports whether an undo snapshot is held
func (w *Workspace) CanUndo() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot != nil
}

// Undo restores the corpus that preceded the last applied audit. It works once.
func (w *Workspace) Undo() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.snapshot == nil {
		return ErrNothingToUndo
	}
	w.corpus = w.snapshot.corpus
	w.version = w.snapshot.version
	w.snapshot = nil
	w.summary = ""
	return nil
}

// Reset clears corpus, snapshot, conversation and summary
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

func (w *Workspace) reset() {
	w.corpus = nil
	w.version = ""
	w.snapshot = nil
	w.history = nil
	w.summary = ""
}

// SetProvider records the active provider. Switching to a different provider
// resets the workspace; it reports whether that happened.
func (w *Workspace) SetProvider(pc llm.ProviderConfig) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := w.provider != (llm.ProviderConfig{}) && w.provider != pc
	if changed {
		logger.Info("provider changed, clearing workspace", "from", w.provider.String(), "to", pc.String())
		w.reset()
	}
	w.provider = pc
	return changed
}

// Provider returns the active provider
func (w *Workspace) Provider() llm.ProviderConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.provider
}

// AppendChat records one turn of the conversation
func (w *Workspace) AppendChat(turns ...model.ChatTurn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.history = append(w.history, turns...)
}

// History returns a copy of the conversation
func (w *Workspace) History() []model.ChatTurn {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]model.ChatTurn(nil), w.history...)
}

// SetSummary caches the executive summary for the current version
func (w *Workspace) SetSummary(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.summary = s
}

// Summary returns the cached summary, empty when invalidated
func (w *Workspace) Summary() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.summary
}

// Count is one bucket of a corpus breakdown
type Count struct {
	Name  string
	Count int
}

// Breakdown counts records per criticality and per category
type Breakdown struct {
	Total       int
	Criticality []Count
	Category    []Count
}

// Breakdown summarizes the current corpus
func (w *Workspace) Breakdown() Breakdown {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return BreakdownOf(w.corpus)
}

// BreakdownOf counts reqs per criticality and category, largest buckets first
func BreakdownOf(reqs []model.Requirement) Breakdown {
	crit := make(map[string]int)
	cat := make(map[string]int)
	for _, r := range reqs {
		crit[r.Criticality]++
		cat[r.Category]++
	}
	return Breakdown{
		Total:       len(reqs),
		Criticality: sortedCounts(crit),
		Category:    sortedCounts(cat),
	}
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Categories returns the distinct categories in first-seen order
func (w *Workspace) Categories() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, r := range w.corpus {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}

func cloneAll(reqs []model.Requirement) []model.Requirement {
	if reqs == nil {
		return nil
	}
	return append([]model.Requirement(nil), reqs...)
}
