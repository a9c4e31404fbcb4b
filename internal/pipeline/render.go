package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/reqsift/internal/corpus"
	"github.com/ppiankov/reqsift/internal/importer"
	"github.com/ppiankov/reqsift/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// RenderImport prints the outcome of an import: route, stats, gap warning and breakdown
func RenderImport(w io.Writer, result *importer.Result, b corpus.Breakdown) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  Import Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Route:        %s", result.Route)
	if result.Chunks > 0 {
		fmt.Fprintf(w, " (%d chunk%s)", result.Chunks, plural(result.Chunks))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Records:      %d\n", result.Stats.Total)
	if result.Stats.DuplicatesFixed > 0 {
		fmt.Fprintf(w, "  Duplicates:   %d id%s renamed\n", result.Stats.DuplicatesFixed, plural(result.Stats.DuplicatesFixed))
	}
	if gap := result.Stats.SequenceGap; gap != nil {
		fmt.Fprintf(w, "  ⚠️  Sequence gap: ids %d..%d expect %d records, found %d (%d missing)\n",
			gap.Min, gap.Max, gap.Expected, gap.Actual, gap.Missing())
	}
	fmt.Fprintln(w)
	RenderBreakdown(w, b)
}

// RenderBreakdown prints counts per criticality and category
func RenderBreakdown(w io.Writer, b corpus.Breakdown) {
	fmt.Fprintf(w, "  Criticality:  %s\n", joinCounts(b.Criticality))
	fmt.Fprintf(w, "  Categories:   %s\n", joinCounts(b.Category))
	fmt.Fprintln(w)
}

// RenderSuggestions prints audit suggestions, marking the selected ones
func RenderSuggestions(w io.Writer, suggestions []model.AuditSuggestion, selected map[string]bool) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return
	}
	for _, s := range suggestions {
		mark := "[ ]"
		if selected[s.ID] {
			mark = "[x]"
		}
		fmt.Fprintf(w, "%s %s %-6s %-6s %s\n", mark, s.ID, s.Type, s.Confidence, s.Issue)
		if s.SuggestedText != "" {
			fmt.Fprintf(w, "      → %s\n", s.SuggestedText)
		}
	}
}

func joinCounts(counts []corpus.Count) string {
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s %d", c.Name, c.Count)
	}
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
