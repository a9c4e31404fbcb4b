package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reqsift/internal/analysis"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/pipeline"
)

var (
	auditCorpus   string
	auditMode     string
	auditCategory string
	auditApply    bool
	auditAll      bool
	auditOut      string
	auditTimeout  time.Duration
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Find duplicates, vague wording, typos or inconsistent terms",
	Long: `Audit asks the model to review one category (or all) for one kind of
problem and prints the suggested edits. HIGH-confidence suggestions are
preselected; --apply writes them (or every suggestion with --all) to a new
corpus file. The input file is never modified.

Modes: DUPLICATE, VAGUE, SPELLING, CONSISTENCY

Example:
  reqsift audit --corpus corpus.json --mode VAGUE
  reqsift audit --corpus corpus.json --mode DUPLICATE --category Security --apply --out cleaned.json`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&auditCorpus, "corpus", "corpus.json", "corpus to audit")
	auditCmd.Flags().StringVar(&auditMode, "mode", string(model.AuditVague), "audit mode (DUPLICATE, VAGUE, SPELLING, CONSISTENCY)")
	auditCmd.Flags().StringVar(&auditCategory, "category", analysis.AllCategories, "category to audit")
	auditCmd.Flags().BoolVar(&auditApply, "apply", false, "apply the selected suggestions")
	auditCmd.Flags().BoolVar(&auditAll, "all", false, "select every suggestion, not only HIGH confidence")
	auditCmd.Flags().StringVarP(&auditOut, "out", "o", "corpus.audited.json", "output path for the edited corpus")
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 5*time.Minute, "audit timeout")
}

func runAudit(cmd *cobra.Command, args []string) error {
	mode, err := analysis.ParseAuditType(auditMode)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(auditTimeout)
	defer cancel()

	p, err := openCorpus(ctx, auditCorpus)
	if err != nil {
		return err
	}

	scoped := len(analysis.Scope(p.Workspace().Corpus(), auditCategory))
	fmt.Fprintf(os.Stderr, "⚙️  Checking %d items for %s issues...\n\n", scoped, mode)

	suggestions, err := p.Audit(ctx, mode, auditCategory)
	if err != nil {
		return err
	}

	selected := analysis.DefaultSelection(suggestions)
	if auditAll {
		for _, s := range suggestions {
			selected[s.ID] = true
		}
	}
	pipeline.RenderSuggestions(os.Stdout, suggestions, selected)

	if !auditApply || len(suggestions) == 0 {
		return nil
	}

	var chosen []model.AuditSuggestion
	for _, s := range suggestions {
		if selected[s.ID] {
			chosen = append(chosen, s)
		}
	}
	applied, err := p.Commit(auditOut, chosen)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\n✓ Applied %d of %d suggestions\n", applied, len(suggestions))
	fmt.Fprintf(os.Stderr, "✓ Wrote corpus: %s\n", auditOut)
	return nil
}
