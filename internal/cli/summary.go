package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	summaryCorpus  string
	summaryMD      string
	summaryTimeout time.Duration
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate an executive summary (TL;DR) of a corpus",
	Long: `Summary asks the model for a Markdown management summary with the
sections Executive Summary, Risk Analysis, Key Domains and CTO
Recommendations.

Example:
  reqsift summary --corpus corpus.json
  reqsift summary --corpus corpus.json --md tldr.md`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVar(&summaryCorpus, "corpus", "corpus.json", "corpus to summarize")
	summaryCmd.Flags().StringVar(&summaryMD, "md", "", "write the summary to a Markdown file instead of stdout")
	summaryCmd.Flags().DurationVar(&summaryTimeout, "timeout", 5*time.Minute, "summary timeout")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(summaryTimeout)
	defer cancel()

	p, err := openCorpus(ctx, summaryCorpus)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Summarizing %d requirements...\n", p.Workspace().Len())
	}
	summary, err := p.Summary(ctx)
	if err != nil {
		return err
	}

	if summaryMD == "" {
		fmt.Println(summary)
		return nil
	}
	if err := os.WriteFile(summaryMD, []byte(summary+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", summaryMD, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", summaryMD)
	return nil
}
