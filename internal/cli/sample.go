package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reqsift/internal/corpus"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/pipeline"
)

var sampleOut string

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write the bundled sample corpus",
	Long: `Sample writes five example requirements (R-001..R-005) so chat, summary
and audit can be tried without importing anything.

Example:
  reqsift sample --out corpus.json
  reqsift chat --corpus corpus.json --provider DEMO "what are the risks?"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs := model.SampleRequirements()
		if err := pipeline.SaveCorpus(sampleOut, reqs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote sample corpus: %s\n\n", sampleOut)
		pipeline.RenderBreakdown(os.Stderr, corpus.BreakdownOf(reqs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "corpus.json", "output corpus path (.json, .yaml or .csv)")
}
