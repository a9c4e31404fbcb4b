package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reqsift/internal/importer"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/pipeline"
)

var (
	exportCorpus string
	exportCSV    string
	exportOut    string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a corpus as CSV, JSON or YAML",
	Long: `Export writes a saved corpus in another format. CSV output carries a
UTF-8 byte order mark so spreadsheet tools keep umlauts intact.

Example:
  reqsift export --corpus corpus.json --csv requirements.csv
  reqsift export --corpus corpus.json --out corpus.yaml`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportCorpus, "corpus", "corpus.json", "corpus to export")
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "CSV output path")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path; the extension selects JSON, YAML or CSV")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportCSV == "" && exportOut == "" {
		return fmt.Errorf("nothing to do: set --csv or --out")
	}

	ctx, cancel := commandContext(0)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reqs, err := pipeline.LoadCorpus(ctx, exportCorpus, cfg)
	if err != nil {
		return err
	}

	if exportCSV != "" {
		if err := writeCSV(exportCSV, reqs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s (%d records)\n", exportCSV, len(reqs))
	}
	if exportOut != "" {
		if err := pipeline.SaveCorpus(exportOut, reqs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote corpus: %s (%d records)\n", exportOut, len(reqs))
	}
	return nil
}

// writeCSV writes reqs as CSV regardless of the path's extension
func writeCSV(path string, reqs []model.Requirement) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return importer.WriteCSV(f, reqs)
}
