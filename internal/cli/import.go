package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reqsift/internal/importer"
	"github.com/ppiankov/reqsift/internal/pipeline"
	"github.com/ppiankov/reqsift/internal/worker"
)

var (
	importFiles     []string
	importFilesFrom string
	importOut       string
	importCSV       string
	importTimeout   time.Duration
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file|url|-]",
	Short: "Import requirements from text, a file, a URL or several JSON/CSV files",
	Long: `Import turns an input into a normalized requirement corpus:
- JSON that already looks like requirements is used directly (no model call)
- several JSON arrays pasted back to back are repaired and joined
- anything else (free text, Markdown, HTML) is split into chunks and sent
  to the configured model for extraction

Ids are made unique (R-1, R-1_1, ...), missing fields get defaults and a
gap in a numbered id sequence is reported.

Example:
  reqsift import srs.txt --provider DEMO --out corpus.json
  pbpaste | reqsift import - --out corpus.yaml
  reqsift import https://example.com/requirements.html --csv out.csv
  reqsift import --files a.json,b.json,c.csv --out corpus.json
  reqsift import --files-from sources.txt --out corpus.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringSliceVar(&importFiles, "files", nil, "structured JSON/CSV files to combine (comma separated)")
	importCmd.Flags().StringVar(&importFilesFrom, "files-from", "", "read file paths from a list file (one per line, # comments)")
	importCmd.Flags().StringVarP(&importOut, "out", "o", "corpus.json", "output corpus path (.json, .yaml or .csv)")
	importCmd.Flags().StringVar(&importCSV, "csv", "", "also export the corpus as CSV")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 30*time.Minute, "overall import timeout")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(importTimeout)
	defer cancel()

	p, _, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	paths := importFiles
	if importFilesFrom != "" {
		listed, err := worker.ReadListFile(importFilesFrom)
		if err != nil {
			return err
		}
		paths = append(paths, listed...)
	}

	var result *importer.Result
	switch {
	case len(paths) > 0:
		if len(args) > 0 {
			return fmt.Errorf("use either a source argument or --files, not both")
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Loading %d files...\n", len(paths))
		}
		result, err = p.ImportFiles(ctx, paths)

	case len(args) == 0 || args[0] == "-":
		data, rerr := io.ReadAll(cmd.InOrStdin())
		if rerr != nil {
			return fmt.Errorf("read stdin: %w", rerr)
		}
		result, err = p.ImportText(ctx, string(data))

	default:
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Importing %s...\n", args[0])
		}
		result, err = p.ImportSource(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	reqs := p.Workspace().Corpus()
	if err := pipeline.SaveCorpus(importOut, reqs); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote corpus: %s\n", importOut)

	if importCSV != "" {
		if err := writeCSV(importCSV, reqs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s\n", importCSV)
	}

	pipeline.RenderImport(os.Stderr, result, p.Workspace().Breakdown())
	return nil
}
