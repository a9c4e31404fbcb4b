package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/pipeline"
)

var (
	chatCorpus  string
	chatTimeout time.Duration
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about a corpus",
	Long: `Chat answers questions strictly from the corpus. Large corpora are
condensed and only the first records are sent (analysis.max_context_items).

Without a question an interactive session starts; earlier turns are sent
along with every new question. An empty line or Ctrl-D ends the session.

Example:
  reqsift chat --corpus corpus.json "Which requirements are security critical?"
  reqsift chat --corpus corpus.json`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatCorpus, "corpus", "corpus.json", "corpus to question")
	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 5*time.Minute, "timeout per question")
}

func runChat(cmd *cobra.Command, args []string) error {
	setup, cancelSetup := commandContext(0)
	defer cancelSetup()

	p, err := openCorpus(setup, chatCorpus)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return ask(p, strings.Join(args, " "))
	}

	greeting := fmt.Sprintf("Hello! Ask me anything about the %d requirements in %s.", p.Workspace().Len(), chatCorpus)
	p.Workspace().AppendChat(model.ChatTurn{Role: model.RoleModel, Text: greeting})
	fmt.Fprintln(os.Stderr, greeting)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}
		if err := ask(p, question); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			if hint := Hint(err); hint != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", hint)
			}
		}
	}
	return scanner.Err()
}

func ask(p *pipeline.Pipeline, question string) error {
	ctx, cancel := commandContext(chatTimeout)
	defer cancel()

	answer, err := p.Chat(ctx, question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	fmt.Println()
	return nil
}

// openCorpus builds the pipeline and installs the corpus stored at path
func openCorpus(ctx context.Context, path string) (*pipeline.Pipeline, error) {
	p, cfg, err := newPipeline(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := pipeline.LoadCorpus(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	p.Install(reqs)
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d requirements from %s\n", len(reqs), path)
	}
	return p, nil
}
