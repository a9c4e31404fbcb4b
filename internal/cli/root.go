package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/reqsift/internal/extract"
	"github.com/ppiankov/reqsift/internal/importer"
	"github.com/ppiankov/reqsift/internal/llm"
	"github.com/ppiankov/reqsift/internal/logger"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/pipeline"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile  string
	verbose  bool
	debug    bool
	quiet    bool
	jsonLogs bool
	provider string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reqsift",
	Short: "reqsift - turn requirement documents into a clean, queryable corpus",
	Long: `reqsift imports requirement catalogs from JSON exports, CSV sheets,
broken concatenated JSON, free text and HTML pages, and turns them into a
normalized corpus with unique ids.

Free text is sent to a language model: a Gemini API key (with automatic
model fallback), a local OpenAI-compatible server
(CUSTOM_LLM::<baseUrl>::<model>) or the offline DEMO provider.

The corpus can then be questioned (chat), summarized for management
(summary), audited for duplicates and vague wording (audit) and exported
to CSV.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of reqsift.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reqsift %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reqsift/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "provider: DEMO, CUSTOM_LLM::<baseUrl>::<model> or a Gemini API key")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json-logs"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".reqsift"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// Read in environment variables that match REQSIFT_* (REQSIFT_LLM_TIMEOUT -> llm.timeout)
	viper.SetEnvPrefix("REQSIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key with viper so env overrides reach nested keys
func setDefaults(cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := prefix + k
			if sub, ok := v.(map[string]any); ok {
				walk(key+".", sub)
				continue
			}
			viper.SetDefault(key, v)
		}
	}
	walk("", tree)
	// omitempty keys are absent from the YAML tree
	for _, key := range []string{"provider", "http.http_proxy", "http.https_proxy", "http.no_proxy", "log.file"} {
		viper.SetDefault(key, "")
	}
}

func initLogging() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return logger.Init(logger.Options{
		Debug: cfg.Log.Debug,
		Quiet: quiet,
		JSON:  cfg.Log.JSON,
		File:  cfg.Log.File,
	})
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveProvider picks the provider string: --provider, REQSIFT_PROVIDER,
// config file, then GEMINI_API_KEY. An empty result means no model access.
func resolveProvider(cfg *model.Config) (llm.ProviderConfig, error) {
	raw := strings.TrimSpace(cfg.Provider)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if raw == "" {
		return llm.ProviderConfig{}, nil
	}
	return llm.ParseProviderConfig(raw)
}

// newPipeline builds the pipeline from the merged configuration
func newPipeline(ctx context.Context) (*pipeline.Pipeline, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	pc, err := resolveProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		if pc == (llm.ProviderConfig{}) {
			fmt.Fprintf(os.Stderr, "Provider: none (structured input only)\n")
		} else {
			fmt.Fprintf(os.Stderr, "Provider: %s\n", pc)
		}
	}

	p, err := pipeline.New(ctx, cfg, pc)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

// commandContext is cancelled on interrupt or after timeout (0 disables it)
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

// Hint returns a short user-facing suggestion for well-known failures
func Hint(err error) string {
	switch {
	case errors.Is(err, llm.ErrConfig):
		return "check the provider string: DEMO, CUSTOM_LLM::<baseUrl>::<model> or a Gemini API key"
	case errors.Is(err, llm.ErrAllModelsExhausted):
		return "every model in the cascade is overloaded or rate limited; try again shortly"
	case errors.Is(err, extract.ErrUnparseableResponse):
		return "the model answered without JSON; retry or use a stronger model"
	case errors.Is(err, importer.ErrNoProvider):
		return "set --provider, REQSIFT_PROVIDER or GEMINI_API_KEY, or use --provider DEMO"
	case errors.Is(err, importer.ErrEmptyImport):
		return "the input contained no requirement objects"
	case errors.Is(err, context.DeadlineExceeded):
		return "the operation timed out; raise --timeout"
	}
	return ""
}
