package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete runtime configuration
type Config struct {
	// Provider is the packed provider string: DEMO, CUSTOM_LLM::<baseUrl>::<model> or a cloud API key
	Provider string `yaml:"provider" mapstructure:"provider"`

	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Import       ImportConfig       `yaml:"import" mapstructure:"import"`
	Analysis     AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// LLMConfig controls model calls
type LLMConfig struct {
	CascadeModels []string      `yaml:"cascade_models" mapstructure:"cascade_models" validate:"min=1,dive,required"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	JSONMode      bool          `yaml:"json_mode" mapstructure:"json_mode"`
	DemoDelay     time.Duration `yaml:"demo_delay" mapstructure:"demo_delay" validate:"gte=0"`
}

// ImportConfig controls the import pipeline
type ImportConfig struct {
	ChunkSize          int     `yaml:"chunk_size" mapstructure:"chunk_size" validate:"gt=0"`
	NumericMajority    float64 `yaml:"numeric_majority" mapstructure:"numeric_majority" validate:"gte=0,lte=1"`
	DuplicateSeparator string  `yaml:"duplicate_separator" mapstructure:"duplicate_separator" validate:"required"`
	FileWorkers        int     `yaml:"file_workers" mapstructure:"file_workers" validate:"gte=0"`
}

// AnalysisConfig bounds how much of the corpus is sent to chat and summary calls
type AnalysisConfig struct {
	MaxContextItems int `yaml:"max_context_items" mapstructure:"max_context_items" validate:"gt=0"`
	MaxChatText     int `yaml:"max_chat_text" mapstructure:"max_chat_text" validate:"gt=0"`
	MaxSummaryText  int `yaml:"max_summary_text" mapstructure:"max_summary_text" validate:"gt=0"`
}

// CacheConfig controls the in-memory model response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
}

// RateLimitingConfig paces requests per model; zero disables pacing
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"`
}

// HTTPConfig controls outbound requests: model calls and remote document fetches
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gte=0"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Debug bool   `yaml:"debug" mapstructure:"debug"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// DefaultCascadeModels is the cloud fallback order, strongest first
var DefaultCascadeModels = []string{
	"gemini-3-pro-preview",
	"gemini-3-flash-preview",
	"gemini-2.0-flash",
	"gemma-2-27b-it",
	"gemma-2-9b-it",
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			CascadeModels: append([]string(nil), DefaultCascadeModels...),
			Timeout:       2 * time.Minute,
			JSONMode:      true,
			DemoDelay:     2 * time.Second,
		},
		Import: ImportConfig{
			ChunkSize:          25000,
			NumericMajority:    0.5,
			DuplicateSeparator: "_",
			FileWorkers:        4,
		},
		Analysis: AnalysisConfig{
			MaxContextItems: 600,
			MaxChatText:     800,
			MaxSummaryText:  300,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "reqsift/0.1 (+https://github.com/ppiankov/reqsift)",
			MaxBodyBytes: 10_000_000,
		},
	}
}

var configValidator = validator.New()

// Validate checks the configuration ranges
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
