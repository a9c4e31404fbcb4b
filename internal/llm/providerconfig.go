package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind discriminates the provider variants
type Kind string

const (
	KindCloud Kind = "cloud"
	KindLocal Kind = "local"
	KindDemo  Kind = "demo"
)

const (
	// DemoKey selects the offline demo provider
	DemoKey = "DEMO"

	// LocalPrefix starts a packed local endpoint string: CUSTOM_LLM::<baseUrl>::<model>
	LocalPrefix = "CUSTOM_LLM::"

	localSep = "::"
)

// ProviderConfig is the typed form of a provider configuration string
type ProviderConfig struct {
	Kind    Kind   `validate:"required,oneof=cloud local demo"`
	APIKey  string `validate:"required_if=Kind cloud"`
	BaseURL string `validate:"required_if=Kind local"`
	Model   string `validate:"required_if=Kind local"`
}

var providerValidator = validator.New()

// ParseProviderConfig resolves an opaque configuration string. The credential
// of a cloud provider is not checked here; a bad key surfaces on first call.
func ParseProviderConfig(s string) (ProviderConfig, error) {
	s = strings.TrimSpace(s)

	var pc ProviderConfig
	switch {
	case s == "":
		return ProviderConfig{}, fmt.Errorf("%w: no provider configured", ErrConfig)
	case s == DemoKey:
		pc = ProviderConfig{Kind: KindDemo}
	case strings.HasPrefix(s, LocalPrefix):
		// fields past the model name are ignored
		parts := strings.Split(strings.TrimPrefix(s, LocalPrefix), localSep)
		pc = ProviderConfig{Kind: KindLocal, BaseURL: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			pc.Model = strings.TrimSpace(parts[1])
		}
	default:
		pc = ProviderConfig{Kind: KindCloud, APIKey: s}
	}

	if err := pc.Validate(); err != nil {
		return ProviderConfig{}, err
	}
	return pc, nil
}

// Validate checks that the fields required by Kind are present
func (p ProviderConfig) Validate() error {
	err := providerValidator.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
		return fmt.Errorf("%w: %s provider: missing or invalid %s", ErrConfig, p.Kind, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: %v", ErrConfig, err)
}

// String describes the provider without revealing the credential
func (p ProviderConfig) String() string {
	switch p.Kind {
	case KindDemo:
		return "demo"
	case KindLocal:
		return fmt.Sprintf("local %s @ %s", p.Model, p.BaseURL)
	default:
		return "cloud key " + redact(p.APIKey)
	}
}

func redact(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
