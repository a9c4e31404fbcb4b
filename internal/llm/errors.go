package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrConfig reports a malformed provider configuration string
	ErrConfig = errors.New("invalid provider configuration")

	// ErrAllModelsExhausted reports that every cascade candidate failed transiently
	ErrAllModelsExhausted = errors.New("all models exhausted")

	// ErrEmptyResponse reports a call that succeeded without any text
	ErrEmptyResponse = errors.New("empty response from model")
)

// ProviderError is a failed call to one model. Transient is set by the call
// layer when the failure is quota exhaustion, rate limiting or overload.
type ProviderError struct {
	Provider   string
	Model      string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.Model != "" {
		b.WriteString(" model ")
		b.WriteString(e.Model)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err carries a transient provider classification
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

// transientStatus classifies HTTP status codes: 429 and 503 are transient
func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// ExhaustedError is returned when every candidate in a cascade failed transiently
type ExhaustedError struct {
	Operation string
	Models    []string
	Last      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d models failed for %s: last error: %v", len(e.Models), e.Operation, e.Last)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllModelsExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
