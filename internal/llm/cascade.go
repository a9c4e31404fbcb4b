package llm

import (
	"context"
	"errors"

	"github.com/ppiankov/reqsift/internal/logger"
	"github.com/ppiankov/reqsift/internal/worker"
)

// CallFunc performs one request against a single model
type CallFunc func(ctx context.Context, model string) (string, error)

// Cascade tries candidate models in order, moving on only after a transient failure
type Cascade struct {
	models  []string
	limiter *worker.Limiter
}

// NewCascade creates a cascade over models. limiter may be nil.
func NewCascade(models []string, limiter *worker.Limiter) *Cascade {
	return &Cascade{
		models:  append([]string(nil), models...),
		limiter: limiter,
	}
}

// Models returns the candidate list in cascade order
func (c *Cascade) Models() []string {
	return append([]string(nil), c.models...)
}

// Run invokes fn for each candidate until one succeeds. A non-transient error
// aborts immediately; when every candidate fails transiently the result is an
// *ExhaustedError carrying the last failure.
func (c *Cascade) Run(ctx context.Context, operation string, fn CallFunc) (text, model string, err error) {
	if len(c.models) == 0 {
		return "", "", &ExhaustedError{Operation: operation, Last: errors.New("no candidate models configured")}
	}

	var lastErr error
	for _, m := range c.models {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, m); err != nil {
				return "", "", err
			}
		}

		text, err := fn(ctx, m)
		if err == nil {
			return text, m, nil
		}

		if !IsTransient(err) {
			return "", m, err
		}

		logger.Warn("model unavailable, switching to next candidate",
			"operation", operation,
			"model", m,
			"error", err)
		lastErr = err
	}

	return "", "", &ExhaustedError{
		Operation: operation,
		Models:    c.Models(),
		Last:      lastErr,
	}
}

// Caller sends one request to a named model
type Caller interface {
	Name() string
	Call(ctx context.Context, model string, req Request) (string, error)
}

// CascadeClient is a Client that runs every request through a Cascade
type CascadeClient struct {
	caller  Caller
	cascade *Cascade
}

// NewCascadeClient creates a cascading client
func NewCascadeClient(caller Caller, cascade *Cascade) *CascadeClient {
	return &CascadeClient{caller: caller, cascade: cascade}
}

// Name returns the provider name
func (c *CascadeClient) Name() string {
	return c.caller.Name()
}

// Complete runs req through the cascade
func (c *CascadeClient) Complete(ctx context.Context, req Request) (*Response, error) {
	text, model, err := c.cascade.Run(ctx, string(req.Task), func(ctx context.Context, model string) (string, error) {
		return c.caller.Call(ctx, model, req)
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:     text,
		Model:    model,
		Provider: c.caller.Name(),
	}, nil
}
