package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/reqsift/internal/cache"
	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/worker"
)

// NewClient creates the client for a resolved provider configuration
func NewClient(ctx context.Context, pc ProviderConfig, cfg *model.Config) (Client, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	var client Client
	switch pc.Kind {
	case KindDemo:
		return NewDemoClient(cfg.LLM.DemoDelay), nil

	case KindLocal:
		local, err := NewLocalClient(pc.BaseURL, pc.Model, LocalOptions{
			Timeout:    cfg.LLM.Timeout,
			PlainText:  !cfg.LLM.JSONMode,
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
		})
		if err != nil {
			return nil, err
		}
		client = local

	case KindCloud:
		caller, err := NewGeminiCaller(ctx, pc.APIKey, GeminiOptions{
			Timeout:    cfg.LLM.Timeout,
			PlainText:  !cfg.LLM.JSONMode,
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
		})
		if err != nil {
			return nil, err
		}
		limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		client = NewCascadeClient(caller, NewCascade(cfg.LLM.CascadeModels, limiter))

	default:
		return nil, fmt.Errorf("%w: unknown provider kind %q", ErrConfig, pc.Kind)
	}

	if cfg.Cache.Enabled {
		scope := string(pc.Kind) + "|" + pc.BaseURL + "|" + pc.Model
		client = NewCachedClient(client, cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL), cfg.Cache.TTL, scope)
	}
	return client, nil
}
