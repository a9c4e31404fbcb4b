package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ppiankov/reqsift/internal/cache"
	"github.com/ppiankov/reqsift/internal/logger"
)

// CachedClient memoizes successful responses of the wrapped client
type CachedClient struct {
	next  Client
	cache cache.Cache
	ttl   time.Duration
	scope string
}

// NewCachedClient wraps next with a response cache. scope separates entries
// of different endpoints sharing one cache.
func NewCachedClient(next Client, c cache.Cache, ttl time.Duration, scope string) *CachedClient {
	return &CachedClient{next: next, cache: c, ttl: ttl, scope: scope}
}

// Name returns the wrapped provider name
func (c *CachedClient) Name() string {
	return c.next.Name()
}

type cachedResponse struct {
	Text     string `json:"text"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

// Complete serves req from the cache or forwards it
func (c *CachedClient) Complete(ctx context.Context, req Request) (*Response, error) {
	key := requestKey(c.scope, req)

	if data, ok := c.cache.Get(key); ok {
		var cr cachedResponse
		if err := json.Unmarshal(data, &cr); err == nil {
			logger.Debug("model response served from cache", "task", req.Task, "model", cr.Model)
			return &Response{Text: cr.Text, Model: cr.Model, Provider: cr.Provider, Cached: true}, nil
		}
		_ = c.cache.Delete(key)
	}

	resp, err := c.next.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedResponse{Text: resp.Text, Model: resp.Model, Provider: resp.Provider})
	if err == nil {
		_ = c.cache.Set(key, data, c.ttl)
	}
	return resp, nil
}

func requestKey(scope string, req Request) string {
	parts := []string{scope, string(req.Task), strconv.FormatBool(req.JSON), req.System, req.User}
	for _, turn := range req.History {
		parts = append(parts, string(turn.Role), turn.Text)
	}
	return cache.CacheKey(parts...)
}
