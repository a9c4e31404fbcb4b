package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/reqsift/internal/model"
)

func TestNewClient(t *testing.T) {
	cfg := model.DefaultConfig()
	ctx := context.Background()

	demo, err := NewClient(ctx, ProviderConfig{Kind: KindDemo}, cfg)
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if _, ok := demo.(*DemoClient); !ok {
		t.Errorf("expected *DemoClient, got %T", demo)
	}

	local, err := NewClient(ctx, ProviderConfig{Kind: KindLocal, BaseURL: "http://localhost:11434/v1", Model: "llama3"}, cfg)
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, ok := local.(*CachedClient); !ok {
		t.Errorf("expected cached local client, got %T", local)
	}

	cfg.Cache.Enabled = false
	cloud, err := NewClient(ctx, ProviderConfig{Kind: KindCloud, APIKey: "key"}, cfg)
	if err != nil {
		t.Fatalf("cloud: %v", err)
	}
	if _, ok := cloud.(*CascadeClient); !ok {
		t.Errorf("expected *CascadeClient, got %T", cloud)
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(context.Background(), ProviderConfig{Kind: KindLocal, BaseURL: "http://x"}, nil)
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
