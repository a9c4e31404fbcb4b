package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := CacheKey("extract", "system", "user text")
	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set(key, []byte("[]"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != "[]" {
		t.Errorf("expected hit with [], got %q (hit=%v)", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}

	_ = c.Delete(key)
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after Delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d items", c.Len())
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("chat", "sys", "hello")
	if a != CacheKey("chat", "sys", "hello") {
		t.Error("expected stable key")
	}
	if a == CacheKey("chat", "sysh", "ello") {
		t.Error("part boundaries must affect the key")
	}
	if len(a) != len("reqsift:v1:")+64 {
		t.Errorf("unexpected key length %d", len(a))
	}
}
