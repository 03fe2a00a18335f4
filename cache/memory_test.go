package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Hour)

	if err := c.Set(ctx, "key1", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get(ctx, "key1")
	if !ok {
		t.Error("Get should return true for existing key")
	}
	if val != "value1" {
		t.Errorf("Get returned %q, want %q", val, "value1")
	}

	// Test missing key
	val, ok = c.Get(ctx, "nonexistent")
	if ok {
		t.Error("Get should return false for missing key")
	}
	if val != "" {
		t.Errorf("Get should return empty string for missing key, got %q", val)
	}
}

func TestInMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "key1", "value1")

	if val, ok := c.Get(ctx, "key1"); !ok || val != "value1" {
		t.Error("Value should be available immediately after set")
	}

	now = now.Add(2 * time.Minute)

	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("Value should be expired after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on read, Len = %d", c.Len())
	}
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	now := time.Now()
	c.now = func() time.Time { return now }
	_ = c.Set(ctx, "key1", "value1")
	now = now.Add(24 * 365 * time.Hour)

	if val, ok := c.Get(ctx, "key1"); !ok || val != "value1" {
		t.Error("Value should be available with no TTL")
	}
}

func TestInMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Hour)

	_ = c.Set(ctx, "key1", "value1")
	_ = c.Set(ctx, "key1", "value2")

	val, ok := c.Get(ctx, "key1")
	if !ok || val != "value2" {
		t.Errorf("Get = %q, %v; want value2, true", val, ok)
	}
}

func TestInMemoryCache_LenClear(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	_ = c.Set(ctx, "a", "1")
	_ = c.Set(ctx, "b", "2")
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestInMemoryCache_Entries(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }
	_ = c.Set(ctx, "old", "1")
	now = now.Add(2 * time.Minute)
	_ = c.Set(ctx, "new", "2")

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || entries["new"] != "2" {
		t.Errorf("Entries = %v, want only the unexpired entry", entries)
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", i)
			_ = c.Set(ctx, key, key)
			if val, ok := c.Get(ctx, key); !ok || val != key {
				t.Errorf("Get(%s) = %q, %v", key, val, ok)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 50 {
		t.Errorf("Len = %d, want 50", c.Len())
	}
}
