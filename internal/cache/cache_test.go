package cache

import (
	"context"
	"testing"
	"time"
)

// The cache must be safe to use when Redis is not configured: every
// operation becomes a no-op miss.
func TestCache_NilClient(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	if c.Enabled() {
		t.Error("Cache around nil client should report disabled")
	}

	var dest []string
	if c.GetJSON(ctx, "groups:list", &dest) {
		t.Error("GetJSON on disabled cache should miss")
	}

	// Must not panic.
	c.SetJSON(ctx, "groups:list", []string{"a"}, time.Minute)
	c.Delete(ctx, "groups:list")
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	if client := NewRedisClient(""); client != nil {
		t.Error("Empty address should disable the cache")
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	// Reserved TEST-NET address, nothing listens there.
	if client := NewRedisClient("192.0.2.1:6379"); client != nil {
		t.Error("Unreachable server should disable the cache")
	}
}
