package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterEnforcesLimit(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	window := time.Minute
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if remaining != max-(i+1) {
			t.Fatalf("unexpected remaining: %d", remaining)
		}
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("expected third request to be rejected")
	}
	if remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", remaining)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	allowed, _, _, _ := limiter.Allow(ctx, "a", time.Minute, 1)
	if !allowed {
		t.Fatal("expected first request for key a to be allowed")
	}
	allowed, _, _, _ = limiter.Allow(ctx, "b", time.Minute, 1)
	if !allowed {
		t.Fatal("expected first request for key b to be allowed")
	}
	allowed, _, _, _ = limiter.Allow(ctx, "a", time.Minute, 1)
	if allowed {
		t.Fatal("expected second request for key a to be rejected")
	}
}

func TestMemoryLimiterDisabledThresholds(t *testing.T) {
	limiter := NewMemoryLimiter()
	allowed, _, _, err := limiter.Allow(context.Background(), "key", 0, 0)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !allowed {
		t.Fatal("expected zero thresholds to disable limiting")
	}
}
