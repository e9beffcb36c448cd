package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNoOpRateLimiter(t *testing.T) {
	limiter := &NoOpRateLimiter{}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, "any-key")
		if err != nil {
			t.Errorf("Allow() error = %v, want nil", err)
		}
		if !allowed {
			t.Error("Allow() = false, want true")
		}
	}

	if err := limiter.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestNewRedisRateLimiter_InvalidURL(t *testing.T) {
	_, err := NewRedisRateLimiter("not-a-redis-url", 100, time.Minute)
	if err == nil {
		t.Error("NewRedisRateLimiter() with invalid URL should return error")
	}
}

func TestRedisRateLimiter_AllowsUnderLimit(t *testing.T) {
	mr := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), 3, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "203.0.113.5")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
	}
}

func TestRedisRateLimiter_BlocksOverLimit(t *testing.T) {
	mr := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), 2, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if allowed, _ := limiter.Allow(ctx, "203.0.113.5"); !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "203.0.113.5")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Error("request over the limit should be blocked")
	}
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), 1, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	if allowed, _ := limiter.Allow(ctx, "203.0.113.5"); !allowed {
		t.Fatal("first source should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "203.0.113.5"); allowed {
		t.Error("first source should now be blocked")
	}
	if allowed, _ := limiter.Allow(ctx, "198.51.100.9"); !allowed {
		t.Error("a different source should still be allowed")
	}
}
