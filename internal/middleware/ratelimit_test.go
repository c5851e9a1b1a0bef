package middleware

import (
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 1.0,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("request beyond burst was allowed")
	}
}

func TestClientsLimitedIndependently(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 1.0,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	if !rl.Allow("client-a") {
		t.Fatal("first request for client-a denied")
	}
	if rl.Allow("client-a") {
		t.Error("second request for client-a allowed")
	}
	if !rl.Allow("client-b") {
		t.Error("client-b should not share client-a's limiter")
	}
}
