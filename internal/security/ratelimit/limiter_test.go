package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	l := NewLimiter(nil, 5, time.Minute, nil)
	defer l.Stop()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if !l.Allow(ctx, "client-a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "client-a") {
		t.Fatal("request over the limit should be denied")
	}
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := NewLimiter(nil, 1, time.Minute, nil)
	defer l.Stop()

	ctx := context.Background()
	if !l.Allow(ctx, "client-a") {
		t.Fatal("first request for client-a should be allowed")
	}
	if !l.Allow(ctx, "client-b") {
		t.Fatal("client-b must have its own bucket")
	}
	if l.Allow(ctx, "client-a") {
		t.Fatal("client-a is over its limit")
	}
}

func TestLimiterAllowsAnonymous(t *testing.T) {
	l := NewLimiter(nil, 1, time.Minute, nil)
	defer l.Stop()

	// Unidentifiable clients are never throttled
	for i := 0; i < 10; i++ {
		if !l.Allow(context.Background(), "") {
			t.Fatal("empty client id must always be allowed")
		}
	}
}
