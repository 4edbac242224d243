package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_Unlimited(t *testing.T) {
	limiter := New(0, 0)
	if !limiter.Unlimited() {
		t.Fatal("zero rate should disable limiting")
	}
	for i := range 10_000 {
		if !limiter.Allow() {
			t.Fatalf("request %d rejected by an unlimited limiter", i)
		}
	}
}

func TestAllow_Burst(t *testing.T) {
	limiter := New(10, 5)
	if limiter.Unlimited() {
		t.Fatal("limiter should be limited")
	}

	for i := range 5 {
		if !limiter.Allow() {
			t.Fatalf("request %d should be allowed within the burst", i)
		}
	}
	if limiter.Allow() {
		t.Fatal("request should be rejected once the burst is spent")
	}

	// one token refills every 100ms at 10 req/s
	time.Sleep(110 * time.Millisecond)
	if !limiter.Allow() {
		t.Fatal("request should be allowed after refill")
	}
}

func TestNew_DefaultBurst(t *testing.T) {
	limiter := New(3, 0)
	for i := range 3 {
		if !limiter.Allow() {
			t.Fatalf("request %d should be allowed, burst defaults to the rate", i)
		}
	}
	if limiter.Allow() {
		t.Fatal("fourth request should be rejected")
	}
}

func TestWait(t *testing.T) {
	limiter := New(10, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first request should not wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second request should succeed after waiting: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("second request returned after %v, expected about 100ms", elapsed)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	limiter := New(1, 1)
	if !limiter.Allow() {
		t.Fatal("first request should be allowed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	if err == nil {
		t.Fatal("Wait should fail on a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in the chain, got %v", err)
	}
}
