package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("10.0.0.1") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	if !rl.Allow("a") {
		t.Fatal("first request for a should pass")
	}
	if rl.Allow("a") {
		t.Error("second request for a should be limited")
	}
	if !rl.Allow("b") {
		t.Error("first request for b should pass")
	}
	if got := rl.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestKeyedRateLimiter_SweepEvictsIdleKeys(t *testing.T) {
	rl := NewWithTTL(1, 1, time.Hour)
	defer rl.Stop()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.Allow("old")
	clock = clock.Add(45 * time.Minute)
	rl.Allow("fresh")
	clock = clock.Add(30 * time.Minute)

	rl.sweep()

	if got := rl.Len(); got != 1 {
		t.Fatalf("Len() after sweep = %d, want 1", got)
	}
	rl.mu.Lock()
	_, ok := rl.buckets["fresh"]
	rl.mu.Unlock()
	if !ok {
		t.Error("fresh key should survive the sweep")
	}
}

func TestKeyedRateLimiter_Concurrent(t *testing.T) {
	rl := New(1, 10)
	defer rl.Stop()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		passed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") {
				mu.Lock()
				passed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if passed > 10 {
		t.Errorf("passed %d requests, burst is 10", passed)
	}
}

func TestKeyedRateLimiter_StopIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	if err := rl.Shutdown(); err != nil {
		t.Errorf("Shutdown after Stop: %v", err)
	}
}
