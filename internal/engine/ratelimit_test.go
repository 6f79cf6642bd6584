package engine

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRateLimiterMinDelay(t *testing.T) {
	rl := NewRateLimiter(50*time.Millisecond, 100)
	ctx := context.Background()

	if err := rl.Wait(ctx, "edge"); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	if err := rl.Wait(ctx, "edge"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second call waited only %v, want ~50ms", elapsed)
	}
}

func TestRateLimiterWindowCeilingBlocksNotDrops(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond, 3)
	rl.window = 200 * time.Millisecond
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx, "edge"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	// The 4th call within the window must suspend until the window
	// resets, never fail.
	start := time.Now()
	if err := rl.Wait(ctx, "edge"); err != nil {
		t.Fatalf("over-ceiling call failed instead of waiting: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("over-ceiling call waited only %v, want until window reset", elapsed)
	}
}

func TestRateLimiterPathsIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond, 1)
	rl.window = time.Minute
	ctx := context.Background()

	if err := rl.Wait(ctx, "edge"); err != nil {
		t.Fatal(err)
	}
	// A different path has its own window and must not block.
	done := make(chan struct{})
	go func() {
		rl.Wait(ctx, "overlay")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("independent path blocked on another path's window")
	}
}

func TestRateLimiterCancellation(t *testing.T) {
	rl := NewRateLimiter(time.Millisecond, 1)
	rl.window = time.Minute
	ctx, cancel := context.WithCancel(context.Background())

	if err := rl.Wait(ctx, "edge"); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := rl.Wait(ctx, "edge"); err == nil {
		t.Fatal("expected context error while suspended on full window")
	}
}

func TestRateLimiterConcurrentCallersSerialize(t *testing.T) {
	rl := NewRateLimiter(10*time.Millisecond, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rl.Wait(ctx, "edge")
		}()
	}
	wg.Wait()
	// 4 calls with a 10ms floor: at least ~30ms total.
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("concurrent callers finished in %v, min delay not serialized", elapsed)
	}
}
