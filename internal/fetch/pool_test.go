package fetch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatched_ProcessesAll(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	var sum atomic.Int64

	err := Batched(context.Background(), items, 3, 0, func(n int) {
		sum.Add(int64(n))
	})
	if err != nil {
		t.Fatalf("Batched: %v", err)
	}
	if sum.Load() != 28 {
		t.Errorf("expected sum 28, got %d", sum.Load())
	}
}

func TestBatched_ObservesConcurrencyCap(t *testing.T) {
	const limit = 5
	items := make([]int, 23)

	var mu sync.Mutex
	current, peak := 0, 0

	err := Batched(context.Background(), items, limit, 0, func(int) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Batched: %v", err)
	}
	if peak > limit {
		t.Errorf("concurrency peaked at %d, cap is %d", peak, limit)
	}
}

func TestBatched_CancelledBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := make([]int, 10)
	var processed atomic.Int64

	err := Batched(ctx, items, 5, time.Millisecond, func(int) {
		processed.Add(1)
		cancel() // cancel during the first batch
	})
	if err == nil {
		t.Fatal("expected context error")
	}
	// The first batch runs to completion; the second never starts.
	if processed.Load() != 5 {
		t.Errorf("expected exactly the first batch (5) processed, got %d", processed.Load())
	}
}

func TestBatched_EmptyInput(t *testing.T) {
	called := false
	err := Batched(context.Background(), nil, 5, 0, func(struct{}) {
		called = true
	})
	if err != nil {
		t.Fatalf("Batched: %v", err)
	}
	if called {
		t.Error("fn must not run on empty input")
	}
}
