// Package fetch provides a bounded-concurrency batch runner for fan-out to
// rate-limited upstreams. It is a fixed-size gate with an inter-batch pause,
// not a general rate limiter: no retries, no backoff.
package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultConcurrency is the batch fan-out cap for third-party fetches.
const DefaultConcurrency = 5

// DefaultPause is the delay between consecutive batches.
const DefaultPause = 200 * time.Millisecond

// Batched runs fn over items in batches of at most size concurrent calls,
// pausing between batches. Item failures are fn's business; Batched never
// aborts a batch. Cancellation is checked only between batches, so in-flight
// fetches always run to completion and can populate caches.
func Batched[T any](ctx context.Context, items []T, size int, pause time.Duration, fn func(item T)) error {
	if size <= 0 {
		size = DefaultConcurrency
	}

	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		if start > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}

		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			wg.Add(1)
			go func(it T) {
				defer wg.Done()
				fn(it)
			}(item)
		}
		wg.Wait()
	}
	return nil
}
