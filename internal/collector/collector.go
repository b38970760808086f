// Package collector fans independent per-item work out across a bounded
// worker pool and collects the results as explicit per-item outcomes, so
// callers can report partial-failure counts instead of only logging them.
package collector

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of processing one item. Exactly one of Value and Err
// is meaningful.
type Result[K comparable, V any] struct {
	Key   K
	Value V
	Err   error
}

// Collect runs fn for every item on a pool of at most maxWorkers goroutines
// and returns one Result per item, in completion order. A failing item is
// logged and recorded in its Result; it never aborts the siblings, so
// Collect itself cannot fail.
func Collect[T any, K comparable, V any](
	ctx context.Context,
	items []T,
	maxWorkers int,
	logger *logrus.Logger,
	fn func(ctx context.Context, item T) (K, V, error),
) []Result[K, V] {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make(chan Result[K, V], len(items))
	g := &errgroup.Group{}
	g.SetLimit(maxWorkers)

	for _, item := range items {
		item := item
		g.Go(func() error {
			key, value, err := fn(ctx, item)
			if err != nil {
				logger.WithError(err).WithField("key", key).Warn("Item processing failed")
			}
			results <- Result[K, V]{Key: key, Value: value, Err: err}
			return nil
		})
	}
	g.Wait()
	close(results)

	collected := make([]Result[K, V], 0, len(items))
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

// Successes extracts the succeeded results into a map keyed by item key.
func Successes[K comparable, V any](results []Result[K, V]) map[K]V {
	out := make(map[K]V, len(results))
	for _, r := range results {
		if r.Err == nil {
			out[r.Key] = r.Value
		}
	}
	return out
}

// Failures counts the failed results.
func Failures[K comparable, V any](results []Result[K, V]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Chunk splits items into consecutive slices of at most size elements.
// Fanning out chunk by chunk bounds peak memory and in-flight requests when
// the item set is large.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 || len(items) == 0 {
		if len(items) == 0 {
			return nil
		}
		size = len(items)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
