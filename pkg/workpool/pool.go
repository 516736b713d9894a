// Package workpool runs independent I/O-bound tasks with bounded parallelism
// and joins them before returning.
package workpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Config configures a Pool.
type Config struct {
	MaxConcurrent int // Maximum tasks in flight (default: 8)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 8,
	}
}

// Pool limits how many tasks run at once. A Pool carries no per-run state
// and may be shared by concurrent callers.
type Pool struct {
	config Config
	logger *zap.Logger
}

// New creates a pool.
func New(config Config, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	return &Pool{
		config: config,
		logger: logger.Named("workpool"),
	}
}

// MaxConcurrent returns the effective concurrency limit.
func (p *Pool) MaxConcurrent() int {
	return p.config.MaxConcurrent
}

// Item is a unit of work.
type Item[T any] struct {
	ID      string                               // For logging/tracking
	Execute func(ctx context.Context) (T, error) // The work to be executed
}

// Result is the outcome of one Item. Index is the item's position in the
// submitted slice.
type Result[T any] struct {
	Index  int
	ID     string
	Result T
	Err    error
}

// Process executes all items and waits for every one of them.
// Results are returned in submission order. A failing item does not stop
// the others; a cancelled context fails the items still waiting for a slot.
func Process[T any](ctx context.Context, pool *Pool, items []Item[T]) []Result[T] {
	if len(items) == 0 {
		return nil
	}

	results := make([]Result[T], len(items))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item Item[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result[T]{Index: i, ID: item.ID, Err: ctx.Err()}
				return
			}

			r, err := item.Execute(ctx)
			if err != nil {
				pool.logger.Debug("Work item failed",
					zap.String("id", item.ID),
					zap.Error(err))
			}
			results[i] = Result[T]{Index: i, ID: item.ID, Result: r, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}
