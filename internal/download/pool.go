package download

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/semaphore"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

// Worker pool limits
const (
	DefaultMaxParallel = 2
	MinParallel        = 1
	MaxParallel        = 10
)

// Pool runs fetches on worker goroutines, at most size at a time. Callers
// block until their own fetch completes.
type Pool struct {
	fetcher Fetcher
	sem     *semaphore.Weighted
	size    int
	logger  *slog.Logger
}

// NewPool creates a worker pool. size is clamped to [MinParallel, MaxParallel].
func NewPool(fetcher Fetcher, size int, logger *slog.Logger) *Pool {
	if size < MinParallel {
		size = MinParallel
	}
	if size > MaxParallel {
		size = MaxParallel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		fetcher: fetcher,
		sem:     semaphore.NewWeighted(int64(size)),
		size:    size,
		logger:  logger.With("component", "pool"),
	}
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

type outcome struct {
	result *model.Result
	err    error
}

// Fetch waits for a free worker and runs req on it
func (p *Pool) Fetch(ctx context.Context, req model.Request) (*model.Result, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a download worker: %w", err)
	}

	done := make(chan outcome, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("fetch worker panicked", "request_id", req.ID, "panic", r, "stack", string(debug.Stack()))
				done <- outcome{err: fmt.Errorf("fetch worker panicked: %v", r)}
			}
		}()

		result, err := p.fetcher.Fetch(ctx, req)
		done <- outcome{result: result, err: err}
	}()

	out := <-done
	return out.result, out.err
}
