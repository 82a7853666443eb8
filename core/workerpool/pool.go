package workerpool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Pool is a bounded worker pool for long-running jobs (snapshot sync,
// backups, search rebuilds). It exists so a slow job can never stall the
// request-serving goroutines: callers hand work off and return immediately.
type Pool struct {
	sem    *semaphore.Weighted
	logger *zap.Logger
	wg     sync.WaitGroup
}

// New creates a pool allowing at most size concurrent jobs.
func New(size int64, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:    semaphore.NewWeighted(size),
		logger: logger,
	}
}

// Submit schedules fn on the pool. It blocks only while waiting for a free
// worker slot (bounded by ctx); the job itself runs asynchronously. Job
// errors are logged, not returned; jobs are fire-and-forget.
func (p *Pool) Submit(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)

		start := time.Now()
		if err := fn(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn("Job failed",
				zap.String("job", name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}
		p.logger.Debug("Job finished",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)))
	}()

	return nil
}

// Wait blocks until all submitted jobs have finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
