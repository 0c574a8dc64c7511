package hashagg

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// workerPool is a fixed set of goroutines that runs one task per partition.
// A run's tasks may block on each other (the plat barrier), so the pool is
// sized to the partition count and never queues a task behind a waiter.
type workerPool struct {
	pool   *ants.Pool
	size   int
	logger *zap.Logger
}

func newWorkerPool(size int, logger *zap.Logger) (*workerPool, error) {
	p, err := ants.NewPool(size, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("hashagg: create worker pool: %w", err)
	}
	return &workerPool{pool: p, size: size, logger: logger}, nil
}

// run executes fn(0..n-1) on the pool and waits for all of them. A panic in
// fn is recovered and reported as ErrWorkerPanic; the first failure wins.
func (w *workerPool) run(n int, fn func(part int)) error {
	return w.runParties(n, fn, nil)
}

// runBarrier is run for tasks that meet b with n parties. A task that could
// not be submitted still meets b, so the submitted ones are released.
func (w *workerPool) runBarrier(n int, b *rally, fn func(part int)) error {
	return w.runParties(n, fn, func(int) { b.meet(n) })
}

func (w *workerPool) runParties(n int, fn func(part int), skipped func(part int)) error {
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		missed   []int
	)
	fail := func(err error) {
		once.Do(func() { firstErr = err })
	}

	wg.Add(n)
	for part := range n {
		task := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("worker panicked",
						zap.Int("partition", part),
						zap.Any("panic", r))
					fail(fmt.Errorf("%w: partition %d: %v", ErrWorkerPanic, part, r))
				}
			}()
			fn(part)
		}
		if err := w.pool.Submit(task); err != nil {
			fail(fmt.Errorf("hashagg: submit partition %d: %w", part, err))
			missed = append(missed, part)
		}
	}
	// Stand-ins block like the tasks they replace, so they get their own
	// goroutines and start only after every submission was attempted.
	for _, part := range missed {
		if skipped == nil {
			wg.Done()
			continue
		}
		go func() {
			defer wg.Done()
			skipped(part)
		}()
	}
	wg.Wait()
	return firstErr
}

func (w *workerPool) release() {
	w.pool.Release()
}
