package hashagg

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Aggregator computes grouped reductions of (key, value) streams with one of
// the Strategy implementations. Every strategy yields the same mapping for
// the same input: the value of a key is the merge of every value inserted
// for it, whatever the thread count or partitioning.
//
// An Aggregator holds configuration only and may be reused and shared.
type Aggregator[K Integer, V any] struct {
	cfg   *Config
	merge MergeFunc[V]
	unit  V
}

// NewAggregator creates an Aggregator with the given merge operator. unit is
// the value each row contributes when Run is called without a value column.
//
// Configuration options:
//   - WithThreads(n): worker count (default GOMAXPROCS).
//   - WithHasher(h): key hash function for every table.
//   - WithCapacity(n): initial capacity of growable tables.
//   - WithMaxCapacity(n) / WithProbeLimit(n): private BoundedTable limits.
//   - WithGlobalCapacity(n): LockedTable size for GlobalLocked.
//   - WithLogger(l): phase diagnostics.
func NewAggregator[K Integer, V any](
	merge MergeFunc[V],
	unit V,
	options ...func(*Config),
) *Aggregator[K, V] {
	if merge == nil {
		panic("hashagg: nil merge function")
	}
	return &Aggregator[K, V]{cfg: newConfig(options), merge: merge, unit: unit}
}

// NewSumAggregator creates an Aggregator computing SUM, or COUNT when Run is
// given no values.
func NewSumAggregator[K Integer, V Number](options ...func(*Config)) *Aggregator[K, V] {
	return NewAggregator[K, V](Sum[V], V(1), options...)
}

// Threads returns the worker count used by parallel strategies.
func (a *Aggregator[K, V]) Threads() int {
	if a.cfg.threads == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return a.cfg.threads
}

// input is one run's key column and optional value column.
type input[K Integer, V any] struct {
	keys   []K
	values []V
	unit   V
}

func (in *input[K, V]) at(i int) (K, V) {
	if in.values == nil {
		return in.keys[i], in.unit
	}
	return in.keys[i], in.values[i]
}

// Run aggregates keys[i] -> values[i] with strategy s. If values is nil every
// row contributes the unit value. Rows are split into contiguous partitions,
// one per worker.
func (a *Aggregator[K, V]) Run(s Strategy, keys []K, values []V) (*Result[K, V], error) {
	if values != nil && len(values) != len(keys) {
		return nil, fmt.Errorf("%w: %d keys, %d values", ErrLengthMismatch, len(keys), len(values))
	}
	threads := a.Threads()
	if threads <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreads, threads)
	}
	if int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(s))
	}
	if s == SingleThread {
		threads = 1
	}

	log := a.cfg.logger.With(
		zap.Stringer("strategy", s),
		zap.Int("threads", threads),
		zap.Int("rows", len(keys)),
	)
	in := &input[K, V]{keys: keys, values: values, unit: a.unit}

	start := time.Now()
	var (
		r   *Result[K, V]
		err error
	)
	if s == SingleThread {
		r = a.runSingle(in)
	} else {
		var p *workerPool
		if p, err = newWorkerPool(threads, log); err != nil {
			return nil, err
		}
		defer p.release()

		switch s {
		case IndependentMerge:
			r, err = a.runIndependent(p, in, threads, log)
		case GlobalLocked:
			r, err = a.runGlobal(p, in, threads, log)
		case PartitionedOverflow:
			r, err = a.runPartitioned(p, in, threads, log)
		case LocalGlobal:
			r, err = a.runLocalGlobal(p, in, threads, log)
		case ConcurrentMap:
			r, err = a.runConcurrent(p, in, threads)
		}
	}
	if err != nil {
		log.Error("aggregation failed", zap.Error(err))
		return nil, err
	}

	r.stats.Threads = threads
	r.stats.Partitions = len(r.parts)
	r.stats.Elapsed = time.Since(start)
	log.Debug("aggregation done",
		zap.Int("size", r.Len()),
		zap.Int("overflows", r.stats.Overflows),
		zap.Int("flushes", r.stats.Flushes),
		zap.Duration("elapsed", r.stats.Elapsed),
	)
	return r, nil
}

// insertRange feeds rows [start, end) to put.
func insertRange[K Integer, V any](in *input[K, V], start, end int, put func(K, V)) {
	for i := start; i < end; i++ {
		put(in.at(i))
	}
}

func (a *Aggregator[K, V]) runSingle(in *input[K, V]) *Result[K, V] {
	t := newTable[K, V](a.merge, a.cfg)
	insertRange(in, 0, len(in.keys), t.Put)
	r := newResult(SingleThread, []view[K, V]{t}, nil)
	r.stats.Capacity = t.Cap()
	return r
}
