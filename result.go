package hashagg

import "time"

// view is the read surface shared by every table type.
type view[K Integer, V any] interface {
	Get(key K) (V, bool)
	Len() int
	Range(yield func(key K, value V) bool)
}

// Stats describes one Aggregator run.
type Stats struct {
	// Threads is the number of workers.
	Threads int
	// Partitions is the number of disjoint final tables.
	Partitions int
	// Overflows counts BoundedTable puts that were refused and routed
	// elsewhere (plat) or triggered a flush (localglobal).
	Overflows int
	// Flushes counts local-to-global flushes (localglobal).
	Flushes int
	// Capacity is the total slot count of the final tables.
	Capacity int
	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Result is the final key to value mapping of a run. Its parts hold
// disjoint key sets.
type Result[K Integer, V any] struct {
	strategy Strategy
	stats    Stats
	parts    []view[K, V]
	route    func(key K) int
}

func newResult[K Integer, V any](s Strategy, parts []view[K, V], route func(K) int) *Result[K, V] {
	return &Result[K, V]{strategy: s, parts: parts, route: route}
}

// Strategy returns the strategy that produced r.
func (r *Result[K, V]) Strategy() Strategy {
	return r.strategy
}

// Stats returns the run statistics.
func (r *Result[K, V]) Stats() Stats {
	return r.stats
}

// Len returns the number of distinct keys, i.e. the result cardinality.
func (r *Result[K, V]) Len() int {
	n := 0
	for _, p := range r.parts {
		n += p.Len()
	}
	return n
}

// Get returns the aggregated value for key.
func (r *Result[K, V]) Get(key K) (value V, ok bool) {
	if len(r.parts) == 1 {
		return r.parts[0].Get(key)
	}
	return r.parts[r.route(key)].Get(key)
}

// Range calls yield for every entry until yield returns false.
func (r *Result[K, V]) Range(yield func(key K, value V) bool) {
	stopped := false
	for _, p := range r.parts {
		p.Range(func(k K, v V) bool {
			stopped = !yield(k, v)
			return !stopped
		})
		if stopped {
			return
		}
	}
}

// ToMap materializes the mapping.
func (r *Result[K, V]) ToMap() map[K]V {
	m := make(map[K]V, r.Len())
	r.Range(func(k K, v V) bool {
		m[k] = v
		return true
	})
	return m
}
