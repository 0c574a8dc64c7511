package hashagg

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

func (a *Aggregator[K, V]) runGlobal(
	p *workerPool,
	in *input[K, V],
	threads int,
	log *zap.Logger,
) (*Result[K, V], error) {
	capacity := a.cfg.globalCapacity
	if capacity == 0 {
		estimate, err := estimateDistinct(p, in.keys, threads)
		if err != nil {
			return nil, err
		}
		capacity = PlanCapacity(estimate)
		log.Debug("planned locked table capacity",
			zap.Uint64("estimate", estimate),
			zap.Int("capacity", capacity))
	}

	t := newLockedTable[K, V](a.merge, capacity, a.cfg.hasher)
	var saturated atomic.Bool
	err := p.run(threads, func(w int) {
		start, end := partitionRange(len(in.keys), threads, w)
		for i := start; i < end; i++ {
			if !t.Put(in.at(i)) {
				saturated.Store(true)
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if saturated.Load() {
		return nil, fmt.Errorf("%w: %d slots", ErrCapacityExhausted, t.Cap())
	}
	r := newResult(GlobalLocked, []view[K, V]{t}, nil)
	r.stats.Capacity = t.Cap()
	return r, nil
}
