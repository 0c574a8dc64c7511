package hashagg

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

func (a *Aggregator[K, V]) runLocalGlobal(
	p *workerPool,
	in *input[K, V],
	threads int,
	log *zap.Logger,
) (*Result[K, V], error) {
	var (
		mu        sync.Mutex
		overflows atomic.Int64
		flushes   atomic.Int64
	)
	global := newTable[K, V](a.merge, a.cfg)

	err := p.run(threads, func(w int) {
		local := newBoundedTable[K, V](a.merge, a.cfg)
		flush := func() {
			mu.Lock()
			defer mu.Unlock()
			local.Drain(global.Put)
			flushes.Add(1)
		}

		start, end := partitionRange(len(in.keys), threads, w)
		for i := start; i < end; i++ {
			k, v := in.at(i)
			if local.Put(k, v) {
				continue
			}
			overflows.Add(1)
			flush()
			// A drained table admits any key on its first probe.
			if !local.Put(k, v) {
				panic("hashagg: drained bounded table refused a key")
			}
		}
		flush()
	})
	if err != nil {
		return nil, err
	}
	log.Debug("local-global flushes done", zap.Int64("flushes", flushes.Load()))

	r := newResult(LocalGlobal, []view[K, V]{global}, nil)
	r.stats.Overflows = int(overflows.Load())
	r.stats.Flushes = int(flushes.Load())
	r.stats.Capacity = global.Cap()
	return r, nil
}
