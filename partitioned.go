package hashagg

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// pair is an overflowed row waiting in a routing buffer.
type pair[K Integer, V any] struct {
	key   K
	value V
}

// runPartitioned implements the partitioned-overflow hybrid (PLAT).
//
// Insert phase: each worker fills a private BoundedTable; a row the table
// refuses goes to buffers[worker][dest], dest = hash(key) & (D-1).
//
// Drain phase, after a barrier: worker w owns destinations w, w+T, ... and
// builds each one's final Table from every worker's buffer for it plus the
// entries of every bounded table that route to it. Buffers and bounded
// tables are only read after the barrier, so their hand-off needs no lock.
func (a *Aggregator[K, V]) runPartitioned(
	p *workerPool,
	in *input[K, V],
	threads int,
	log *zap.Logger,
) (*Result[K, V], error) {
	dests := nextPowOf2(threads)
	destMask := uint64(dests - 1)
	hash := a.cfg.hasher
	route := func(key K) int {
		return int(hash(uint64(key)) & destMask)
	}

	partCfg := *a.cfg
	partCfg.hasher = shiftHash(hash, log2(dests))

	var (
		barrier   rally
		overflows atomic.Int64
		locals    = make([]*BoundedTable[K, V], threads)
		buffers   = make([][][]pair[K, V], threads)
		parts     = make([]*Table[K, V], dests)
	)

	err := p.runBarrier(threads, &barrier, func(w int) {
		func() {
			// Trip the barrier even if this worker fails, so the others
			// are not left waiting.
			defer barrier.meet(threads)

			local := newBoundedTable[K, V](a.merge, a.cfg)
			out := make([][]pair[K, V], dests)
			n := 0
			start, end := partitionRange(len(in.keys), threads, w)
			for i := start; i < end; i++ {
				k, v := in.at(i)
				if !local.Put(k, v) {
					d := route(k)
					out[d] = append(out[d], pair[K, V]{k, v})
					n++
				}
			}
			locals[w] = local
			buffers[w] = out
			overflows.Add(int64(n))
		}()

		for d := w; d < dests; d += threads {
			t := newTable[K, V](a.merge, &partCfg)
			for src := range threads {
				for _, e := range buffers[src][d] {
					t.Put(e.key, e.value)
				}
				buffers[src][d] = nil
			}
			parts[d] = t
		}
		for _, local := range locals {
			local.Range(func(k K, v V) bool {
				d := route(k)
				if d%threads == w {
					parts[d].Put(k, v)
				}
				return true
			})
		}
	})
	if err != nil {
		return nil, err
	}
	log.Debug("partitioned drain phase done",
		zap.Int("destinations", dests),
		zap.Int64("overflows", overflows.Load()))

	views := make([]view[K, V], dests)
	capacity := 0
	for d, t := range parts {
		views[d] = t
		capacity += t.Cap()
	}
	r := newResult(PartitionedOverflow, views, route)
	r.stats.Overflows = int(overflows.Load())
	r.stats.Capacity = capacity
	return r, nil
}
