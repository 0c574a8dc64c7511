package hashagg

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (a *Aggregator[K, V]) runIndependent(
	p *workerPool,
	in *input[K, V],
	threads int,
	log *zap.Logger,
) (*Result[K, V], error) {
	tables := make([]*Table[K, V], threads)
	err := p.run(threads, func(w int) {
		t := newTable[K, V](a.merge, a.cfg)
		start, end := partitionRange(len(in.keys), threads, w)
		insertRange(in, start, end, t.Put)
		tables[w] = t
	})
	if err != nil {
		return nil, err
	}
	log.Debug("independent insert phase done")

	if err := combineTree(tables, threads); err != nil {
		return nil, err
	}
	r := newResult(IndependentMerge, []view[K, V]{tables[0]}, nil)
	r.stats.Capacity = tables[0].Cap()
	return r, nil
}

// combineTree reduces tables into tables[0] by pairwise Combine rounds with
// strides 1, 2, 4, ... Pairs within a round are disjoint and run in
// parallel. Source tables are released once merged. A panicking merge is
// reported as ErrWorkerPanic.
func combineTree[K Integer, V any](tables []*Table[K, V], limit int) error {
	for stride := 1; stride < len(tables); stride *= 2 {
		var g errgroup.Group
		g.SetLimit(limit)
		for i := 0; i+stride < len(tables); i += 2 * stride {
			dst, src := tables[i], tables[i+stride]
			tables[i+stride] = nil
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("%w: combine %d<-%d: %v", ErrWorkerPanic, i, i+stride, r)
					}
				}()
				// Combine into the larger table to rehash less.
				if src.Len() > dst.Len() {
					src.Combine(dst)
					tables[i] = src
					return nil
				}
				dst.Combine(src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
