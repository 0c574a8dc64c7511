package hashagg

import (
	"github.com/llxisdsh/pb"
)

// mapView adapts pb.MapOf to the result view.
type mapView[K Integer, V any] struct {
	m *pb.MapOf[K, V]
}

func (v mapView[K, V]) Get(key K) (V, bool) {
	return v.m.Load(key)
}

func (v mapView[K, V]) Len() int {
	return v.m.Size()
}

func (v mapView[K, V]) Range(yield func(key K, value V) bool) {
	v.m.Range(yield)
}

// runConcurrent merges every row into one shared pb.MapOf. The merge runs
// inside ProcessEntry, under the map's bucket lock.
func (a *Aggregator[K, V]) runConcurrent(
	p *workerPool,
	in *input[K, V],
	threads int,
) (*Result[K, V], error) {
	m := pb.NewMapOf[K, V]()
	merge := a.merge
	err := p.run(threads, func(w int) {
		start, end := partitionRange(len(in.keys), threads, w)
		insertRange(in, start, end, func(key K, value V) {
			m.ProcessEntry(key, func(e *pb.EntryOf[K, V]) (*pb.EntryOf[K, V], V, bool) {
				if e == nil {
					return &pb.EntryOf[K, V]{Value: value}, value, false
				}
				merged := merge(e.Value, value)
				return &pb.EntryOf[K, V]{Value: merged}, merged, true
			})
		})
	})
	if err != nil {
		return nil, err
	}
	r := newResult(ConcurrentMap, []view[K, V]{mapView[K, V]{m}}, nil)
	r.stats.Capacity = m.Stats().Capacity
	return r, nil
}
