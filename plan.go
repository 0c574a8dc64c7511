package hashagg

import (
	"encoding/binary"

	"github.com/axiomhq/hyperloglog"
)

// EstimateDistinct returns a HyperLogLog estimate of the number of distinct
// keys. The standard error is below 1%.
func EstimateDistinct[K Integer](keys []K) uint64 {
	return sketchKeys(keys).Estimate()
}

// PlanCapacity returns the power-of-two slot count that holds distinct keys
// below the load factor. Use it to provision a LockedTable.
func PlanCapacity(distinct uint64) int {
	return nextPowOf2(max(int(float64(distinct)/loadFactor)+1, defaultCapacity))
}

func sketchKeys[K Integer](keys []K) *hyperloglog.Sketch {
	sk := hyperloglog.New16()
	var buf [8]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		sk.Insert(buf[:])
	}
	return sk
}

// estimateDistinct sketches each partition on the pool and merges the
// sketches.
func estimateDistinct[K Integer](p *workerPool, keys []K, threads int) (uint64, error) {
	sketches := make([]*hyperloglog.Sketch, threads)
	err := p.run(threads, func(w int) {
		start, end := partitionRange(len(keys), threads, w)
		sketches[w] = sketchKeys(keys[start:end])
	})
	if err != nil {
		return 0, err
	}
	sk := sketches[0]
	for _, other := range sketches[1:] {
		if err := sk.Merge(other); err != nil {
			return 0, err
		}
	}
	return sk.Estimate(), nil
}
