package workload

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// ErrMismatch is returned when a result disagrees with its input.
var ErrMismatch = errors.New("workload: result mismatch")

// CountResult is the read surface of a COUNT aggregation result.
type CountResult interface {
	Len() int
	Get(key int64) (int64, bool)
	Range(yield func(key, value int64) bool)
}

// Verify checks a COUNT result against its input: the cardinality must equal
// the exact number of distinct keys, every input key must be present, and
// the counts must add up to the row count.
func Verify(keys []int64, res CountResult) error {
	seen := roaring64.New()
	for _, k := range keys {
		seen.Add(uint64(k))
	}
	if distinct := seen.GetCardinality(); uint64(res.Len()) != distinct {
		return fmt.Errorf("%w: cardinality %d, input has %d distinct keys",
			ErrMismatch, res.Len(), distinct)
	}

	var total int64
	var err error
	res.Range(func(k, v int64) bool {
		if !seen.Contains(uint64(k)) {
			err = fmt.Errorf("%w: key %d not in input", ErrMismatch, k)
			return false
		}
		total += v
		return true
	})
	if err != nil {
		return err
	}
	if total != int64(len(keys)) {
		return fmt.Errorf("%w: counts sum to %d, input has %d rows", ErrMismatch, total, len(keys))
	}
	return nil
}
