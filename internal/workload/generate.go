package workload

import (
	"math/rand"
)

// Generate returns n keys drawn from [0, distinct). distinct must be a power
// of two for the uniform distribution, which masks a random word.
func Generate(dist string, n int, distinct uint64, zipfS float64, seed uint64) []int64 {
	r := rand.New(rand.NewSource(int64(seed)))
	keys := make([]int64, n)
	switch dist {
	case Zipf:
		z := rand.NewZipf(r, zipfS, 1, distinct-1)
		for i := range keys {
			keys[i] = int64(z.Uint64())
		}
	default:
		mask := distinct - 1
		for i := range keys {
			keys[i] = int64(r.Uint64() & mask)
		}
	}
	return keys
}
