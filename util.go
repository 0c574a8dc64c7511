package hashagg

import (
	"math/bits"
	"time"
	_ "unsafe" // for linkname
)

const (
	// loadFactor: grow a Table before an insert would exceed it
	loadFactor = 0.7
	// defaultCapacity: initial slot count of every growable table
	defaultCapacity = 16
	// defaultMaxCapacity: growth ceiling of a BoundedTable
	defaultMaxCapacity = 2 << 12
	// defaultProbeLimit: probing steps a BoundedTable tries before overflow
	defaultProbeLimit = 4
	// maxSizeStripes: upper bound on LockedTable size counter stripes
	maxSizeStripes = 64
)

const (
	intSize = 32 << (^uint(0) >> 63) // 32 or 64
)

// nextPowOf2 calculates the smallest power of 2 that is greater than or equal
// to n.
// Compatible with both 32-bit and 64-bit systems.
//
//go:nosplit
func nextPowOf2(n int) int {
	if n <= 0 {
		return 1
	}
	v := n - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	if intSize == 64 {
		v |= v >> 32
	}
	return v + 1
}

// log2 of a power of two.
//
//go:nosplit
func log2(n int) int {
	return bits.TrailingZeros(uint(n))
}

// growThreshold is the size at which a table of the given capacity grows.
//
//go:nosplit
func growThreshold(capacity int) int {
	return int(float64(capacity) * loadFactor)
}

// calcSizeStripes picks the stripe count of a sharded size counter.
// Return value must be a power of 2.
//
//go:nosplit
func calcSizeStripes(capacity, cpus int) int {
	return nextPowOf2(min(cpus, maxSizeStripes, max(capacity>>10, 1)))
}

// partitionRange returns the contiguous index range [start, end) of
// partition i when n items are split across p partitions.
//
//go:nosplit
func partitionRange(n, p, i int) (start, end int) {
	return i * n / p, (i + 1) * n / p
}

// ============================================================================
// Locker Utilities
// ============================================================================

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

func trySpin(spins *int) bool {
	if runtime_canSpin(*spins) {
		*spins++
		runtime_doSpin()
		return true
	}
	return false
}

func delay(spins *int) {
	if trySpin(spins) {
		return
	}
	*spins = 0
	// A sub-millisecond sleep backs off far better than Gosched once
	// many workers contend for the same slot.
	time.Sleep(500 * time.Microsecond)
}

// nolint:all
//
//go:linkname runtime_canSpin sync.runtime_canSpin
//goland:noinspection ALL
func runtime_canSpin(i int) bool

// nolint:all
//
//go:linkname runtime_doSpin sync.runtime_doSpin
//goland:noinspection ALL
func runtime_doSpin()
