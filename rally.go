package hashagg

import (
	"sync/atomic"

	"github.com/llxisdsh/hashagg/internal/opt"
)

// rally is a reusable barrier for a fixed party of goroutines. The plat
// strategy uses it to separate the insertion phase from the drain phase:
// every write made before meet happens-before every read made after it.
//
// It is zero-value usable.
type rally struct {
	_ noCopy
	// state 64-bit:
	//   High 32: Generation
	//   Low 32: Current Waiter Count
	state atomic.Uint64

	// Generation N waits on sema[N%2], so a fast goroutine re-entering the
	// next generation cannot steal a wakeup meant for the current one.
	sema [2]opt.Sema
}

// meet blocks until parties callers have called meet in this generation.
// It returns the arrival index; parties-1 means the caller tripped the
// barrier.
func (b *rally) meet(parties int) int {
	if parties <= 0 {
		panic("hashagg: parties must be positive")
	}
	if parties == 1 {
		return 0
	}

	var spins int
	for {
		s := b.state.Load()
		gen := s >> 32
		count := uint32(s)

		if count == uint32(parties)-1 {
			if b.state.CompareAndSwap(s, (gen+1)<<32) {
				semaPtr := &b.sema[gen%2]
				for range count {
					semaPtr.Release()
				}
				return int(count)
			}
		} else if b.state.CompareAndSwap(s, s+1) {
			b.sema[gen%2].Acquire()
			return int(count)
		}
		delay(&spins)
	}
}
