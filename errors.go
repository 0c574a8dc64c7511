package hashagg

import "errors"

var (
	// ErrCapacityExhausted is returned when a LockedTable has no free slot
	// reachable for a new key. The table was provisioned below the key
	// cardinality of the input.
	ErrCapacityExhausted = errors.New("hashagg: locked table capacity exhausted")

	// ErrLengthMismatch is returned when the value column does not match the
	// key column row for row.
	ErrLengthMismatch = errors.New("hashagg: keys and values differ in length")

	// ErrUnknownStrategy is returned for a Strategy outside the defined set.
	ErrUnknownStrategy = errors.New("hashagg: unknown strategy")

	// ErrInvalidThreads is returned for a negative worker count.
	ErrInvalidThreads = errors.New("hashagg: thread count must be positive")

	// ErrWorkerPanic is returned when a worker panicked during a run.
	ErrWorkerPanic = errors.New("hashagg: worker panicked")
)
