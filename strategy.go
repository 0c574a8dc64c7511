package hashagg

import "fmt"

// Strategy selects how an Aggregator spreads insertions across workers and
// tables.
type Strategy uint8

const (
	// IndependentMerge gives every worker a private growable Table and
	// combines them pairwise once all workers finish.
	IndependentMerge Strategy = iota
	// GlobalLocked inserts directly into one shared LockedTable. The result
	// is final when the workers join.
	GlobalLocked
	// PartitionedOverflow gives every worker a private BoundedTable and
	// routes overflowing keys to the worker owning the key's partition,
	// which builds that partition's final Table after a barrier.
	PartitionedOverflow
	// LocalGlobal gives every worker a private BoundedTable that is flushed
	// into one shared Table under a mutex whenever it overflows, and once
	// at the end.
	LocalGlobal
	// SingleThread inserts every row into one Table on the calling
	// goroutine. It is the reference for the parallel strategies.
	SingleThread
	// ConcurrentMap inserts into one shared pb.MapOf, merging in place.
	ConcurrentMap
)

var strategyNames = [...]string{
	IndependentMerge:    "independent",
	GlobalLocked:        "global",
	PartitionedOverflow: "plat",
	LocalGlobal:         "localglobal",
	SingleThread:        "single",
	ConcurrentMap:       "concurrent",
}

// Strategies lists every defined strategy.
func Strategies() []Strategy {
	all := make([]Strategy, len(strategyNames))
	for i := range all {
		all[i] = Strategy(i)
	}
	return all
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}
