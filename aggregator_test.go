package hashagg

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/llxisdsh/hashagg/internal/opt"
)

// testedStrategies is Strategies without ConcurrentMap under the race
// detector: pb.MapOf reads bucket metadata without atomics on purpose.
func testedStrategies() []Strategy {
	if !opt.Race_ {
		return Strategies()
	}
	var out []Strategy
	for _, s := range Strategies() {
		if s != ConcurrentMap {
			out = append(out, s)
		}
	}
	return out
}

func uniformKeys(n, domain int, seed uint64) []int64 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = int64(r.IntN(domain))
	}
	return keys
}

func TestAggregator_StrategiesMatchReference(t *testing.T) {
	cases := []struct {
		rows, domain int
	}{
		{0, 1},
		{1, 1},
		{1000, 16},
		{50000, 1 << 10},
		{50000, 1 << 14},
		{20000, 1 << 20},
	}
	for _, c := range cases {
		keys := uniformKeys(c.rows, c.domain, uint64(c.domain))
		values := make([]int64, len(keys))
		for i := range values {
			values[i] = int64(i%7) - 3
		}

		ref, err := NewSumAggregator[int64, int64]().Run(SingleThread, keys, values)
		require.NoError(t, err)
		want := ref.ToMap()

		for _, threads := range []int{1, 3, 4, 8} {
			agg := NewSumAggregator[int64, int64](
				WithThreads(threads),
				WithMaxCapacity(256),
				WithLogger(zaptest.NewLogger(t)),
			)
			for _, s := range testedStrategies() {
				name := fmt.Sprintf("rows=%d/domain=%d/threads=%d/%s", c.rows, c.domain, threads, s)
				t.Run(name, func(t *testing.T) {
					res, err := agg.Run(s, keys, values)
					require.NoError(t, err)
					require.Equal(t, s, res.Strategy())
					require.Equal(t, ref.Len(), res.Len())
					require.Equal(t, want, res.ToMap())
					if c.rows > 0 {
						require.Positive(t, res.Stats().Capacity)
					}
					for k, v := range want {
						got, ok := res.Get(k)
						require.True(t, ok)
						require.Equal(t, v, got)
					}
				})
			}
		}
	}
}

func TestAggregator_IndependentCount(t *testing.T) {
	keys := uniformKeys(1000, 16, 42)
	res, err := NewSumAggregator[int64, int64](WithThreads(4)).Run(IndependentMerge, keys, nil)
	require.NoError(t, err)
	require.Equal(t, 16, res.Len())

	var total int64
	res.Range(func(_ int64, v int64) bool {
		total += v
		return true
	})
	require.Equal(t, int64(1000), total)
}

func TestAggregator_PartitionedOverflowLosesNothing(t *testing.T) {
	keys := uniformKeys(100000, 1<<12, 9)
	ref, err := NewSumAggregator[int64, int64]().Run(SingleThread, keys, nil)
	require.NoError(t, err)

	agg := NewSumAggregator[int64, int64](
		WithThreads(4),
		WithCapacity(16),
		WithMaxCapacity(64),
	)
	res, err := agg.Run(PartitionedOverflow, keys, nil)
	require.NoError(t, err)

	st := res.Stats()
	require.Greater(t, st.Overflows, 0)
	require.Equal(t, 4, st.Partitions)
	require.Equal(t, 4, st.Threads)
	require.Equal(t, ref.Len(), res.Len())
	require.Equal(t, ref.ToMap(), res.ToMap())
}

func TestAggregator_LocalGlobalFlushes(t *testing.T) {
	keys := uniformKeys(100000, 1<<12, 5)
	agg := NewSumAggregator[int64, int64](WithThreads(3), WithMaxCapacity(64))
	res, err := agg.Run(LocalGlobal, keys, nil)
	require.NoError(t, err)

	st := res.Stats()
	require.Greater(t, st.Overflows, 0)
	// One flush per overflow plus the final flush of each worker.
	require.Equal(t, st.Overflows+3, st.Flushes)
	require.Equal(t, 1<<12, res.Len())
}

func TestAggregator_GlobalUndersized(t *testing.T) {
	keys := uniformKeys(10000, 1<<12, 1)
	agg := NewSumAggregator[int64, int64](WithThreads(4), WithGlobalCapacity(256))
	_, err := agg.Run(GlobalLocked, keys, nil)
	require.ErrorIs(t, err, ErrCapacityExhausted)

	agg = NewSumAggregator[int64, int64](WithThreads(4), WithGlobalCapacity(1<<13))
	res, err := agg.Run(GlobalLocked, keys, nil)
	require.NoError(t, err)
	require.Equal(t, 1<<13, res.Stats().Capacity)
}

func TestAggregator_GlobalPlansCapacity(t *testing.T) {
	keys := uniformKeys(200000, 1<<16, 2)
	res, err := NewSumAggregator[int64, int64](WithThreads(4)).Run(GlobalLocked, keys, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Stats().Capacity, res.Len())
}

func TestAggregator_InvalidInput(t *testing.T) {
	agg := NewSumAggregator[int, int]()
	_, err := agg.Run(IndependentMerge, []int{1, 2}, []int{1})
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = agg.Run(Strategy(99), nil, nil)
	require.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = NewSumAggregator[int, int](WithThreads(-2)).Run(IndependentMerge, nil, nil)
	require.ErrorIs(t, err, ErrInvalidThreads)
}

func TestAggregator_WorkerPanic(t *testing.T) {
	boom := func(old, v int) int { panic("boom") }
	agg := NewAggregator[int, int](boom, 1, WithThreads(2))
	_, err := agg.Run(IndependentMerge, []int{1, 1, 2, 2}, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrWorkerPanic))
}

func TestAggregator_CombinePanic(t *testing.T) {
	// Keys are distinct within each partition, so the first merge runs in
	// the combine phase.
	boom := func(old, v int) int { panic("boom") }
	agg := NewAggregator[int, int](boom, 1, WithThreads(2))
	_, err := agg.Run(IndependentMerge, []int{1, 2, 1, 2}, nil)
	require.ErrorIs(t, err, ErrWorkerPanic)
}

func TestAggregator_LocalGlobalTinyLocalTable(t *testing.T) {
	keys := uniformKeys(20000, 5000, 21)
	ref, err := NewSumAggregator[int64, int64]().Run(SingleThread, keys, nil)
	require.NoError(t, err)

	agg := NewSumAggregator[int64, int64](
		WithThreads(4),
		WithCapacity(16),
		WithMaxCapacity(16),
		WithProbeLimit(1),
	)
	res, err := agg.Run(LocalGlobal, keys, nil)
	require.NoError(t, err)
	require.Positive(t, res.Stats().Overflows)
	require.Equal(t, ref.ToMap(), res.ToMap())
}

func TestAggregator_MinMerge(t *testing.T) {
	keys := uniformKeys(20000, 300, 8)
	values := uniformKeys(20000, 1_000_000, 13)
	minOf := func(old, v int64) int64 { return min(old, v) }

	want := map[int64]int64{}
	for i, k := range keys {
		if cur, ok := want[k]; !ok || values[i] < cur {
			want[k] = values[i]
		}
	}

	agg := NewAggregator[int64, int64](minOf, 0, WithThreads(4), WithMaxCapacity(32))
	for _, s := range testedStrategies() {
		res, err := agg.Run(s, keys, values)
		require.NoError(t, err, s.String())
		assert.Equal(t, want, res.ToMap(), s.String())
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := ParseStrategy("bogus")
	require.ErrorIs(t, err, ErrUnknownStrategy)
	require.Equal(t, "Strategy(42)", Strategy(42).String())
}
