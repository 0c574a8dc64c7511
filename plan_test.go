package hashagg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEstimateDistinct(t *testing.T) {
	const distinct = 10000
	keys := make([]int64, 0, 4*distinct)
	for range 4 {
		for k := range int64(distinct) {
			keys = append(keys, k*7919)
		}
	}
	est := EstimateDistinct(keys)
	require.InDelta(t, distinct, float64(est), distinct*0.05)
}

func TestEstimateDistinctParallel(t *testing.T) {
	keys := uniformKeys(100000, 1<<15, 77)
	p, err := newWorkerPool(4, zap.NewNop())
	require.NoError(t, err)
	defer p.release()

	got, err := estimateDistinct(p, keys, 4)
	require.NoError(t, err)
	serial := EstimateDistinct(keys)
	require.InDelta(t, float64(serial), float64(got), float64(serial)*0.02)
}

func TestPlanCapacity(t *testing.T) {
	cases := []struct {
		distinct uint64
		want     int
	}{
		{0, 16},
		{10, 16},
		{11, 16},
		{12, 32},
		{1000, 2048},
		{1 << 20, 1 << 21},
	}
	for _, c := range cases {
		require.Equal(t, c.want, PlanCapacity(c.distinct), "distinct=%d", c.distinct)
	}
}
