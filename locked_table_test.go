package hashagg

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockedTable_ConcurrentPutMatchesReference(t *testing.T) {
	const (
		workers = 8
		rows    = 200000
		domain  = 5000
	)
	r := rand.New(rand.NewPCG(3, 4))
	keys := make([]int64, rows)
	for i := range keys {
		keys[i] = int64(r.IntN(domain))
	}

	ref := NewTable[int64, int64](Sum[int64])
	for _, k := range keys {
		ref.Put(k, 1)
	}

	tbl := NewLockedTable[int64, int64](Sum[int64], 2*domain)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			start, end := partitionRange(rows, workers, w)
			for _, k := range keys[start:end] {
				if !tbl.Put(k, 1) {
					t.Errorf("put %d refused", k)
					return
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, ref.Len(), tbl.Len())
	ref.Range(func(k, v int64) bool {
		got, ok := tbl.Get(k)
		require.True(t, ok, "key %d", k)
		require.Equal(t, v, got, "key %d", k)
		return true
	})
}

func TestLockedTable_ConcurrentSameKey(t *testing.T) {
	const workers, perWorker = 16, 5000
	tbl := NewLockedTable[int, int](Sum[int], 16)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range perWorker {
				tbl.Put(42, 1)
				tbl.Put(58, 2) // collides with 42 under identity hash
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 2, tbl.Len())
	v, _ := tbl.Get(42)
	require.Equal(t, workers*perWorker, v)
	v, _ = tbl.Get(58)
	require.Equal(t, 2*workers*perWorker, v)
}

func TestLockedTable_Saturated(t *testing.T) {
	tbl := NewLockedTable[int, int](Sum[int], 16)
	require.Equal(t, 16, tbl.Cap())
	for k := range 16 {
		require.True(t, tbl.Put(k, 1))
	}
	require.False(t, tbl.Put(100, 1))
	require.True(t, tbl.Put(7, 1), "existing keys still merge")
	require.Equal(t, 16, tbl.Len())

	_, ok := tbl.Get(100)
	require.False(t, ok)
	v, _ := tbl.Get(7)
	require.Equal(t, 2, v)
}

func TestLockedTable_RangeAfterJoin(t *testing.T) {
	tbl := NewLockedTable[uint32, int](Sum[int], 1000, WithHasher(MixHash))
	require.Equal(t, 1024, tbl.Cap())
	for k := range uint32(500) {
		tbl.Put(k, int(k))
	}
	sum := 0
	tbl.Range(func(k uint32, v int) bool {
		require.Equal(t, int(k), v)
		sum += v
		return true
	})
	require.Equal(t, 499*500/2, sum)
}
