package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_UniformDomain(t *testing.T) {
	keys := Generate(Uniform, 10000, 64, 0, 1)
	require.Len(t, keys, 10000)
	seen := make(map[int64]bool)
	for _, k := range keys {
		require.True(t, k >= 0 && k < 64, "key %d out of domain", k)
		seen[k] = true
	}
	// 10000 draws over 64 keys hit every key.
	assert.Len(t, seen, 64)
}

func TestGenerate_Deterministic(t *testing.T) {
	assert.Equal(t, Generate(Uniform, 100, 1<<20, 0, 42), Generate(Uniform, 100, 1<<20, 0, 42))
	assert.NotEqual(t, Generate(Uniform, 100, 1<<20, 0, 42), Generate(Uniform, 100, 1<<20, 0, 43))
}

func TestGenerate_ZipfSkew(t *testing.T) {
	keys := Generate(Zipf, 20000, 1<<10, 1.5, 3)
	counts := make(map[int64]int)
	for _, k := range keys {
		require.True(t, k >= 0 && k < 1<<10)
		counts[k]++
	}
	// Rank zero is the most frequent key.
	for k, c := range counts {
		if k != 0 {
			assert.GreaterOrEqual(t, counts[0], c)
		}
	}
}

func TestGenerate_Empty(t *testing.T) {
	assert.Empty(t, Generate(Uniform, 0, 16, 0, 0))
}
