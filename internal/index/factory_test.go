package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_BuildsEachKnownAlgorithm(t *testing.T) {
	chunks := fixedChunks(5, 4)

	for _, alg := range []string{AlgorithmLinear, AlgorithmKDTree, AlgorithmLSH} {
		idx, err := Create(chunks, alg, Options{})
		require.NoError(t, err, alg)
		assert.Equal(t, alg, idx.Algorithm())
	}
}

func TestCreate_UnknownAlgorithmFails(t *testing.T) {
	_, err := Create(nil, "bogus", Options{})
	require.Error(t, err)
	assert.IsType(t, ErrUnknownAlgorithm{}, err)
}

func TestCreate_PassesLinearOptionsThrough(t *testing.T) {
	normalize := false
	idx, err := Create(fixedChunks(3, 4), AlgorithmLinear, Options{
		Linear: LinearOptions{Normalize: &normalize, BatchSize: 1},
	})
	require.NoError(t, err)

	linear, ok := idx.(*LinearIndex)
	require.True(t, ok)
	assert.False(t, linear.normalize)
	assert.Equal(t, 1, linear.batchSize)
}

func TestIsUpdateable_TrueForFactoryBuiltIndices(t *testing.T) {
	idx, err := Create(fixedChunks(3, 4), AlgorithmLinear, Options{})
	require.NoError(t, err)
	assert.True(t, IsUpdateable(idx))
}

func TestIsUpdateable_FalseForNil(t *testing.T) {
	assert.False(t, IsUpdateable(nil))
}
