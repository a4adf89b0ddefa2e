package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCandidatesDefaultWindow(t *testing.T) {
	grid, err := GenerateCandidates(104, fp(0.03), nil, nil, 41)
	require.NoError(t, err)
	require.Len(t, grid, 41)

	assert.InDelta(t, 100.88, grid[0], 1e-9)
	assert.InDelta(t, 107.12, grid[40], 1e-9)
	for i := 1; i < len(grid); i++ {
		assert.Greater(t, grid[i], grid[i-1])
	}
}

func TestGenerateCandidatesNilChangePct(t *testing.T) {
	grid, err := GenerateCandidates(100, nil, nil, nil, 5)
	require.NoError(t, err)
	assert.InDelta(t, 97, grid[0], 1e-9)
	assert.InDelta(t, 103, grid[4], 1e-9)
}

func TestGenerateCandidatesCountFallback(t *testing.T) {
	grid, err := GenerateCandidates(100, nil, nil, nil, 0)
	require.NoError(t, err)
	assert.Len(t, grid, DefaultCandidateCount)
}

func TestGenerateCandidatesClipsToBounds(t *testing.T) {
	grid, err := GenerateCandidates(104, fp(0.03), fp(102), fp(105), 11)
	require.NoError(t, err)
	assert.Equal(t, 102.0, grid[0])
	assert.Equal(t, 105.0, grid[len(grid)-1])
}

func TestGenerateCandidatesInvalidInputs(t *testing.T) {
	_, err := GenerateCandidates(0, nil, nil, nil, 41)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = GenerateCandidates(-5, nil, nil, nil, 41)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = GenerateCandidates(100, nil, nil, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidRange)

	// Floor above ceiling after clipping.
	_, err = GenerateCandidates(100, fp(0.03), fp(200), nil, 41)
	assert.ErrorIs(t, err, ErrInvalidRange)
}
