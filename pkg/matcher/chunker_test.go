package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCandidates_SingleChunk(t *testing.T) {
	chunks := ChunkCandidates(100, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, Chunk{Start: 0, End: 100, Index: 0}, chunks[0])
	assert.Equal(t, 100, chunks[0].Len())
}

func TestChunkCandidates_ExactCover(t *testing.T) {
	tests := []struct {
		candidates int
		chunkSize  int
		want       int
	}{
		{10, 3, 4},
		{9, 3, 3},
		{1, 1, 1},
		{1 << 20, 4096, 256},
	}

	for _, tt := range tests {
		chunks := ChunkCandidates(tt.candidates, tt.chunkSize)
		require.Len(t, chunks, tt.want)

		next := 0
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.Equal(t, next, c.Start, "chunks must be contiguous")
			assert.LessOrEqual(t, c.Len(), tt.chunkSize)
			assert.Greater(t, c.Len(), 0)
			next = c.End
		}
		assert.Equal(t, tt.candidates, next, "chunks must cover every candidate")
	}
}

func TestChunkCandidates_Empty(t *testing.T) {
	assert.Empty(t, ChunkCandidates(0, 10))
	assert.Empty(t, ChunkCandidates(-5, 10))
}

func TestChunkCandidates_NonPositiveChunkSize(t *testing.T) {
	chunks := ChunkCandidates(42, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, 42, chunks[0].End)
}
