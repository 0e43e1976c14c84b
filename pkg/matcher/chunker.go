package matcher

// Chunk is a contiguous range of candidate offsets [Start, End).
//
// Chunks partition candidates, not bytes: a worker scanning a chunk reads up
// to End-1+len(signature) bytes of the subject, so neighbouring chunks read
// overlapping windows while testing disjoint offsets.
type Chunk struct {
	Start int // first candidate offset
	End   int // one past the last candidate offset
	Index int // chunk number (0-indexed)
}

// Len returns the number of candidate offsets in the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// ChunkCandidates splits the candidate range [0, candidates) into chunks of
// at most chunkSize offsets. The chunks are ordered, disjoint and cover the
// range exactly. No candidates yields no chunks.
func ChunkCandidates(candidates, chunkSize int) []Chunk {
	if candidates <= 0 {
		return nil
	}
	if chunkSize <= 0 || chunkSize >= candidates {
		return []Chunk{{Start: 0, End: candidates, Index: 0}}
	}

	chunks := make([]Chunk, 0, (candidates+chunkSize-1)/chunkSize)
	for start := 0; start < candidates; start += chunkSize {
		end := minInt(start+chunkSize, candidates)
		chunks = append(chunks, Chunk{
			Start: start,
			End:   end,
			Index: len(chunks),
		})
	}
	return chunks
}

// minInt returns the minimum of two integers
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
