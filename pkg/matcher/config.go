package matcher

import "runtime"

const (
	// DefaultParallelThreshold is the subject size below which scans run on
	// the calling goroutine.
	DefaultParallelThreshold = 64 * 1024

	// DefaultChunkSize is the number of candidate offsets handed to a worker at once.
	DefaultChunkSize = 256 * 1024
)

// Config controls how the search engine fans out.
type Config struct {
	// Workers is the maximum number of concurrent chunk scans (0 = GOMAXPROCS)
	Workers int

	// ParallelThreshold is the subject size in bytes at which the parallel
	// path is used (0 = DefaultParallelThreshold)
	ParallelThreshold int

	// ChunkSize is the number of candidate offsets per chunk (0 = DefaultChunkSize)
	ChunkSize int

	// EnablePrefilter runs an Aho-Corasick pass over the whole subject for
	// every exact run of the signature before scanning. It only pays off for
	// signatures with several runs searched in subjects that rarely hold them;
	// the anchored scan already rejects a missing anchor at bytes.Index speed.
	EnablePrefilter bool

	// DisableAnchor tests every candidate offset instead of jumping between
	// occurrences of the signature's longest exact run
	DisableAnchor bool
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           runtime.GOMAXPROCS(0),
		ParallelThreshold: DefaultParallelThreshold,
		ChunkSize:         DefaultChunkSize,
	}
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ParallelThreshold <= 0 {
		c.ParallelThreshold = DefaultParallelThreshold
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c
}
