// Package matcher finds the lowest offset at which a compiled signature
// matches a byte buffer.
//
// Large buffers are split into chunks of candidate offsets that are scanned
// concurrently. Each chunk reports its own lowest hit and the results are
// reduced to the overall minimum, so the answer never depends on which
// worker finishes first.
package matcher

import (
	"bytes"
	"sync/atomic"

	"github.com/praetorian-inc/sigscan/pkg/prefilter"
	"github.com/praetorian-inc/sigscan/pkg/signature"
	"golang.org/x/sync/errgroup"
)

// noMatch marks a chunk without a hit.
const noMatch = -1

// Matcher searches subjects for a single signature.
// A Matcher is safe for concurrent use; each Find call is independent.
type Matcher struct {
	sig       *signature.Signature
	config    Config
	prefilter *prefilter.Prefilter
}

// New creates a Matcher for sig.
func New(sig *signature.Signature, config Config) *Matcher {
	m := &Matcher{
		sig:    sig,
		config: config.withDefaults(),
	}
	if m.config.EnablePrefilter {
		m.prefilter = prefilter.New(sig)
	}
	return m
}

// Find returns the lowest offset in subject where sig matches, using DefaultConfig.
func Find(sig *signature.Signature, subject []byte) (int, bool) {
	return New(sig, DefaultConfig()).Find(subject)
}

// Signature returns the signature the matcher searches for.
func (m *Matcher) Signature() *signature.Signature {
	return m.sig
}

// Find returns the lowest offset in subject where the signature matches.
//
// A zero-length signature matches at offset 0. A signature longer than the
// subject never matches.
func (m *Matcher) Find(subject []byte) (int, bool) {
	n := m.sig.Len()
	if n == 0 {
		return 0, true
	}
	if n > len(subject) {
		return 0, false
	}

	if m.prefilter != nil && !m.prefilter.MayMatch(subject) {
		return 0, false
	}

	candidates := len(subject) - n + 1
	if len(subject) < m.config.ParallelThreshold || m.config.Workers == 1 || candidates <= m.config.ChunkSize {
		return m.scanRange(subject, 0, candidates)
	}
	return m.findParallel(subject, candidates)
}

// findParallel scans chunks concurrently and reduces to the minimum hit.
func (m *Matcher) findParallel(subject []byte, candidates int) (int, bool) {
	chunks := ChunkCandidates(candidates, m.config.ChunkSize)
	hits := make([]int, len(chunks))

	// best only prunes chunks that cannot beat a hit already found
	var best atomic.Int64
	best.Store(int64(candidates))

	g := new(errgroup.Group)
	g.SetLimit(m.config.Workers)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		hits[i] = noMatch
		g.Go(func() error {
			if int64(chunk.Start) > best.Load() {
				return nil
			}
			off, ok := m.scanRange(subject, chunk.Start, chunk.End)
			if !ok {
				return nil
			}
			hits[i] = off
			lowerBest(&best, int64(off))
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	lowest := noMatch
	for _, off := range hits {
		if off != noMatch && (lowest == noMatch || off < lowest) {
			lowest = off
		}
	}
	if lowest == noMatch {
		return 0, false
	}
	return lowest, true
}

// scanRange returns the lowest matching offset in [from, to).
func (m *Matcher) scanRange(subject []byte, from, to int) (int, bool) {
	anchor, pos := m.sig.Anchor()
	if len(anchor) == 0 {
		// all wildcards: the first candidate always matches
		if from < to {
			return from, true
		}
		return 0, false
	}
	if m.config.DisableAnchor {
		return m.scanEvery(subject, from, to)
	}

	n := m.sig.Len()
	// an anchor at a corresponds to candidate a-pos
	lo, hi := from+pos, to-1+pos+len(anchor)
	for lo < hi {
		idx := bytes.Index(subject[lo:hi], anchor)
		if idx < 0 {
			return 0, false
		}
		off := lo + idx - pos
		if m.sig.MatchAt(subject[off : off+n]) {
			return off, true
		}
		lo += idx + 1
	}
	return 0, false
}

// scanEvery tests each candidate in [from, to) in order.
func (m *Matcher) scanEvery(subject []byte, from, to int) (int, bool) {
	n := m.sig.Len()
	for off := from; off < to; off++ {
		if m.sig.MatchAt(subject[off : off+n]) {
			return off, true
		}
	}
	return 0, false
}

// lowerBest stores v into best if it is smaller than the current value.
func lowerBest(best *atomic.Int64, v int64) {
	for {
		cur := best.Load()
		if v >= cur || best.CompareAndSwap(cur, v) {
			return
		}
	}
}
