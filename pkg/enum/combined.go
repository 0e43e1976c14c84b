package enum

import (
	"context"
	"sync"

	"github.com/praetorian-inc/sigscan/pkg/types"
)

// CombinedEnumerator runs multiple enumerators sequentially and deduplicates
// module images by provenance so each source is yielded at most once.
type CombinedEnumerator struct {
	enumerators []Enumerator
}

// NewCombinedEnumerator creates a CombinedEnumerator that wraps the provided
// enumerators. They are run in order and duplicate sources (same provenance
// kind, path and base address) are suppressed.
func NewCombinedEnumerator(enumerators ...Enumerator) *CombinedEnumerator {
	return &CombinedEnumerator{enumerators: enumerators}
}

type sourceKey struct {
	kind string
	path string
	base uint64
}

// Enumerate runs each child enumerator in sequence, passing unique module
// images to callback.
func (c *CombinedEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	var mu sync.Mutex
	seen := make(map[sourceKey]bool)

	for _, e := range c.enumerators {
		err := e.Enumerate(ctx, func(content []byte, mod types.Module, prov types.Provenance, readErr error) error {
			key := sourceKey{kind: prov.Kind(), path: prov.Path(), base: mod.Base}
			mu.Lock()
			if seen[key] {
				mu.Unlock()
				return nil
			}
			seen[key] = true
			mu.Unlock()

			return callback(content, mod, prov, readErr)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
