package enum

import (
	"context"

	"github.com/praetorian-inc/sigscan/pkg/memory"
	"github.com/praetorian-inc/sigscan/pkg/types"
)

// DumpEnumerator reads module images from dump files on disk.
type DumpEnumerator struct {
	dump  *memory.DumpProcess
	inner *ProcessEnumerator
}

// NewDumpEnumerator opens path (a dump file or a directory of dump files).
// When mods is nil every dump file is read.
func NewDumpEnumerator(path string, mods []types.Module, config Config) (*DumpEnumerator, error) {
	dump, err := memory.OpenDump(path)
	if err != nil {
		return nil, err
	}

	inner := NewProcessEnumerator(dump, mods, config)
	inner.provenance = func(mod types.Module) types.Provenance {
		return types.DumpProvenance{FilePath: mod.Path}
	}
	return &DumpEnumerator{dump: dump, inner: inner}, nil
}

// Process returns the underlying dump source.
func (e *DumpEnumerator) Process() *memory.DumpProcess {
	return e.dump
}

// SetModules restricts enumeration to mods. A nil slice selects every dump file.
func (e *DumpEnumerator) SetModules(mods []types.Module) {
	e.inner.modules = mods
}

// Modules lists the dump files as modules.
func (e *DumpEnumerator) Modules(ctx context.Context) ([]types.Module, error) {
	return e.inner.Modules(ctx)
}

// Enumerate reads each dump file and invokes the callback.
func (e *DumpEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	return e.inner.Enumerate(ctx, callback)
}
