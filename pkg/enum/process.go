package enum

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/praetorian-inc/sigscan/pkg/memory"
	"github.com/praetorian-inc/sigscan/pkg/types"
	"golang.org/x/sync/errgroup"
)

// ProcessEnumerator reads the module images of an opened process.
type ProcessEnumerator struct {
	proc    memory.Process
	modules []types.Module
	config  Config

	provenance func(mod types.Module) types.Provenance
}

// NewProcessEnumerator creates an enumerator over proc.
// When mods is nil every module the process reports is read; otherwise only
// mods, in the given order.
func NewProcessEnumerator(proc memory.Process, mods []types.Module, config Config) *ProcessEnumerator {
	return &ProcessEnumerator{
		proc:    proc,
		modules: mods,
		config:  config,
		provenance: func(mod types.Module) types.Provenance {
			return types.ProcessProvenance{PID: proc.PID(), ProcessName: proc.Name(), Module: mod}
		},
	}
}

// Modules returns the modules to be read, listing them from the process if
// none were given.
func (e *ProcessEnumerator) Modules(ctx context.Context) ([]types.Module, error) {
	if e.modules != nil {
		return e.modules, nil
	}
	mods, err := e.proc.Modules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing modules of %s: %w", e.proc.Name(), err)
	}
	return mods, nil
}

// Enumerate reads modules with a bounded pool of readers and invokes the
// callback for each. Read failures are reported through the callback and do
// not stop enumeration.
func (e *ProcessEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	mods, err := e.Modules(ctx)
	if err != nil {
		return err
	}

	numReaders := e.config.Readers
	if numReaders < 1 {
		numReaders = runtime.NumCPU()
	}

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	modsCh := make(chan types.Module, numReaders*2)

	// Feed modules to readers
	g.Go(func() error {
		defer close(modsCh)
		for _, m := range mods {
			select {
			case modsCh <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for m := range modsCh {
				if err := e.processModule(ctx, m, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// If the caller's context was cancelled but all goroutines finished
	// before noticing, propagate the cancellation.
	if origCtx.Err() != nil {
		return origCtx.Err()
	}
	return nil
}

// processModule reads a single module and invokes the callback.
func (e *ProcessEnumerator) processModule(ctx context.Context, mod types.Module, callback Callback) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	prov := e.provenance(mod)

	if e.config.MaxModuleSize > 0 && mod.Size > e.config.MaxModuleSize {
		return callback(nil, mod, prov, tooLarge(mod, e.config.MaxModuleSize))
	}

	buf := make([]byte, mod.Size)
	err := memory.ReadModule(e.proc, mod, buf)
	switch {
	case err == nil:
		return callback(buf, mod, prov, nil)
	case errors.Is(err, memory.ErrPartialRead):
		return callback(buf, mod, prov, fmt.Errorf("reading module %s: %w", mod.Name, err))
	default:
		return callback(nil, mod, prov, fmt.Errorf("reading module %s: %w", mod.Name, err))
	}
}
