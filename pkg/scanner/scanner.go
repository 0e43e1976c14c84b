// Package scanner searches the modules of a process for a compiled signature.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/praetorian-inc/sigscan/pkg/enum"
	"github.com/praetorian-inc/sigscan/pkg/matcher"
	"github.com/praetorian-inc/sigscan/pkg/memory"
	"github.com/praetorian-inc/sigscan/pkg/modules"
	"github.com/praetorian-inc/sigscan/pkg/signature"
	"github.com/praetorian-inc/sigscan/pkg/types"
)

// ErrNoTarget is returned when a Target names neither a process nor a PID.
var ErrNoTarget = errors.New("no process name or pid given")

// Scanner wraps a matcher and the enumeration settings for scanning operations.
type Scanner struct {
	matcher *matcher.Matcher
	options Options
	logger  Logger
}

// New creates a Scanner for sig.
func New(sig *signature.Signature, options Options) (*Scanner, error) {
	if sig == nil {
		return nil, errors.New("scanner: nil signature")
	}

	logger := options.Logger
	if logger == nil {
		logger = NoopLogger{}
	}

	logger.Debugf("signature %s: %d bytes, %d wildcards", sig, sig.Len(), sig.Wildcards())
	return &Scanner{
		matcher: matcher.New(sig, options.Matcher),
		options: options,
		logger:  logger,
	}, nil
}

// Signature returns the signature being searched for.
func (s *Scanner) Signature() *signature.Signature {
	return s.matcher.Signature()
}

// Open resolves target to a process. The caller closes it.
func (s *Scanner) Open(ctx context.Context, provider memory.Provider, target Target) (memory.Process, error) {
	switch {
	case target.PID > 0:
		s.logger.Debugf("opening pid %d", target.PID)
		return provider.OpenProcess(ctx, target.PID)
	case target.ProcessName != "":
		s.logger.Debugf("looking up process %q", target.ProcessName)
		return provider.FindProcess(ctx, target.ProcessName)
	default:
		return nil, ErrNoTarget
	}
}

// SelectModules returns the modules of proc that target asks for, in load order.
func (s *Scanner) SelectModules(ctx context.Context, proc memory.Process, target Target) ([]types.Module, error) {
	if target.Module != "" {
		mod, err := memory.ModuleByName(ctx, proc, target.Module)
		if err != nil {
			return nil, err
		}
		return []types.Module{mod}, nil
	}

	mods, err := proc.Modules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing modules of %s: %w", proc.Name(), err)
	}

	selected, err := modules.Filter(mods, target.Filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("%s: %d modules, %d selected", proc.Name(), len(mods), len(selected))
	if len(selected) == 0 && len(mods) > 0 {
		s.logger.Warnf("filters excluded all %d modules of %s", len(mods), proc.Name())
	}
	return selected, nil
}

// ScanProcess opens the target process, selects its modules and scans them.
func (s *Scanner) ScanProcess(ctx context.Context, provider memory.Provider, target Target) ([]types.ModuleResult, error) {
	proc, err := s.Open(ctx, provider, target)
	if err != nil {
		return nil, err
	}
	defer proc.Close()

	mods, err := s.SelectModules(ctx, proc, target)
	if err != nil {
		return nil, err
	}
	return s.ScanModules(ctx, proc, mods)
}

// ScanModules scans mods of an opened process. Results are in the order of
// mods. A module that cannot be read yields a result with ReadError set.
func (s *Scanner) ScanModules(ctx context.Context, proc memory.Process, mods []types.Module) ([]types.ModuleResult, error) {
	if mods == nil {
		mods = []types.Module{}
	}
	e := enum.NewProcessEnumerator(proc, mods, s.options.Enum)
	return s.scan(ctx, e, mods)
}

// ScanDumps scans module dump files. Each path is a dump file or a directory
// of dump files; filter selects among them. A file named by several paths is
// scanned once.
func (s *Scanner) ScanDumps(ctx context.Context, filter modules.FilterConfig, paths ...string) ([]types.ModuleResult, error) {
	var enumerators []enum.Enumerator
	var all []types.Module
	seen := make(map[slotKey]bool)

	for _, path := range paths {
		e, err := enum.NewDumpEnumerator(path, nil, s.options.Enum)
		if err != nil {
			return nil, err
		}
		mods, err := e.Modules(ctx)
		if err != nil {
			return nil, err
		}
		selected, err := modules.Filter(mods, filter)
		if err != nil {
			return nil, err
		}
		if selected == nil {
			selected = []types.Module{}
		}
		e.SetModules(selected)
		enumerators = append(enumerators, e)
		s.logger.Debugf("%s: %d dump files, %d selected", path, len(mods), len(selected))

		for _, m := range selected {
			k := keyOf(m)
			if !seen[k] {
				seen[k] = true
				all = append(all, m)
			}
		}
	}
	if all == nil {
		all = []types.Module{}
	}

	return s.scan(ctx, enum.NewCombinedEnumerator(enumerators...), all)
}

type slotKey struct {
	path string
	name string
	base uint64
}

func keyOf(m types.Module) slotKey {
	return slotKey{path: m.Path, name: m.Name, base: m.Base}
}

// scan runs the enumerator and places each module's result in the slot of
// its position in order.
func (s *Scanner) scan(ctx context.Context, e enum.Enumerator, order []types.Module) ([]types.ModuleResult, error) {
	slots := make(map[slotKey]int, len(order))
	for i, m := range order {
		slots[keyOf(m)] = i
	}

	results := make([]types.ModuleResult, len(order))
	filled := make([]bool, len(order))
	var mu sync.Mutex

	err := e.Enumerate(ctx, func(content []byte, mod types.Module, prov types.Provenance, readErr error) error {
		r := s.searchModule(content, mod, prov, readErr)

		mu.Lock()
		defer mu.Unlock()
		i, ok := slots[keyOf(mod)]
		if !ok {
			return nil
		}
		results[i] = r
		filled[i] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, ok := range filled {
		if !ok {
			// the enumerator skipped a module it was given
			results[i] = types.ModuleResult{Module: order[i], ReadError: "module was not read"}
		}
	}
	return results, nil
}

func (s *Scanner) searchModule(content []byte, mod types.Module, prov types.Provenance, readErr error) types.ModuleResult {
	partial := errors.Is(readErr, memory.ErrPartialRead)
	if readErr != nil && !partial {
		s.logger.Debugf("skipping %s: %v", mod.Name, readErr)
		r := types.NewModuleResult(mod, prov, 0, false)
		r.ReadError = readErr.Error()
		return r
	}
	if partial {
		s.logger.Debugf("searching partial image: %v", readErr)
	}

	offset, found := s.matcher.Find(content)
	if found {
		s.logger.Debugf("%s: match at +0x%X", mod.Name, offset)
	}
	r := types.NewModuleResult(mod, prov, offset, found)
	r.Partial = partial
	return r
}
