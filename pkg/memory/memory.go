// Package memory provides access to the address space of other processes.
//
// A Provider resolves processes by name or PID. A Process lists its loaded
// modules and copies raw bytes out of its address space. Native providers
// exist for Linux (/proc and process_vm_readv) and Windows (Toolhelp32 and
// ReadProcessMemory); DumpProcess serves module images from files on disk.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/samber/lo"
)

var (
	// ErrProcessNotFound is returned when no process has the requested name or PID.
	ErrProcessNotFound = errors.New("process not found")

	// ErrModuleNotFound is returned when a process has no module with the requested name.
	ErrModuleNotFound = errors.New("module not found")

	// ErrUnsupportedPlatform is returned by the native provider on platforms
	// without a process memory backend.
	ErrUnsupportedPlatform = errors.New("process memory access is not supported on this platform")
)

// Provider resolves live processes.
type Provider interface {
	// FindProcess opens the single process with the given name.
	// It fails with ErrProcessNotFound or *AmbiguousProcessError.
	FindProcess(ctx context.Context, name string) (Process, error)

	// OpenProcess opens the process with the given PID.
	OpenProcess(ctx context.Context, pid int) (Process, error)
}

// Process is an opened target process.
type Process interface {
	// PID returns the process ID (0 for offline sources).
	PID() int

	// Name returns the process name.
	Name() string

	// Modules lists the loaded modules in load order.
	Modules(ctx context.Context) ([]types.Module, error)

	// ReadMemory fills buf with len(buf) bytes starting at addr.
	// It fails with *ReadError if the read cannot be fully satisfied.
	ReadMemory(addr uint64, buf []byte) error

	// Close releases the process handle.
	Close() error
}

// ModuleReader is implemented by processes that can copy a whole module
// image even when it contains unreadable holes (guard pages, uncommitted
// alignment padding). Holes read as zero bytes and are reported with
// *PartialReadError. len(buf) must equal mod.Size.
type ModuleReader interface {
	ReadModule(mod types.Module, buf []byte) error
}

// ReadModule copies mod into buf, using ModuleReader when p implements it.
// A *PartialReadError means buf holds the image with its holes zeroed.
func ReadModule(p Process, mod types.Module, buf []byte) error {
	if uint64(len(buf)) != mod.Size {
		return &ReadError{Addr: mod.Base, Size: mod.Size, Err: fmt.Errorf("buffer length %d does not match module size", len(buf))}
	}
	if mr, ok := p.(ModuleReader); ok {
		return mr.ReadModule(mod, buf)
	}
	return p.ReadMemory(mod.Base, buf)
}

// ReadError describes a failed or short read.
type ReadError struct {
	Addr uint64
	Size uint64
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %d bytes at 0x%X: %v", e.Size, e.Addr, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ErrPartialRead is matched by errors.Is for every *PartialReadError.
var ErrPartialRead = errors.New("module image partially unreadable")

// PartialReadError reports a module image that was copied with unreadable
// ranges left as zero bytes. The buffer is still usable.
type PartialReadError struct {
	Addr       uint64
	Size       uint64
	Unreadable uint64 // bytes left zero
}

func (e *PartialReadError) Error() string {
	return fmt.Sprintf("%d of %d bytes at 0x%X unreadable, read as zero", e.Unreadable, e.Size, e.Addr)
}

func (e *PartialReadError) Unwrap() error {
	return ErrPartialRead
}

// errShortRead is wrapped by ReadError when fewer bytes than requested were copied.
var errShortRead = errors.New("short read")

// AmbiguousProcessError is returned when more than one process has the requested name.
type AmbiguousProcessError struct {
	Name string
	PIDs []int
}

func (e *AmbiguousProcessError) Error() string {
	pids := lo.Map(e.PIDs, func(pid int, _ int) string {
		return fmt.Sprintf("%d", pid)
	})
	return fmt.Sprintf("%d processes named %q (pids %s); select one by pid", len(e.PIDs), e.Name, strings.Join(pids, ", "))
}

// ModuleByName returns the module of p whose name matches name case-insensitively.
func ModuleByName(ctx context.Context, p Process, name string) (types.Module, error) {
	mods, err := p.Modules(ctx)
	if err != nil {
		return types.Module{}, fmt.Errorf("listing modules: %w", err)
	}

	mod, ok := lo.Find(mods, func(m types.Module) bool {
		return strings.EqualFold(m.Name, name)
	})
	if !ok {
		return types.Module{}, fmt.Errorf("%w: %s in %s", ErrModuleNotFound, name, p.Name())
	}
	return mod, nil
}
