//go:build windows

package memory

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/praetorian-inc/sigscan/pkg/types"
	"golang.org/x/sys/windows"
)

const pageSize = 4096

type windowsProcess struct {
	pid    int
	name   string
	handle windows.Handle
}

func openProcess(ctx context.Context, pid int, name string) (Process, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("OpenProcess(%d): %w", pid, err)
	}
	return &windowsProcess{pid: pid, name: name, handle: h}, nil
}

func (p *windowsProcess) PID() int     { return p.pid }
func (p *windowsProcess) Name() string { return p.name }

func (p *windowsProcess) Close() error {
	return windows.CloseHandle(p.handle)
}

// Modules walks a Toolhelp32 module snapshot.
func (p *windowsProcess) Modules(ctx context.Context) ([]types.Module, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(p.pid))
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
	}
	defer windows.CloseHandle(snap) //nolint

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var mods []types.Module
	for err = windows.Module32First(snap, &entry); err == nil; err = windows.Module32Next(snap, &entry) {
		mods = append(mods, types.Module{
			Name: windows.UTF16ToString(entry.Module[:]),
			Path: windows.UTF16ToString(entry.ExePath[:]),
			Base: uint64(entry.ModBaseAddr),
			Size: uint64(entry.ModBaseSize),
		})
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("Module32Next: %w", err)
	}
	return mods, nil
}

// ReadMemory copies exactly len(buf) bytes starting at addr.
func (p *windowsProcess) ReadMemory(addr uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	var n uintptr
	err := windows.ReadProcessMemory(p.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &n)
	if err != nil {
		return &ReadError{Addr: addr, Size: uint64(len(buf)), Err: err}
	}
	if n != uintptr(len(buf)) {
		return &ReadError{Addr: addr, Size: uint64(len(buf)), Err: fmt.Errorf("%w: %d of %d bytes", errShortRead, n, len(buf))}
	}
	return nil
}

// ReadModule reads the whole image in one call and falls back to reading
// page by page when some pages are not committed. Unreadable pages stay zero
// and are reported as *PartialReadError.
func (p *windowsProcess) ReadModule(mod types.Module, buf []byte) error {
	err := p.ReadMemory(mod.Base, buf)
	if err == nil {
		return nil
	}

	clear(buf)
	var unreadable uint64
	for off := 0; off < len(buf); off += pageSize {
		end := min(off+pageSize, len(buf))
		if p.ReadMemory(mod.Base+uint64(off), buf[off:end]) != nil {
			clear(buf[off:end])
			unreadable += uint64(end - off)
		}
	}
	switch unreadable {
	case 0:
		return nil
	case mod.Size:
		return err
	default:
		return &PartialReadError{Addr: mod.Base, Size: mod.Size, Unreadable: unreadable}
	}
}
