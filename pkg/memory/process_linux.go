//go:build linux

package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/praetorian-inc/sigscan/pkg/types"
	"golang.org/x/sys/unix"
)

// linuxProcess reads another process with process_vm_readv(2).
// It needs the same privileges as ptrace attach (same uid under Yama
// scope 1, or CAP_SYS_PTRACE).
type linuxProcess struct {
	pid  int
	name string

	mu       sync.Mutex
	readable map[string][]Region // refreshed by Modules
}

func openProcess(ctx context.Context, pid int, name string) (Process, error) {
	if _, err := os.Stat(fmt.Sprintf("/proc/%d", pid)); err != nil {
		return nil, fmt.Errorf("%w: pid %d", ErrProcessNotFound, pid)
	}
	return &linuxProcess{pid: pid, name: name}, nil
}

func (p *linuxProcess) PID() int     { return p.pid }
func (p *linuxProcess) Name() string { return p.name }
func (p *linuxProcess) Close() error { return nil }

// Modules parses /proc/<pid>/maps.
func (p *linuxProcess) Modules(ctx context.Context) ([]types.Module, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", p.pid))
	if err != nil {
		return nil, fmt.Errorf("opening maps: %w", err)
	}
	defer f.Close()

	mods, readable, err := ParseMaps(f)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.readable = readable
	p.mu.Unlock()
	return mods, nil
}

// ReadMemory copies exactly len(buf) bytes starting at addr.
func (p *linuxProcess) ReadMemory(addr uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(len(buf))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(buf)}}

	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return &ReadError{Addr: addr, Size: uint64(len(buf)), Err: err}
	}
	if n != len(buf) {
		return &ReadError{Addr: addr, Size: uint64(len(buf)), Err: fmt.Errorf("%w: %d of %d bytes", errShortRead, n, len(buf))}
	}
	return nil
}

// ReadModule copies the readable mappings of mod into buf. Holes between
// segments stay zeroed and are reported as *PartialReadError.
func (p *linuxProcess) ReadModule(mod types.Module, buf []byte) error {
	p.mu.Lock()
	regions, ok := p.readable[mod.Path]
	p.mu.Unlock()
	if !ok {
		return p.ReadMemory(mod.Base, buf)
	}

	clear(buf)

	var local []unix.Iovec
	var remote []unix.RemoteIovec
	want := 0
	for _, r := range regions {
		start, end := max(r.Start, mod.Base), min(r.End, mod.End())
		if start >= end {
			continue
		}
		off := start - mod.Base
		size := int(end - start)

		iov := unix.Iovec{Base: &buf[off]}
		iov.SetLen(size)
		local = append(local, iov)
		remote = append(remote, unix.RemoteIovec{Base: uintptr(start), Len: size})
		want += size
	}
	if want == 0 {
		return &ReadError{Addr: mod.Base, Size: mod.Size, Err: fmt.Errorf("module has no readable mappings")}
	}

	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return &ReadError{Addr: mod.Base, Size: mod.Size, Err: err}
	}
	if n != want {
		return &ReadError{Addr: mod.Base, Size: mod.Size, Err: fmt.Errorf("%w: %d of %d readable bytes", errShortRead, n, want)}
	}
	if uint64(want) < mod.Size {
		return &PartialReadError{Addr: mod.Base, Size: mod.Size, Unreadable: mod.Size - uint64(want)}
	}
	return nil
}
