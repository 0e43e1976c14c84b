package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/praetorian-inc/sigscan/pkg/types"
)

// dumpBaseMarker separates the module name from its load address in a dump
// file name: "game.dll@0x7ff600000000.bin".
const dumpBaseMarker = "@0x"

// DumpProcess serves module images from raw dump files.
//
// Each regular file is one module. The module base is 0 unless the file name
// carries a "@0x<hex>" suffix, in which case the name is the part before the
// marker.
type DumpProcess struct {
	root string
	mods []types.Module
}

// OpenDump opens a single dump file or every regular file in a directory
// (non-recursive, sorted by name).
func OpenDump(path string) (*DumpProcess, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening dump: %w", err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading dump directory: %w", err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				paths = append(paths, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	d := &DumpProcess{root: path}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("opening dump: %w", err)
		}
		name, base := ParseDumpName(filepath.Base(p))
		d.mods = append(d.mods, types.Module{
			Name: name,
			Path: p,
			Base: base,
			Size: uint64(fi.Size()),
		})
	}
	return d, nil
}

// ParseDumpName splits a dump file name into module name and base address.
func ParseDumpName(fileName string) (string, uint64) {
	i := strings.LastIndex(fileName, dumpBaseMarker)
	if i <= 0 {
		return fileName, 0
	}

	rest := fileName[i+len(dumpBaseMarker):]
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		rest = rest[:dot]
	}
	base, err := strconv.ParseUint(rest, 16, 64)
	if err != nil {
		return fileName, 0
	}
	return fileName[:i], base
}

// PID returns 0; dumps have no live process.
func (d *DumpProcess) PID() int { return 0 }

// Name returns the dump path's base name.
func (d *DumpProcess) Name() string { return filepath.Base(d.root) }

// Close is a no-op; files are opened per read.
func (d *DumpProcess) Close() error { return nil }

// Modules returns one module per dump file.
func (d *DumpProcess) Modules(ctx context.Context) ([]types.Module, error) {
	out := make([]types.Module, len(d.mods))
	copy(out, d.mods)
	return out, nil
}

// ReadMemory reads from the dump file of the module containing addr.
// The range must lie within a single module.
func (d *DumpProcess) ReadMemory(addr uint64, buf []byte) error {
	size := uint64(len(buf))
	for _, m := range d.mods {
		if !m.Contains(addr) && !(size == 0 && addr == m.End()) {
			continue
		}
		if addr+size > m.End() {
			return &ReadError{Addr: addr, Size: size, Err: fmt.Errorf("%w: range crosses end of %s", errShortRead, m.Name)}
		}
		if err := readFileAt(m.Path, int64(addr-m.Base), buf); err != nil {
			return &ReadError{Addr: addr, Size: size, Err: err}
		}
		return nil
	}
	return &ReadError{Addr: addr, Size: size, Err: errors.New("address not backed by any dump file")}
}

func readFileAt(path string, off int64, buf []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.ReadAt(buf, off)
	if errors.Is(err, io.EOF) {
		// the file shrank since it was opened
		return fmt.Errorf("%w: %d of %d bytes", errShortRead, n, len(buf))
	}
	return err
}
