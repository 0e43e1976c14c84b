package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/sigscan/pkg/memory"
	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	name   string
	mods   []types.Module
	images map[uint64][]byte
}

func (f *fakeProcess) PID() int     { return 4242 }
func (f *fakeProcess) Name() string { return f.name }
func (f *fakeProcess) Close() error { return nil }

func (f *fakeProcess) Modules(ctx context.Context) ([]types.Module, error) {
	return f.mods, nil
}

func (f *fakeProcess) ReadMemory(addr uint64, buf []byte) error {
	img, ok := f.images[addr]
	if !ok {
		return &memory.ReadError{Addr: addr, Size: uint64(len(buf)), Err: fmt.Errorf("unmapped")}
	}
	copy(buf, img)
	return nil
}

type fakeProvider struct {
	proc  *fakeProcess
	opens int
}

func (p *fakeProvider) FindProcess(ctx context.Context, name string) (memory.Process, error) {
	p.opens++
	if name != p.proc.name {
		return nil, fmt.Errorf("%w: %s", memory.ErrProcessNotFound, name)
	}
	return p.proc, nil
}

func (p *fakeProvider) OpenProcess(ctx context.Context, pid int) (memory.Process, error) {
	p.opens++
	if pid != p.proc.PID() {
		return nil, fmt.Errorf("%w: pid %d", memory.ErrProcessNotFound, pid)
	}
	return p.proc, nil
}

func gameProcess() *fakeProcess {
	p := &fakeProcess{name: "game.exe", images: map[uint64][]byte{}}
	add := func(name string, base uint64, content []byte) {
		p.mods = append(p.mods, types.Module{Name: name, Base: base, Size: uint64(len(content))})
		p.images[base] = content
	}
	add("game.exe", 0x140000000, []byte{0x00, 0x4F, 0xAA, 0xBB, 0x1A})
	add("ntdll.dll", 0x7ffe00000000, []byte{0x4F, 0x00, 0x00, 0x1A})
	add("engine.dll", 0x7ff600000000, []byte{0x90, 0x90})
	// listed but not readable
	p.mods = append(p.mods, types.Module{Name: "guard.dll", Base: 0x7ff500000000, Size: 16})
	return p
}

// useProvider swaps the process provider for the duration of a test.
func useProvider(t *testing.T, p memory.Provider) {
	t.Helper()
	orig := newProvider
	newProvider = func() memory.Provider { return p }
	t.Cleanup(func() { newProvider = orig })
}

// isolateConfig keeps the developer's own config files out of tests.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	configPath = ""
	colorMode = "never"
	verbose = false
	quiet = false
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sigscan.yml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}
