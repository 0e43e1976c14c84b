package enum

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpEnumerator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.dll@0x7ff600000000.bin"), []byte{0x48, 0x8B}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.bin"), []byte{0x90}, 0o644))

	e, err := NewDumpEnumerator(dir, nil, Config{})
	require.NoError(t, err)

	mods, err := e.Modules(context.Background())
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "game.dll", mods[0].Name)
	assert.Equal(t, uint64(0x7ff600000000), mods[0].Base)

	got := newCollected()
	require.NoError(t, e.Enumerate(context.Background(), got.callback))

	assert.Equal(t, []byte{0x48, 0x8B}, got.content["game.dll"])
	assert.Equal(t, []byte{0x90}, got.content["other.bin"])

	prov, ok := got.provs["game.dll"].(types.DumpProvenance)
	require.True(t, ok)
	assert.Equal(t, "dump", prov.Kind())
	assert.Equal(t, filepath.Join(dir, "game.dll@0x7ff600000000.bin"), prov.Path())

	assert.Equal(t, 0, e.Process().PID())
}

func TestDumpEnumerator_Missing(t *testing.T) {
	_, err := NewDumpEnumerator(filepath.Join(t.TempDir(), "missing"), nil, Config{})
	assert.Error(t, err)
}

func TestDumpEnumerator_MaxModuleSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.bin"), make([]byte, 64), 0o644))

	e, err := NewDumpEnumerator(dir, nil, Config{MaxModuleSize: 32})
	require.NoError(t, err)

	got := newCollected()
	require.NoError(t, e.Enumerate(context.Background(), got.callback))
	assert.ErrorIs(t, got.errs["big.bin"], ErrModuleTooLarge)
}
