package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMaps = `55d0c0a00000-55d0c0a02000 r--p 00000000 08:01 131090                     /usr/bin/cat
55d0c0a02000-55d0c0a07000 r-xp 00002000 08:01 131090                     /usr/bin/cat
55d0c0a07000-55d0c0a0a000 r--p 00007000 08:01 131090                     /usr/bin/cat
55d0c1e4c000-55d0c1e6d000 rw-p 00000000 00:00 0                          [heap]
7f3a1c000000-7f3a1c028000 r--p 00000000 08:01 262401                     /usr/lib/x86_64-linux-gnu/libc.so.6
7f3a1c028000-7f3a1c1bd000 r-xp 00028000 08:01 262401                     /usr/lib/x86_64-linux-gnu/libc.so.6
7f3a1c1bd000-7f3a1c1c0000 ---p 001bd000 08:01 262401                     /usr/lib/x86_64-linux-gnu/libc.so.6
7f3a1c1c0000-7f3a1c215000 r--p 001c0000 08:01 262401                     /usr/lib/x86_64-linux-gnu/libc.so.6
7f3a1c300000-7f3a1c301000 rw-s 00000000 00:0e 1055                       anon_inode:[io_uring]
7f3a1c400000-7f3a1c401000 r--p 00000000 08:01 9999                       /tmp/my lib.so (deleted)
7ffd5a3e1000-7ffd5a402000 rw-p 00000000 00:00 0                          [stack]
7ffd5a5b3000-7ffd5a5b5000 r-xp 00000000 00:00 0                          [vdso]
`

func TestParseMapsLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Region
		ok   bool
	}{
		{
			name: "file backed",
			line: "7f3a1c028000-7f3a1c1bd000 r-xp 00028000 08:01 262401   /usr/lib/libc.so.6",
			want: Region{Start: 0x7f3a1c028000, End: 0x7f3a1c1bd000, Perms: "r-xp", Path: "/usr/lib/libc.so.6"},
			ok:   true,
		},
		{
			name: "anonymous",
			line: "7f3a1c028000-7f3a1c1bd000 rw-p 00000000 00:00 0",
			want: Region{Start: 0x7f3a1c028000, End: 0x7f3a1c1bd000, Perms: "rw-p"},
			ok:   true,
		},
		{
			name: "path with spaces and deleted marker",
			line: "1000-2000 r--p 00000000 08:01 5 /tmp/a b.so (deleted)",
			want: Region{Start: 0x1000, End: 0x2000, Perms: "r--p", Path: "/tmp/a b.so"},
			ok:   true,
		},
		{name: "too few fields", line: "1000-2000 r--p", ok: false},
		{name: "no dash", line: "10002000 r--p 0 0:0 0", ok: false},
		{name: "bad hex", line: "zz-2000 r--p 0 0:0 0", ok: false},
		{name: "end before start", line: "2000-1000 r--p 0 0:0 0", ok: false},
		{name: "empty", line: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMapsLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRegion_Readable(t *testing.T) {
	assert.True(t, Region{Perms: "r-xp"}.Readable())
	assert.False(t, Region{Perms: "---p"}.Readable())
	assert.False(t, Region{}.Readable())
}

func TestParseMaps(t *testing.T) {
	mods, readable, err := ParseMaps(strings.NewReader(sampleMaps))
	require.NoError(t, err)
	require.Len(t, mods, 3)

	assert.Equal(t, "cat", mods[0].Name)
	assert.Equal(t, "/usr/bin/cat", mods[0].Path)
	assert.Equal(t, uint64(0x55d0c0a00000), mods[0].Base)
	assert.Equal(t, uint64(0xa000), mods[0].Size)

	assert.Equal(t, "libc.so.6", mods[1].Name)
	assert.Equal(t, uint64(0x7f3a1c000000), mods[1].Base)
	assert.Equal(t, uint64(0x215000), mods[1].Size)

	assert.Equal(t, "my lib.so", mods[2].Name)
	assert.Equal(t, "/tmp/my lib.so", mods[2].Path)

	// the ---p guard region is part of the module span but not readable
	libc := readable["/usr/lib/x86_64-linux-gnu/libc.so.6"]
	require.Len(t, libc, 3)
	for _, r := range libc {
		assert.True(t, r.Readable())
	}
	assert.Len(t, readable["/usr/bin/cat"], 3)

	for _, m := range mods {
		assert.NotContains(t, m.Name, "[")
		assert.NotContains(t, m.Name, "anon_inode")
	}
}

func TestParseMaps_Empty(t *testing.T) {
	mods, readable, err := ParseMaps(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, mods)
	assert.Empty(t, readable)
}

func TestParseMaps_UnorderedRegions(t *testing.T) {
	in := "3000-4000 r--p 0 08:01 7 /lib/x.so\n1000-2000 r-xp 0 08:01 7 /lib/x.so\n"
	mods, _, err := ParseMaps(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, uint64(0x1000), mods[0].Base)
	assert.Equal(t, uint64(0x3000), mods[0].Size)
}
