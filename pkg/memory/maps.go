package memory

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/praetorian-inc/sigscan/pkg/types"
)

// Region is one line of /proc/<pid>/maps.
type Region struct {
	Start uint64
	End   uint64
	Perms string // e.g. "r-xp"
	Path  string // backing file, pseudo name ("[heap]") or empty
}

// Readable reports whether the region can be read.
func (r Region) Readable() bool {
	return len(r.Perms) > 0 && r.Perms[0] == 'r'
}

// ParseMapsLine parses a single maps line. ok is false for malformed lines.
func ParseMapsLine(line string) (Region, bool) {
	// 7f1c2a000000-7f1c2a021000 r-xp 00000000 08:01 1234    /usr/lib/libc.so.6
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Region{}, false
	}

	bounds := strings.SplitN(fields[0], "-", 2)
	if len(bounds) != 2 {
		return Region{}, false
	}
	start, err := strconv.ParseUint(bounds[0], 16, 64)
	if err != nil {
		return Region{}, false
	}
	end, err := strconv.ParseUint(bounds[1], 16, 64)
	if err != nil || end < start {
		return Region{}, false
	}

	r := Region{Start: start, End: end, Perms: fields[1]}
	if len(fields) > 5 {
		// paths may contain spaces
		r.Path = strings.TrimSuffix(strings.Join(fields[5:], " "), " (deleted)")
	}
	return r, true
}

// ParseMaps reads a maps listing and groups file-backed regions into modules.
//
// A module spans from the lowest start to the highest end of all regions
// mapping the same file. Anonymous regions, pseudo regions ("[heap]",
// "[vdso]") and anon inodes are not modules. The second return value lists
// the readable regions of every module, keyed by module path.
func ParseMaps(r io.Reader) ([]types.Module, map[string][]Region, error) {
	var mods []types.Module
	index := make(map[string]int)
	readable := make(map[string][]Region)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		region, ok := ParseMapsLine(scanner.Text())
		if !ok || !isModulePath(region.Path) {
			continue
		}

		i, seen := index[region.Path]
		if !seen {
			i = len(mods)
			index[region.Path] = i
			mods = append(mods, types.Module{
				Name: filepath.Base(region.Path),
				Path: region.Path,
				Base: region.Start,
			})
		}

		mod := &mods[i]
		end := mod.Base + mod.Size
		if region.Start < mod.Base {
			mod.Base = region.Start
		}
		if region.End > end {
			end = region.End
		}
		mod.Size = end - mod.Base

		if region.Readable() {
			readable[region.Path] = append(readable[region.Path], region)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading maps: %w", err)
	}

	return mods, readable, nil
}

func isModulePath(path string) bool {
	return strings.HasPrefix(path, "/")
}
