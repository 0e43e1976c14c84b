package matcher

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/praetorian-inc/sigscan/pkg/signature"
)

// Benchmarks compare the sequential, anchored and parallel scan strategies.
//
// Subjects are random bytes with a single match planted near the end, which
// is the worst case for a lowest-offset search.

// generateModuleImage creates a pseudo module image with sig planted at the end.
func generateModuleImage(size int, needle []byte) []byte {
	content := make([]byte, size)
	rand.New(rand.NewSource(int64(size))).Read(content)
	copy(content[size-len(needle)-16:], needle)
	return content
}

func BenchmarkFind(b *testing.B) {
	sig := signature.MustCompile("48 8B 05 ?? ?? ?? ?? 48 8B D9 F3 0F 10 50 ??")
	needle := []byte{0x48, 0x8B, 0x05, 1, 2, 3, 4, 0x48, 0x8B, 0xD9, 0xF3, 0x0F, 0x10, 0x50, 5}

	strategies := map[string]Config{
		"brute_force": {Workers: 1, DisableAnchor: true},
		"anchored":    {Workers: 1},
		"prefiltered": {Workers: 1, EnablePrefilter: true},
		"parallel":    DefaultConfig(),
		"parallel_bf": {DisableAnchor: true},
	}

	for _, size := range []int{64 << 10, 1 << 20, 16 << 20} {
		content := generateModuleImage(size, needle)
		for name, cfg := range strategies {
			m := New(sig, cfg)
			b.Run(fmt.Sprintf("%s/%dKB", name, size>>10), func(b *testing.B) {
				b.SetBytes(int64(size))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, ok := m.Find(content); !ok {
						b.Fatal("planted signature not found")
					}
				}
			})
		}
	}
}

// BenchmarkFind_Prefilter measures what the Aho-Corasick pass costs on a
// large module image where the anchor is rare.
func BenchmarkFind_Prefilter(b *testing.B) {
	sig := signature.MustCompile("48 8B 05 ?? ?? ?? ?? 48 85 C0")
	needle := []byte{0x48, 0x8B, 0x05, 1, 2, 3, 4, 0x48, 0x85, 0xC0}
	size := 128 << 20
	content := generateModuleImage(size, needle)

	prefiltered := DefaultConfig()
	prefiltered.EnablePrefilter = true

	for _, bc := range []struct {
		name string
		cfg  Config
	}{
		{"default", DefaultConfig()},
		{"prefiltered", prefiltered},
	} {
		m := New(sig, bc.cfg)
		b.Run(bc.name, func(b *testing.B) {
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, ok := m.Find(content); !ok {
					b.Fatal("planted signature not found")
				}
			}
		})
	}
}
