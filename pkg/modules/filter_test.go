package modules

import (
	"testing"

	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(mods []types.Module) []string {
	return lo.Map(mods, func(m types.Module, _ int) string { return m.Name })
}

func sampleModules() []types.Module {
	return []types.Module{
		{Name: "game.exe", Base: 0x140000000, Size: 0x100000},
		{Name: "ntdll.dll", Base: 0x7ffe00000000, Size: 0x1f0000},
		{Name: "KERNEL32.DLL", Base: 0x7ffd00000000, Size: 0xc0000},
		{Name: "engine.dll", Base: 0x7ff600000000, Size: 0x400000},
		{Name: "libc.so.6", Base: 0x7f0000000000, Size: 0x200000},
	}
}

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string returns empty slice",
			input:    "",
			expected: []string{},
		},
		{
			name:     "single pattern",
			input:    "*.dll",
			expected: []string{"*.dll"},
		},
		{
			name:     "multiple patterns comma-separated",
			input:    "game.exe,engine*.dll,lib*",
			expected: []string{"game.exe", "engine*.dll", "lib*"},
		},
		{
			name:     "patterns with spaces are trimmed",
			input:    " game.exe , ,engine.dll ",
			expected: []string{"game.exe", "engine.dll"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePatterns(tt.input))
		})
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		config   FilterConfig
		expected []string
	}{
		{
			name:     "empty config keeps everything",
			config:   FilterConfig{},
			expected: []string{"game.exe", "ntdll.dll", "KERNEL32.DLL", "engine.dll", "libc.so.6"},
		},
		{
			name:     "ignore system modules",
			config:   FilterConfig{IgnoreSystem: true},
			expected: []string{"game.exe", "engine.dll", "libc.so.6"},
		},
		{
			name:     "include glob",
			config:   FilterConfig{Include: []string{"*.dll"}},
			expected: []string{"ntdll.dll", "KERNEL32.DLL", "engine.dll"},
		},
		{
			name:     "include is case-insensitive",
			config:   FilterConfig{Include: []string{"GAME.*"}},
			expected: []string{"game.exe"},
		},
		{
			name:     "exclude glob",
			config:   FilterConfig{Exclude: []string{"*.dll"}},
			expected: []string{"game.exe", "libc.so.6"},
		},
		{
			name:     "exclude applies after include",
			config:   FilterConfig{Include: []string{"*.dll"}, Exclude: []string{"engine*"}},
			expected: []string{"ntdll.dll", "KERNEL32.DLL"},
		},
		{
			name:     "denylist applies after include",
			config:   FilterConfig{Include: []string{"*.dll"}, IgnoreSystem: true},
			expected: []string{"engine.dll"},
		},
		{
			name:     "multiple includes",
			config:   FilterConfig{Include: []string{"game.exe", "lib*"}},
			expected: []string{"game.exe", "libc.so.6"},
		},
		{
			name:     "character class",
			config:   FilterConfig{Include: []string{"[gl]*"}},
			expected: []string{"game.exe", "libc.so.6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(sampleModules(), tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(got))
		})
	}
}

func TestFilter_NoMatches(t *testing.T) {
	got, err := Filter(sampleModules(), FilterConfig{Include: []string{"nothing*"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilter_EmptyInput(t *testing.T) {
	got, err := Filter(nil, FilterConfig{IgnoreSystem: true})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := Filter(sampleModules(), FilterConfig{Include: []string{"[abc"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid glob pattern")

	_, err = Filter(sampleModules(), FilterConfig{Exclude: []string{"{a,b"}})
	require.Error(t, err)
}

func TestMatch(t *testing.T) {
	ok, err := Match("Engine*.DLL", "engine_x64.dll")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match("engine?.dll", "engine.dll")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Match("[", "x")
	assert.Error(t, err)
}
