package modules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSystemModule(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"ntdll.dll", true},
		{"NTDLL.DLL", true},
		{"Kernel32.dll", true},
		{"kernel.appcore.dll", true},
		{"vcruntime140_1.dll", true},
		{"nvwgf2umx.dll", true},
		{"game.exe", false},
		{"ntdll", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSystemModule(tt.name))
		})
	}
}

func TestSystemModules(t *testing.T) {
	list := SystemModules()
	assert.Len(t, list, len(systemModules), "denylist has duplicates")

	for _, name := range list {
		assert.Equal(t, strings.ToLower(name), name)
		assert.True(t, strings.HasSuffix(name, ".dll"), name)
	}

	list[0] = "changed.dll"
	assert.False(t, IsSystemModule("changed.dll"))
	assert.Equal(t, "ntdll.dll", SystemModules()[0])
}
