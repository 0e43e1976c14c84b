package types

import "fmt"

// Module is a loaded executable or library image inside a process.
type Module struct {
	Name string `json:"name"`           // e.g., "kernel32.dll", "libc.so.6"
	Path string `json:"path,omitempty"` // full path on disk, if known
	Base uint64 `json:"base"`           // load address
	Size uint64 `json:"size"`           // image size in bytes
}

// End returns one past the last address of the module.
func (m Module) End() uint64 {
	return m.Base + m.Size
}

// Contains reports whether addr lies inside the module.
func (m Module) Contains(addr uint64) bool {
	return addr >= m.Base && addr < m.End()
}

// String returns "name [base-end)".
func (m Module) String() string {
	return fmt.Sprintf("%s [0x%X-0x%X)", m.Name, m.Base, m.End())
}
