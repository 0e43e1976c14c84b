package types

// Provenance tracks where a module image was read from.
type Provenance interface {
	Kind() string
	// Path returns displayable path (if applicable)
	Path() string
}

// ProcessProvenance for module images copied out of a live process.
type ProcessProvenance struct {
	PID         int
	ProcessName string
	Module      Module
}

// Kind returns "process".
func (p ProcessProvenance) Kind() string {
	return "process"
}

// Path returns the module's on-disk path, falling back to its name.
func (p ProcessProvenance) Path() string {
	if p.Module.Path != "" {
		return p.Module.Path
	}
	return p.Module.Name
}

// DumpProvenance for module images loaded from dump files.
type DumpProvenance struct {
	FilePath string
}

// Kind returns "dump".
func (d DumpProvenance) Kind() string {
	return "dump"
}

// Path returns the dump file path.
func (d DumpProvenance) Path() string {
	return d.FilePath
}
