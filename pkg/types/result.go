package types

// ModuleResult is the outcome of searching one module for a signature.
type ModuleResult struct {
	Module    Module `json:"module"`
	Source    string `json:"source"` // provenance kind: "process" or "dump"
	Found     bool   `json:"found"`
	Offset    uint64 `json:"offset"`          // offset from Module.Base, valid when Found
	Address   uint64 `json:"address"`         // Module.Base + Offset, valid when Found
	ReadError string `json:"error,omitempty"` // set when the module could not be read

	// Partial is set when some of the image could not be read and those bytes
	// were searched as zeros.
	Partial bool `json:"partial,omitempty"`
}

// NewModuleResult builds a result from a search outcome.
func NewModuleResult(mod Module, prov Provenance, offset int, found bool) ModuleResult {
	r := ModuleResult{
		Module: mod,
		Found:  found,
	}
	if prov != nil {
		r.Source = prov.Kind()
	}
	if found {
		r.Offset = uint64(offset)
		r.Address = mod.Base + uint64(offset)
	}
	return r
}

// Failed reports whether the module could not be read.
func (r ModuleResult) Failed() bool {
	return r.ReadError != ""
}
