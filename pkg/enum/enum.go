package enum

import (
	"context"
	"errors"
	"fmt"

	"github.com/praetorian-inc/sigscan/pkg/types"
)

// ErrModuleTooLarge is passed to the callback as readErr for modules over
// Config.MaxModuleSize.
var ErrModuleTooLarge = errors.New("module exceeds size limit")

// Callback receives one module image.
//
// content is only valid for the duration of the call. When the module could
// not be read, content is nil and readErr says why; returning nil continues
// with the next module. When only part of the image could be read, content
// holds it with the holes zeroed and readErr wraps memory.ErrPartialRead.
// A non-nil return stops enumeration.
type Callback func(content []byte, mod types.Module, prov types.Provenance, readErr error) error

// Enumerator discovers module images to scan from a source.
type Enumerator interface {
	// Enumerate yields module images from the source.
	// The callback may be invoked concurrently from several goroutines.
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for enumeration.
type Config struct {
	// Readers is the number of modules read concurrently (0 = runtime.NumCPU()).
	Readers int

	// MaxModuleSize is the largest module image to read (0 = no limit).
	MaxModuleSize uint64
}

func tooLarge(mod types.Module, limit uint64) error {
	return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrModuleTooLarge, mod.Name, mod.Size, limit)
}
