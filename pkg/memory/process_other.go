//go:build !linux && !windows

package memory

import (
	"context"
	"fmt"
	"runtime"
)

func openProcess(ctx context.Context, pid int, name string) (Process, error) {
	return nil, fmt.Errorf("%w (%s)", ErrUnsupportedPlatform, runtime.GOOS)
}
