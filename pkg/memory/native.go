package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// NativeProvider opens processes on the local machine.
type NativeProvider struct{}

var _ Provider = (*NativeProvider)(nil)

// NewNativeProvider returns a Provider for the host operating system.
func NewNativeProvider() *NativeProvider {
	return &NativeProvider{}
}

// FindProcess resolves name to a single PID and opens it.
func (p *NativeProvider) FindProcess(ctx context.Context, name string) (Process, error) {
	pid, err := FindPID(ctx, name)
	if err != nil {
		return nil, err
	}
	return openProcess(ctx, pid, name)
}

// OpenProcess opens the process with the given PID.
func (p *NativeProvider) OpenProcess(ctx context.Context, pid int) (Process, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, fmt.Errorf("%w: pid %d", ErrProcessNotFound, pid)
		}
		return nil, fmt.Errorf("looking up pid %d: %w", pid, err)
	}

	name, err := proc.NameWithContext(ctx)
	if err != nil {
		name = fmt.Sprintf("pid-%d", pid)
	}
	return openProcess(ctx, pid, name)
}

// FindPID returns the PID of the only running process called name.
// Names are compared case-insensitively.
func FindPID(ctx context.Context, name string) (int, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing processes: %w", err)
	}

	var pids []int
	for _, p := range procs {
		procName, err := p.NameWithContext(ctx)
		if err != nil {
			// processes can exit or deny access while we iterate
			continue
		}
		if strings.EqualFold(procName, name) {
			pids = append(pids, int(p.Pid))
		}
	}

	switch len(pids) {
	case 0:
		return 0, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
	case 1:
		return pids[0], nil
	default:
		sort.Ints(pids)
		return 0, &AmbiguousProcessError{Name: name, PIDs: pids}
	}
}
