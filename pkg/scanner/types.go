package scanner

import (
	"github.com/praetorian-inc/sigscan/pkg/enum"
	"github.com/praetorian-inc/sigscan/pkg/matcher"
	"github.com/praetorian-inc/sigscan/pkg/modules"
)

// Target selects the process and modules to scan.
type Target struct {
	ProcessName string `json:"process,omitempty"`
	PID         int    `json:"pid,omitempty"` // takes precedence over ProcessName when set

	// Module names a single module to scan. It is looked up by exact name
	// and bypasses Filter.
	Module string `json:"module,omitempty"`

	Filter modules.FilterConfig `json:"-"`
}

// Options configures a Scanner.
type Options struct {
	Matcher matcher.Config
	Enum    enum.Config
	Logger  Logger
}

// Logger receives diagnostic messages from the scanner.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// NoopLogger is a no-op logger
type NoopLogger struct{}

func (NoopLogger) Debugf(format string, args ...interface{}) {}
func (NoopLogger) Warnf(format string, args ...interface{})  {}
