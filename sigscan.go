// Package sigscan finds masked byte signatures in the modules of running
// processes.
//
// # Basic Usage
//
// Compile a signature and search a buffer:
//
//	sig, err := sigscan.Compile("48 8B ?? ?? 05")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if offset, ok := sigscan.Find(sig, data); ok {
//	    fmt.Printf("Found at offset 0x%X\n", offset)
//	}
//
// # Scanning a Process
//
// Search every non-system module of a process:
//
//	results, err := sigscan.ScanProcess(ctx, "game.exe", sig, sigscan.WithIgnoreSystem())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, r := range results {
//	    if r.Found {
//	        fmt.Printf("%s + 0x%X\n", r.Module.Name, r.Offset)
//	    }
//	}
package sigscan

import (
	"context"

	"github.com/praetorian-inc/sigscan/pkg/matcher"
	"github.com/praetorian-inc/sigscan/pkg/memory"
	"github.com/praetorian-inc/sigscan/pkg/modules"
	"github.com/praetorian-inc/sigscan/pkg/scanner"
	"github.com/praetorian-inc/sigscan/pkg/signature"
	"github.com/praetorian-inc/sigscan/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/sigscan" without subpackages.
type (
	// Signature is a compiled masked byte pattern.
	Signature = signature.Signature

	// Module describes one loaded image of a process.
	Module = types.Module

	// ModuleResult is the outcome of searching one module.
	ModuleResult = types.ModuleResult

	// Logger receives scanner diagnostics.
	Logger = scanner.Logger
)

// ErrMalformedSignature is matched by errors.Is for every compile failure.
var ErrMalformedSignature = signature.ErrMalformedSignature

// Compile parses a pattern such as "48 8B ?? ?? 05".
func Compile(pattern string) (*Signature, error) {
	return signature.Compile(pattern)
}

// MustCompile is like Compile but panics on a malformed pattern.
func MustCompile(pattern string) *Signature {
	return signature.MustCompile(pattern)
}

// Find returns the lowest offset in subject where sig matches.
func Find(sig *Signature, subject []byte) (int, bool) {
	return matcher.Find(sig, subject)
}

// scanConfig holds ScanProcess configuration.
type scanConfig struct {
	provider memory.Provider
	module   string
	filter   modules.FilterConfig
	workers  int
	logger   Logger
}

// Option configures ScanProcess.
type Option func(*scanConfig)

// WithIgnoreSystem skips operating system and driver modules.
func WithIgnoreSystem() Option {
	return func(c *scanConfig) {
		c.filter.IgnoreSystem = true
	}
}

// WithModule restricts the scan to the module with the given name.
// Filters do not apply to it.
func WithModule(name string) Option {
	return func(c *scanConfig) {
		c.module = name
	}
}

// WithInclude scans only modules matching one of the glob patterns.
func WithInclude(patterns ...string) Option {
	return func(c *scanConfig) {
		c.filter.Include = append(c.filter.Include, patterns...)
	}
}

// WithExclude skips modules matching any of the glob patterns.
func WithExclude(patterns ...string) Option {
	return func(c *scanConfig) {
		c.filter.Exclude = append(c.filter.Exclude, patterns...)
	}
}

// WithWorkers sets the number of search workers per module.
// Default is GOMAXPROCS.
func WithWorkers(workers int) Option {
	return func(c *scanConfig) {
		c.workers = workers
	}
}

// WithProvider replaces the native process provider.
func WithProvider(p memory.Provider) Option {
	return func(c *scanConfig) {
		c.provider = p
	}
}

// WithLogger sets the logger for scanner diagnostics.
func WithLogger(l Logger) Option {
	return func(c *scanConfig) {
		c.logger = l
	}
}

// ScanProcess searches the modules of the process named processName for sig.
// Results are in module load order; unreadable modules have ReadError set.
func ScanProcess(ctx context.Context, processName string, sig *Signature, opts ...Option) ([]ModuleResult, error) {
	config := &scanConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.provider == nil {
		config.provider = memory.NewNativeProvider()
	}

	m := matcher.DefaultConfig()
	if config.workers > 0 {
		m.Workers = config.workers
	}

	s, err := scanner.New(sig, scanner.Options{Matcher: m, Logger: config.logger})
	if err != nil {
		return nil, err
	}

	return s.ScanProcess(ctx, config.provider, scanner.Target{
		ProcessName: processName,
		Module:      config.module,
		Filter:      config.filter,
	})
}
