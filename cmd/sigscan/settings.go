package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/praetorian-inc/sigscan/pkg/config"
	"github.com/praetorian-inc/sigscan/pkg/memory"
	"github.com/praetorian-inc/sigscan/pkg/modules"
	"github.com/praetorian-inc/sigscan/pkg/report"
	"github.com/praetorian-inc/sigscan/pkg/scanner"
	"github.com/spf13/cobra"
)

// newProvider is replaced in tests.
var newProvider = func() memory.Provider {
	return memory.NewNativeProvider()
}

// loadConfig reads the config file named by --config, or the first one found
// in the usual places.
func loadConfig(cmd *cobra.Command) (config.FileConfig, error) {
	cfg, path, err := config.Load(configPath, ".")
	if err != nil {
		return cfg, err
	}
	if path != "" {
		newLogger(cmd).Debugf("using config %s", path)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) scanner.Logger {
	return stderrLogger{out: cmd.ErrOrStderr(), verbose: verbose, quiet: quiet}
}

// changed reports whether a flag was set on the command line.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// filterSettings holds the module selection flags shared by scan and modules.
type filterSettings struct {
	ignoreOS bool
	include  string
	exclude  string
}

func (f filterSettings) resolve(cmd *cobra.Command, cfg config.FileConfig) modules.FilterConfig {
	fc := modules.FilterConfig{
		IgnoreSystem: f.ignoreOS,
		Include:      modules.ParsePatterns(f.include),
		Exclude:      modules.ParsePatterns(f.exclude),
	}
	if !changed(cmd, "ignore-os") && cfg.IgnoreOS != nil {
		fc.IgnoreSystem = *cfg.IgnoreOS
	}
	if !changed(cmd, "include") && cfg.Include != nil {
		fc.Include = cfg.Include
	}
	if !changed(cmd, "exclude") && cfg.Exclude != nil {
		fc.Exclude = cfg.Exclude
	}
	return fc
}

// newReportWriter builds the output writer from --format and --color,
// falling back to the config file for flags left at their defaults.
func newReportWriter(cmd *cobra.Command, cfg config.FileConfig, format string) (*report.Writer, error) {
	if !changed(cmd, "format") && cfg.Format != nil {
		format = *cfg.Format
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	mode := colorMode
	if !changed(cmd, "color") && cfg.Color != nil {
		mode = *cfg.Color
	}
	out := cmd.OutOrStdout()
	useColor, err := report.ColorEnabled(mode, out)
	if err != nil {
		return nil, err
	}

	return report.New(out, report.Options{Format: f, Color: useColor, Verbose: verbose}), nil
}

// parseSize accepts "0", plain byte counts and humanized sizes ("512MiB").
func parseSize(s string) (uint64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n, nil
}
