package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/praetorian-inc/sigscan/pkg/config"
	"github.com/praetorian-inc/sigscan/pkg/enum"
	"github.com/praetorian-inc/sigscan/pkg/matcher"
	"github.com/praetorian-inc/sigscan/pkg/scanner"
	"github.com/praetorian-inc/sigscan/pkg/signature"
	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/spf13/cobra"
)

var (
	scanProcess       string
	scanPID           int
	scanModule        string
	scanSignature     string
	scanFilter        filterSettings
	scanDumps         []string
	scanFormat        string
	scanWorkers       int
	scanReaders       int
	scanMaxModuleSize string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Search process modules for a signature",
	Long: `Search the loaded modules of a process (or module dump files) for a byte
signature and report the lowest matching offset in each module.

Signatures are space-separated hex bytes with ? or ?? as wildcards, for
example "48 8B ?? ?? 05". "@name" refers to a signature alias from the config
file.`,
	Example: `  sigscan scan -p game.exe -s "48 8B 05 ?? ?? ?? ?? 48 85 C0" -i
  sigscan scan -p game.exe -m engine.dll -s @player_base
  sigscan scan --dump ./dumps -s "E8 ?? ?? ?? ?? 84 C0" --format table`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanProcess, "process", "p", "", "Name of the process to scan")
	scanCmd.Flags().IntVar(&scanPID, "pid", 0, "PID of the process to scan (overrides --process)")
	scanCmd.Flags().StringVarP(&scanModule, "module", "m", "", "Scan only this module (exact name, ignores filters)")
	scanCmd.Flags().StringVarP(&scanSignature, "signature", "s", "", `Signature to search for, e.g. "48 8B ?? ?? 05" or @alias`)
	scanCmd.Flags().BoolVarP(&scanFilter.ignoreOS, "ignore-os", "i", false, "Skip operating system and driver modules")
	scanCmd.Flags().StringVar(&scanFilter.include, "include", "", "Only scan modules matching glob (comma-separated)")
	scanCmd.Flags().StringVar(&scanFilter.exclude, "exclude", "", "Skip modules matching glob (comma-separated)")
	scanCmd.Flags().StringSliceVar(&scanDumps, "dump", nil, "Scan module dump files in this file or directory instead of a process (repeatable)")
	scanCmd.Flags().StringVar(&scanFormat, "format", "human", "Output format: human, table, json")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Parallel search workers per module (0 = all CPUs)")
	scanCmd.Flags().IntVar(&scanReaders, "readers", 0, "Modules read concurrently (0 = all CPUs)")
	scanCmd.Flags().StringVar(&scanMaxModuleSize, "max-module-size", "1GiB", "Skip modules larger than this (0 = no limit)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Compile first so a malformed signature aborts before any module is read
	if scanSignature == "" {
		return errors.New("a signature is required (-s)")
	}
	text, err := cfg.ResolveSignature(scanSignature)
	if err != nil {
		return err
	}
	sig, err := signature.Compile(text)
	if err != nil {
		return fmt.Errorf("compiling signature: %w", err)
	}

	opts, err := scanOptions(cmd, cfg)
	if err != nil {
		return err
	}
	s, err := scanner.New(sig, opts)
	if err != nil {
		return err
	}

	w, err := newReportWriter(cmd, cfg, scanFormat)
	if err != nil {
		return err
	}
	filter := scanFilter.resolve(cmd, cfg)

	var results []types.ModuleResult
	if len(scanDumps) > 0 {
		results, err = s.ScanDumps(ctx, filter, scanDumps...)
		if err != nil {
			return fmt.Errorf("scanning dumps: %w", err)
		}
		w.Begin(len(results))
		return w.WriteResults(results)
	}

	target := scanner.Target{
		ProcessName: scanProcess,
		PID:         scanPID,
		Module:      scanModule,
		Filter:      filter,
	}
	proc, err := s.Open(ctx, newProvider(), target)
	if err != nil {
		return fmt.Errorf("opening process: %w", err)
	}
	defer proc.Close()

	mods, err := s.SelectModules(ctx, proc, target)
	if err != nil {
		return err
	}
	w.Begin(len(mods))

	results, err = s.ScanModules(ctx, proc, mods)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", proc.Name(), err)
	}
	return w.WriteResults(results)
}

// scanOptions merges flags with the config file. Flags set on the command
// line win.
func scanOptions(cmd *cobra.Command, cfg config.FileConfig) (scanner.Options, error) {
	workers, readers := scanWorkers, scanReaders
	if !changed(cmd, "workers") && cfg.Workers != nil {
		workers = *cfg.Workers
	}
	if !changed(cmd, "readers") && cfg.Readers != nil {
		readers = *cfg.Readers
	}

	maxSize, err := parseSize(scanMaxModuleSize)
	if err != nil {
		return scanner.Options{}, err
	}
	if !changed(cmd, "max-module-size") && cfg.MaxModuleSize != nil {
		if maxSize, err = cfg.MaxModuleSizeBytes(); err != nil {
			return scanner.Options{}, err
		}
	}

	m := matcher.DefaultConfig()
	if workers > 0 {
		m.Workers = workers
	}

	return scanner.Options{
		Matcher: m,
		Enum:    enum.Config{Readers: readers, MaxModuleSize: maxSize},
		Logger:  newLogger(cmd),
	}, nil
}
