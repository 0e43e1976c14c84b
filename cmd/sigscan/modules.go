package main

import (
	"context"
	"fmt"

	"github.com/praetorian-inc/sigscan/pkg/enum"
	"github.com/praetorian-inc/sigscan/pkg/modules"
	"github.com/praetorian-inc/sigscan/pkg/scanner"
	"github.com/praetorian-inc/sigscan/pkg/signature"
	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/spf13/cobra"
)

var (
	modulesProcess string
	modulesPID     int
	modulesFilter  filterSettings
	modulesDump    string
	modulesFormat  string
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules of a process",
	Long:  "List the loaded modules of a process (or the files of a dump directory) after filtering",
	Args:  cobra.NoArgs,
	RunE:  runModules,
}

func init() {
	modulesCmd.Flags().StringVarP(&modulesProcess, "process", "p", "", "Name of the process")
	modulesCmd.Flags().IntVar(&modulesPID, "pid", 0, "PID of the process (overrides --process)")
	modulesCmd.Flags().BoolVarP(&modulesFilter.ignoreOS, "ignore-os", "i", false, "Hide operating system and driver modules")
	modulesCmd.Flags().StringVar(&modulesFilter.include, "include", "", "Only list modules matching glob (comma-separated)")
	modulesCmd.Flags().StringVar(&modulesFilter.exclude, "exclude", "", "Hide modules matching glob (comma-separated)")
	modulesCmd.Flags().StringVar(&modulesDump, "dump", "", "List dump files in this file or directory instead of a process")
	modulesCmd.Flags().StringVar(&modulesFormat, "format", "table", "Output format: table, json")
}

func runModules(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	filter := modulesFilter.resolve(cmd, cfg)

	var mods []types.Module
	if modulesDump != "" {
		e, err := enum.NewDumpEnumerator(modulesDump, nil, enum.Config{})
		if err != nil {
			return err
		}
		all, err := e.Modules(ctx)
		if err != nil {
			return err
		}
		if mods, err = modules.Filter(all, filter); err != nil {
			return err
		}
	} else {
		mods, err = listProcessModules(ctx, cmd, filter)
		if err != nil {
			return err
		}
	}

	w, err := newReportWriter(cmd, cfg, modulesFormat)
	if err != nil {
		return err
	}
	return w.WriteModules(mods)
}

func listProcessModules(ctx context.Context, cmd *cobra.Command, filter modules.FilterConfig) ([]types.Module, error) {
	// the scanner resolves targets and applies filters; the signature is unused
	s, err := scanner.New(signature.MustCompile(""), scanner.Options{Logger: newLogger(cmd)})
	if err != nil {
		return nil, err
	}

	target := scanner.Target{ProcessName: modulesProcess, PID: modulesPID, Filter: filter}
	proc, err := s.Open(ctx, newProvider(), target)
	if err != nil {
		return nil, fmt.Errorf("opening process: %w", err)
	}
	defer proc.Close()

	return s.SelectModules(ctx, proc, target)
}
