// Package report renders scan results as human-readable lines, a table or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/samber/lo"
)

// Format selects the output encoding.
type Format string

const (
	FormatHuman Format = "human"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHuman, FormatTable, FormatJSON:
		return f, nil
	case "":
		return FormatHuman, nil
	default:
		return "", fmt.Errorf("invalid format %q (want human, table or json)", s)
	}
}

// Options configures a Writer.
type Options struct {
	Format  Format
	Color   bool
	Verbose bool // human format: also print absolute addresses and a summary
}

// Writer renders results to an io.Writer.
type Writer struct {
	out    io.Writer
	opts   Options
	styles *styles
}

// New creates a Writer.
func New(out io.Writer, opts Options) *Writer {
	if opts.Format == "" {
		opts.Format = FormatHuman
	}
	return &Writer{out: out, opts: opts, styles: newStyles(opts.Color)}
}

// Begin announces a scan over n modules. Only the human format prints it.
func (w *Writer) Begin(n int) {
	if w.opts.Format != FormatHuman {
		return
	}
	fmt.Fprintf(w.out, "%s Iterating over %d different modules\n", w.styles.info.Sprint("[*]"), n)
}

// WriteResults renders one entry per module result, in order.
func (w *Writer) WriteResults(results []types.ModuleResult) error {
	switch w.opts.Format {
	case FormatJSON:
		if results == nil {
			results = []types.ModuleResult{}
		}
		return w.writeJSON(results)
	case FormatTable:
		return w.writeResultTable(results)
	default:
		for _, r := range results {
			w.writeHumanResult(r)
		}
		if w.opts.Verbose {
			w.writeSummary(results)
		}
		return nil
	}
}

func (w *Writer) writeHumanResult(r types.ModuleResult) {
	s := w.styles
	name := s.module.Sprint(r.Module.Name)

	switch {
	case r.Failed():
		fmt.Fprintf(w.out, "%s Failed to read module %s: %s\n", s.failed.Sprint("[!]"), name, r.ReadError)
	case r.Found:
		fmt.Fprintf(w.out, "%s Found signature at offset %s + %s", s.found.Sprint("[+]"), name, s.offset.Sprintf("0x%X", r.Offset))
		if w.opts.Verbose {
			fmt.Fprintf(w.out, " (%s)", s.offset.Sprintf("0x%X", r.Address))
		}
		fmt.Fprintf(w.out, "%s\n", w.partialNote(r))
	default:
		fmt.Fprintf(w.out, "%s No matching signature in module %s%s\n", s.notFound.Sprint("[-]"), name, w.partialNote(r))
	}
}

// partialNote marks results searched over an image with unreadable holes.
func (w *Writer) partialNote(r types.ModuleResult) string {
	if !r.Partial {
		return ""
	}
	return " " + w.styles.failed.Sprint("[partial image, unreadable pages searched as zero]")
}

func (w *Writer) writeSummary(results []types.ModuleResult) {
	found, failed := Summarize(results)
	fmt.Fprintf(w.out, "%s %d of %d modules matched, %d could not be read",
		w.styles.info.Sprint("[*]"), found, len(results), failed)
	if partial := lo.CountBy(results, func(r types.ModuleResult) bool { return r.Partial }); partial > 0 {
		fmt.Fprintf(w.out, ", %d only partially read", partial)
	}
	fmt.Fprintln(w.out)
}

// Summarize counts matched and unreadable modules.
func Summarize(results []types.ModuleResult) (found, failed int) {
	for _, r := range results {
		switch {
		case r.Failed():
			failed++
		case r.Found:
			found++
		}
	}
	return found, failed
}

func (w *Writer) writeResultTable(results []types.ModuleResult) error {
	table := tablewriter.NewWriter(w.out)
	table.Header("Module", "Base", "Size", "Offset", "Address", "Status")

	for _, r := range results {
		offset, addr := "-", "-"
		status := "not found"
		switch {
		case r.Failed():
			status = "error: " + r.ReadError
		case r.Found:
			offset = fmt.Sprintf("0x%X", r.Offset)
			addr = fmt.Sprintf("0x%X", r.Address)
			status = "found"
		}
		if r.Partial {
			status += " (partial)"
		}
		row := []string{
			r.Module.Name,
			fmt.Sprintf("0x%X", r.Module.Base),
			humanize.IBytes(r.Module.Size),
			offset,
			addr,
			status,
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	return table.Render()
}

func (w *Writer) writeJSON(v any) error {
	encoder := json.NewEncoder(w.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteModules lists modules without scanning them.
func (w *Writer) WriteModules(mods []types.Module) error {
	if mods == nil {
		mods = []types.Module{}
	}
	if w.opts.Format == FormatJSON {
		return w.writeJSON(mods)
	}

	table := tablewriter.NewWriter(w.out)
	table.Header("Name", "Base", "Size", "Path")
	for _, m := range mods {
		row := []string{m.Name, fmt.Sprintf("0x%X", m.Base), humanize.IBytes(m.Size), m.Path}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	return table.Render()
}
