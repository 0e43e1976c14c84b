package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorEnabled resolves a --color mode for out. In auto mode colors are used
// only when out is a terminal and NO_COLOR is not set.
func ColorEnabled(mode string, out io.Writer) (bool, error) {
	switch mode {
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	case ColorAuto, "":
		f, ok := out.(*os.File)
		if !ok || os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
}

// styles holds color formatters for report output
type styles struct {
	info     *color.Color
	found    *color.Color
	notFound *color.Color
	failed   *color.Color
	module   *color.Color
	offset   *color.Color
	heading  *color.Color
}

// newStyles creates color formatters for report output
// enabled=false respects --color=never and NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		info:     color.New(color.FgHiBlue),
		found:    color.New(color.Bold, color.FgHiGreen),
		notFound: color.New(color.FgHiBlack),
		failed:   color.New(color.Bold, color.FgRed),
		module:   color.New(color.Bold, color.FgHiWhite),
		offset:   color.New(color.FgYellow),
		heading:  color.New(color.Bold),
	}

	for _, c := range []*color.Color{s.info, s.found, s.notFound, s.failed, s.module, s.offset, s.heading} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return s
}
