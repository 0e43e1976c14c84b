package main

import (
	"fmt"
	"io"
)

// stderrLogger implements scanner.Logger for the CLI.
type stderrLogger struct {
	out     io.Writer
	verbose bool
	quiet   bool
}

func (l stderrLogger) Debugf(format string, args ...interface{}) {
	if !l.verbose || l.quiet {
		return
	}
	fmt.Fprintf(l.out, "[debug] "+format+"\n", args...)
}

func (l stderrLogger) Warnf(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, "[warn] "+format+"\n", args...)
}
