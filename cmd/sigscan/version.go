package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Stamped by the release build:
//
//	go build -ldflags "-X main.version=1.2.0 -X main.commit=$(git rev-parse --short HEAD)" ./cmd/sigscan
//
// See the Makefile. Unstamped binaries fall back to the build info.
var (
	version string
	commit  string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the sigscan release, source commit and toolchain",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	info, _ := debug.ReadBuildInfo()
	v, c := resolveVersion(version, commit, info)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sigscan v%s\n", v)
	fmt.Fprintf(out, "Commit: %s\n", c)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

// resolveVersion prefers ldflags values, then the module version recorded by
// `go install module@version`, then the VCS stamp of a checkout build.
func resolveVersion(stampedVersion, stampedCommit string, info *debug.BuildInfo) (string, string) {
	v := strings.TrimPrefix(stampedVersion, "v")
	c := stampedCommit

	if info != nil {
		if v == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = strings.TrimPrefix(info.Main.Version, "v")
		}
		if c == "" {
			var dirty bool
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value[:min(len(s.Value), 12)]
				case "vcs.modified":
					dirty = s.Value == "true"
				}
			}
			if c != "" && dirty {
				c += "-dirty"
			}
		}
	}

	if v == "" {
		v = "0.0.0-dev"
	}
	if c == "" {
		c = "unknown"
	}
	return v, c
}
