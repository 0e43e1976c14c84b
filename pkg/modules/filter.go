package modules

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/praetorian-inc/sigscan/pkg/types"
	"github.com/samber/lo"
)

// FilterConfig selects modules by name.
type FilterConfig struct {
	IgnoreSystem bool     // drop modules on the system denylist
	Include      []string // glob patterns - only matching modules included
	Exclude      []string // glob patterns - matching modules excluded
}

// ParsePatterns splits a comma-separated string into individual patterns.
// Patterns are trimmed of whitespace.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies config to mods and keeps their order.
// Include is applied first, then exclude, then the system denylist.
// Empty include means "include all". Globs match the module name without
// regard to case. Returns error if any pattern is invalid.
func Filter(mods []types.Module, config FilterConfig) ([]types.Module, error) {
	include, err := compileGlobs(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(config.Exclude)
	if err != nil {
		return nil, err
	}

	return lo.Filter(mods, func(m types.Module, _ int) bool {
		if len(include) > 0 && !matchesAny(m.Name, include) {
			return false
		}
		if matchesAny(m.Name, exclude) {
			return false
		}
		return !config.IgnoreSystem || !IsSystemModule(m.Name)
	}), nil
}

// Match reports whether name matches the glob pattern, ignoring case.
func Match(pattern, name string) (bool, error) {
	globs, err := compileGlobs([]string{pattern})
	if err != nil {
		return false, err
	}
	return matchesAny(name, globs), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func compileGlobs(patterns []string) ([]string, error) {
	globs := make([]string, 0, len(patterns))
	for _, p := range patterns {
		g := strings.ToLower(p)
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchesAny(name string, globs []string) bool {
	name = strings.ToLower(name)
	return lo.SomeBy(globs, func(g string) bool {
		// patterns are validated up front
		ok, _ := doublestar.Match(g, name)
		return ok
	})
}
