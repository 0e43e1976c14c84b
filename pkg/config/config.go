// Package config loads the optional sigscan YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by the lookup functions when no file exists.
var ErrNoConfig = errors.New("no config file")

// FileConfig is the on-disk YAML configuration shape for sigscan.
// Nil fields were not set in the file.
type FileConfig struct {
	IgnoreOS      *bool    `yaml:"ignore_os"`
	Include       []string `yaml:"include"`
	Exclude       []string `yaml:"exclude"`
	Workers       *int     `yaml:"workers"`
	Readers       *int     `yaml:"readers"`
	MaxModuleSize *string  `yaml:"max_module_size"` // e.g. "512MiB"
	Format        *string  `yaml:"format"`
	Color         *string  `yaml:"color"`

	// Signatures maps alias names to signature text, used as "-s @name".
	Signatures map[string]string `yaml:"signatures"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if _, err := cfg.MaxModuleSizeBytes(); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a config file in dir.
// It supports .sigscan.yml and .sigscan.yaml.
func LoadLocal(dir string) (FileConfig, string, error) {
	for _, name := range []string{".sigscan.yml", ".sigscan.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			cfg, err := LoadFile(p)
			return cfg, p, err
		}
	}
	return FileConfig{}, "", ErrNoConfig
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return FileConfig{}, "", ErrNoConfig
	}
	p := filepath.Join(base, "sigscan", "config.yml")
	if _, err := os.Stat(p); err == nil {
		cfg, err := LoadFile(p)
		return cfg, p, err
	}
	return FileConfig{}, "", ErrNoConfig
}

// Load returns the first config found: explicit (if non-empty), then the
// local file in dir, then the global file. With no file it returns an empty
// config and an empty path. An explicit path that cannot be read is an error.
func Load(explicit, dir string) (FileConfig, string, error) {
	if explicit != "" {
		cfg, err := LoadFile(explicit)
		if err != nil {
			return cfg, "", fmt.Errorf("loading config: %w", err)
		}
		return cfg, explicit, nil
	}

	cfg, path, err := LoadLocal(dir)
	if !errors.Is(err, ErrNoConfig) {
		return cfg, path, err
	}
	cfg, path, err = LoadGlobal()
	if errors.Is(err, ErrNoConfig) {
		return FileConfig{}, "", nil
	}
	return cfg, path, err
}

// MaxModuleSizeBytes parses max_module_size. It returns 0 when unset.
func (fc FileConfig) MaxModuleSizeBytes() (uint64, error) {
	if fc.MaxModuleSize == nil || strings.TrimSpace(*fc.MaxModuleSize) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(*fc.MaxModuleSize)
	if err != nil {
		return 0, fmt.Errorf("invalid max_module_size %q: %w", *fc.MaxModuleSize, err)
	}
	return n, nil
}

// ResolveSignature expands "@name" to the aliased signature text. Any other
// text is returned unchanged.
func (fc FileConfig) ResolveSignature(arg string) (string, error) {
	name, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return arg, nil
	}
	sig, ok := fc.Signatures[name]
	if !ok {
		return "", fmt.Errorf("unknown signature alias %q (known: %s)", name, strings.Join(fc.Aliases(), ", "))
	}
	return sig, nil
}

// Aliases returns the configured signature alias names, sorted.
func (fc FileConfig) Aliases() []string {
	names := make([]string, 0, len(fc.Signatures))
	for name := range fc.Signatures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
