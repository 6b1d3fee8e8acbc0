// Package config loads moebuild settings from YAML files.
//
// Files are layered: built-in defaults, then the user file under
// $XDG_CONFIG_HOME/moebuild/config.yaml, then <module>/moebuild.yaml, then an
// explicit --config file. Later files override keys set by earlier ones.
// Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/corey/moebuild/internal/domain/sanitizer"
	"github.com/corey/moebuild/internal/domain/variant"
	"gopkg.in/yaml.v3"
)

// ModuleFile is the per-module config file name.
const ModuleFile = "moebuild.yaml"

// DefaultUITimeout is the fixed deadline for the UI validator.
const DefaultUITimeout = 5 * time.Second

// Section holds the markers bounding the stripped descriptor section.
type Section struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Config is the effective configuration.
type Config struct {
	SDK               string            `yaml:"sdk"`
	UITimeout         time.Duration     `yaml:"ui_timeout"`
	ScanScope         string            `yaml:"scan_scope"`
	ForbiddenKeywords []string          `yaml:"forbidden_keywords"`
	Section           Section           `yaml:"section"`
	ProfileDir        string            `yaml:"profile_dir"`
	BaseAddresses     map[string]uint64 `yaml:"base_addresses"`
	MainDexFiles      []string          `yaml:"main_dex_files"`
	History           bool              `yaml:"history"`

	// Sources lists the files that were merged, in order.
	Sources []string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UITimeout:         DefaultUITimeout,
		ScanScope:         string(sanitizer.ScopeRemainder),
		ForbiddenKeywords: []string{sanitizer.DefaultKeyword},
		Section: Section{
			Start: sanitizer.DefaultSectionStart,
			End:   sanitizer.DefaultSectionEnd,
		},
		ProfileDir: DefaultProfileDir(),
		History:    true,
	}
}

// UserPath is the per-user config file location.
func UserPath() string {
	return filepath.Join(xdg.ConfigHome, "moebuild", "config.yaml")
}

// DefaultProfileDir is where the native toolchain looks for installed
// provisioning profiles.
func DefaultProfileDir() string {
	return filepath.Join(xdg.Home, "Library", "MobileDevice", "Provisioning Profiles")
}

// Load layers the user file, the module file and explicit over the defaults.
// The user and module files are optional; explicit, when set, must exist.
func Load(modulePath, explicit string) (*Config, error) {
	cfg := Default()

	if err := cfg.MergeFile(UserPath(), false); err != nil {
		return nil, err
	}
	if modulePath != "" {
		if err := cfg.MergeFile(filepath.Join(modulePath, ModuleFile), false); err != nil {
			return nil, err
		}
	}
	if explicit != "" {
		if err := cfg.MergeFile(explicit, true); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// MergeFile decodes path over the current values. A missing optional file
// is skipped.
func (c *Config) MergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := c.merge(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.Sources = append(c.Sources, path)
	return nil
}

func (c *Config) merge(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks value ranges after merging.
func (c *Config) Validate() error {
	if _, err := sanitizer.ParseScope(c.ScanScope); err != nil {
		return err
	}
	if c.UITimeout <= 0 {
		return fmt.Errorf("ui_timeout must be positive, got %s", c.UITimeout)
	}
	if len(c.ForbiddenKeywords) == 0 {
		return errors.New("forbidden_keywords must not be empty")
	}
	for _, kw := range c.ForbiddenKeywords {
		if kw == "" {
			return errors.New("forbidden_keywords contains an empty keyword")
		}
	}
	if c.Section.Start == "" || c.Section.End == "" {
		return errors.New("section.start and section.end must both be set")
	}
	return nil
}

// BaseAddress returns the image base for an architecture family, preferring
// a configured override.
func (c *Config) BaseAddress(family string) (uint64, error) {
	if base, ok := c.BaseAddresses[family]; ok {
		return base, nil
	}
	return variant.BaseAddress(family)
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
