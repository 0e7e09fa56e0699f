// Package config loads namelint settings from defaults, a namelint.yaml file,
// NAMELINT_ environment variables and command-line flags, in that order of
// precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/namelint/internal/catalog"
	"github.com/leapstack-labs/namelint/internal/state"
	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/extract"
	"github.com/leapstack-labs/namelint/pkg/lint"
	"github.com/leapstack-labs/namelint/pkg/scan"
)

// Config holds all CLI configuration options.
type Config struct {
	Format  string         `koanf:"format"`
	Jobs    int            `koanf:"jobs"`
	Verbose bool           `koanf:"verbose"`
	Log     LogConfig      `koanf:"log"`
	Scan    ScanConfig     `koanf:"scan"`
	Extract ExtractConfig  `koanf:"extract"`
	Lint    LintConfig     `koanf:"lint"`
	Rules   map[string]any `koanf:"rules"`
	History HistoryConfig  `koanf:"history"`

	// ProjectRoot is the directory holding the config file in use, or the
	// search directory when there is none. Relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
	// File is the config file in use; empty when only defaults apply.
	File string `koanf:"-"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

// ScanConfig mirrors scan.Options.
type ScanConfig struct {
	Ignore         []string `koanf:"ignore"`
	IgnoreDirs     []string `koanf:"ignore_dirs"`
	StyleExt       []string `koanf:"style_ext"`
	ScriptExt      []string `koanf:"script_ext"`
	MaxFileSize    int64    `koanf:"max_file_size"`
	FollowSymlinks bool     `koanf:"follow_symlinks"`
}

// ExtractConfig mirrors extract.Options.
type ExtractConfig struct {
	SyntaxCheck bool `koanf:"syntax_check"`
}

// LintConfig selects rules and the report threshold.
type LintConfig struct {
	// Defaults includes the embedded rule catalog under the user's rules.
	Defaults bool     `koanf:"defaults"`
	Disabled []string `koanf:"disabled"`
	Only     []string `koanf:"only"`
	// Severity is the least severe level reported: error or warning.
	Severity string `koanf:"severity"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	DSN string `koanf:"dsn"`
}

// Default values.
const (
	DefaultFormat    = "auto"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultSeverity  = "warning"
)

func defaults() map[string]any {
	return map[string]any{
		"format":               DefaultFormat,
		"jobs":                 0,
		"verbose":              false,
		"log.level":            DefaultLogLevel,
		"log.format":           DefaultLogFormat,
		"scan.ignore":          []string{},
		"scan.ignore_dirs":     slices.Clone(scan.DefaultIgnoreDirs),
		"scan.style_ext":       slices.Clone(scan.DefaultStyleExt),
		"scan.script_ext":      slices.Clone(scan.DefaultScriptExt),
		"scan.max_file_size":   scan.DefaultMaxFileSize,
		"scan.follow_symlinks": false,
		"extract.syntax_check": true,
		"lint.defaults":        true,
		"lint.disabled":        []string{},
		"lint.only":            []string{},
		"lint.severity":        DefaultSeverity,
		"history.dsn":          state.DefaultDSN,
	}
}

// Validate checks values that koanf cannot type-check.
func (c *Config) Validate() error {
	var errs []error
	if c.Jobs < 0 {
		errs = append(errs, invalid("jobs", fmt.Errorf("must not be negative, got %d", c.Jobs)))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, invalid("log.level", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, invalid("log.format", fmt.Errorf("unknown format %q (want text or json)", c.Log.Format)))
	}
	if _, err := c.Threshold(); err != nil {
		errs = append(errs, invalid("lint.severity", err))
	}
	if c.Scan.MaxFileSize < 0 {
		errs = append(errs, invalid("scan.max_file_size", fmt.Errorf("must not be negative, got %d", c.Scan.MaxFileSize)))
	}
	return errors.Join(errs...)
}

func invalid(field string, err error) error {
	return &lint.ConfigError{Field: field, Err: err}
}

// LogLevel parses Log.Level; Verbose forces debug.
func (c *Config) LogLevel() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelWarn, fmt.Errorf("unknown level %q", c.Log.Level)
	}
	return level, nil
}

// Threshold parses Lint.Severity.
func (c *Config) Threshold() (core.Severity, error) {
	sev, ok := core.ParseSeverity(c.Lint.Severity)
	if !ok {
		return core.SeverityWarning, fmt.Errorf("unknown severity %q (want error or warning)", c.Lint.Severity)
	}
	return sev, nil
}

// ScanOptions returns the scanner options.
func (c *Config) ScanOptions() scan.Options {
	return scan.Options{
		StyleExt:       c.Scan.StyleExt,
		ScriptExt:      c.Scan.ScriptExt,
		IgnoreDirs:     c.Scan.IgnoreDirs,
		Ignore:         c.Scan.Ignore,
		MaxFileSize:    c.Scan.MaxFileSize,
		FollowSymlinks: c.Scan.FollowSymlinks,
	}
}

// ExtractOptions returns the extractor options.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{SyntaxCheck: c.Extract.SyntaxCheck}
}

// RuleConfig returns the enable/disable settings for the registry loader.
func (c *Config) RuleConfig() *lint.Config {
	cfg := lint.NewConfig()
	for _, id := range c.Lint.Disabled {
		if id = strings.TrimSpace(id); id != "" {
			cfg.Disable(id)
		}
	}
	for _, id := range c.Lint.Only {
		if id = strings.TrimSpace(id); id != "" {
			cfg.Only(id)
		}
	}
	return cfg
}

// Definitions returns the rule definitions to load: the embedded catalog
// (unless Lint.Defaults is off) overlaid with the rules from configuration.
func (c *Config) Definitions() (map[string]map[string]any, error) {
	base := map[string]map[string]any{}
	if c.Lint.Defaults {
		defs, err := catalog.Definitions()
		if err != nil {
			return nil, err
		}
		base = defs
	}
	user, err := catalog.FromMap(c.Rules)
	if err != nil {
		return nil, invalid("rules", err)
	}
	return lint.MergeDefinitions(base, user), nil
}

// LoadRegistry builds the rule registry described by the configuration.
func (c *Config) LoadRegistry() (*lint.Registry, error) {
	defs, err := c.Definitions()
	if err != nil {
		return nil, err
	}
	return lint.LoadRegistry(defs, c.RuleConfig())
}
