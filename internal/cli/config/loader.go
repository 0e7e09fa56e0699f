package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides: NAMELINT_LOG_LEVEL sets log.level.
const EnvPrefix = "NAMELINT_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// FileNames are the config file names searched for, in order.
var FileNames = []string{"namelint.yaml", ".namelint.yaml", "namelint.yml", ".namelint.yml"}

// sections are the nested config keys reachable from environment variables.
var sections = []string{"log", "scan", "extract", "lint", "history"}

// listKeys hold comma-separated lists when set from the environment.
var listKeys = map[string]bool{
	"scan.ignore":      true,
	"scan.ignore_dirs": true,
	"scan.style_ext":   true,
	"scan.script_ext":  true,
	"lint.disabled":    true,
	"lint.only":        true,
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"format":     "format",
	"jobs":       "jobs",
	"verbose":    "verbose",
	"log-level":  "log.level",
	"log-format": "log.format",
	"disable":    "lint.disabled",
	"rule":       "lint.only",
	"severity":   "lint.severity",
}

// negatedFlagKeys are boolean flags that switch a config key off.
var negatedFlagKeys = map[string]string{
	"no-defaults":     "lint.defaults",
	"no-syntax-check": "extract.syntax_check",
}

// LoadOptions selects the configuration sources.
type LoadOptions struct {
	// File is an explicit config file; it must exist.
	File string
	// SearchDir is where the upward search for a config file starts
	// when File is empty. Defaults to the working directory.
	SearchDir string
	// Flags are the parsed command-line flags; only changed flags apply.
	Flags *pflag.FlagSet
}

// Load reads configuration. Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	searchDir := opts.SearchDir
	if searchDir == "" {
		searchDir = "."
	}
	absSearch, err := filepath.Abs(searchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", searchDir, err)
	}
	// A file argument searches from its directory.
	if info, err := os.Stat(absSearch); err == nil && !info.IsDir() {
		absSearch = filepath.Dir(absSearch)
	}

	cfgFile := opts.File
	if cfgFile == "" {
		cfgFile = FindFileUpward(absSearch)
	} else if _, err := os.Stat(cfgFile); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
	}

	projectRoot := absSearch
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		if abs, err := filepath.Abs(cfgFile); err == nil {
			cfgFile = abs
		}
		projectRoot = filepath.Dir(cfgFile)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagKeyValue(opts.Flags)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile
	cfg.ProjectRoot = projectRoot
	cfg.History.DSN = resolveDSN(cfg.History.DSN, projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// FindFileUpward searches startDir and its parents for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func FindFileUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// envKeyValue maps NAMELINT_SCAN_MAX_FILE_SIZE to scan.max_file_size and
// splits list values on commas.
func envKeyValue(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			key = section + "." + rest
			break
		}
	}
	if listKeys[key] {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func flagKeyValue(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		// Only load flags that were explicitly set
		if !f.Changed {
			return "", nil
		}
		if key, ok := flagKeys[f.Name]; ok {
			return key, posflag.FlagVal(flags, f)
		}
		if key, ok := negatedFlagKeys[f.Name]; ok {
			on, _ := flags.GetBool(f.Name)
			return key, !on
		}
		return "", nil
	}
}

// resolveDSN anchors a relative SQLite path at the project root.
func resolveDSN(dsn, root string) string {
	lower := strings.ToLower(dsn)
	switch {
	case dsn == "", dsn == ":memory:", filepath.IsAbs(dsn):
		return dsn
	case strings.Contains(lower, "://"):
		return dsn
	default:
		return filepath.Join(root, dsn)
	}
}
