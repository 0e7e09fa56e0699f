package lint

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-viper/mapstructure/v2"

	starctx "github.com/leapstack-labs/namelint/internal/starlark"
	"github.com/leapstack-labs/namelint/pkg/core"
)

var (
	errUnknownRule   = errors.New("unknown rule")
	errDuplicateRule = errors.New("duplicate rule")
	errNoMatcher     = errors.New("one of pattern, case, layout or predicate is required")
	errManyMatchers  = errors.New("only one of pattern, case, layout or predicate may be set")
)

var ruleIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_/-]*$`)

// ConfigError reports a malformed rule definition. It is fatal: no scan runs.
type ConfigError struct {
	RuleID string
	Field  string // Optional: offending key
	Err    error
}

func (e *ConfigError) Error() string {
	switch {
	case e.RuleID == "":
		return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
	case e.Field == "":
		return fmt.Sprintf("rule %q: %v", e.RuleID, e.Err)
	default:
		return fmt.Sprintf("rule %q: %s: %v", e.RuleID, e.Field, e.Err)
	}
}

func (e *ConfigError) Unwrap() error { return e.Err }

// RuleSpec is the declarative form of a rule as it appears in configuration.
type RuleSpec struct {
	TargetKind      string      `mapstructure:"target_kind" yaml:"target_kind,omitempty"`
	TargetKindAlias string      `mapstructure:"targetKind" yaml:"targetKind,omitempty"`
	Pattern         string      `mapstructure:"pattern" yaml:"pattern,omitempty"`
	Case            []string    `mapstructure:"case" yaml:"case,omitempty"`
	Layout          *LayoutSpec `mapstructure:"layout" yaml:"layout,omitempty"`
	Predicate       string      `mapstructure:"predicate" yaml:"predicate,omitempty"`
	Severity        string      `mapstructure:"severity" yaml:"severity,omitempty"`
	Message         string      `mapstructure:"message" yaml:"message,omitempty"`
	Rationale       string      `mapstructure:"rationale" yaml:"rationale,omitempty"`
	FileKinds       []string    `mapstructure:"file_kinds" yaml:"file_kinds,omitempty"`
	Include         []string    `mapstructure:"include" yaml:"include,omitempty"`
	Exclude         []string    `mapstructure:"exclude" yaml:"exclude,omitempty"`
	Allow           []string    `mapstructure:"allow" yaml:"allow,omitempty"`
	Disabled        bool        `mapstructure:"disabled" yaml:"disabled,omitempty"`
}

// LayoutSpec configures a FileLayout matcher.
type LayoutSpec struct {
	Sibling   string `mapstructure:"sibling" yaml:"sibling,omitempty"`
	MatchDir  bool   `mapstructure:"match_dir" yaml:"match_dir,omitempty"`
	Directory string `mapstructure:"directory" yaml:"directory,omitempty"`
}

// DecodeRuleSpec decodes one raw rule definition. Unknown keys are rejected.
func DecodeRuleSpec(id string, raw map[string]any) (RuleSpec, error) {
	var spec RuleSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           &spec,
	})
	if err != nil {
		return spec, &ConfigError{RuleID: id, Err: err}
	}
	if err := dec.Decode(raw); err != nil {
		return spec, &ConfigError{RuleID: id, Field: "definition", Err: err}
	}
	return spec, nil
}

// LoadRegistry decodes, validates and compiles rule definitions keyed by rule ID,
// applies cfg, and returns the resulting registry. Every malformed definition is
// reported; the returned error wraps one *ConfigError per problem.
func LoadRegistry(defs map[string]map[string]any, cfg *Config) (*Registry, error) {
	pool := starctx.NewThreadPool(runtime.NumCPU())

	var errs []error
	rules := make([]*Rule, 0, len(defs))
	for _, id := range slices.Sorted(maps.Keys(defs)) {
		spec, err := DecodeRuleSpec(id, defs[id])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rule, err := compileRule(id, spec, cfg, pool)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if spec.Disabled || cfg.IsDisabled(id) {
			continue
		}
		rules = append(rules, rule)
	}

	if cfg != nil {
		for _, id := range slices.Sorted(maps.Keys(cfg.OnlyRules)) {
			if _, ok := defs[id]; !ok {
				errs = append(errs, &ConfigError{RuleID: id, Err: errUnknownRule})
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return NewRegistry(rules...)
}

func compileRule(id string, spec RuleSpec, cfg *Config, pool *starctx.ThreadPool) (*Rule, error) {
	fail := func(field string, err error) error {
		return &ConfigError{RuleID: id, Field: field, Err: err}
	}

	if !ruleIDPattern.MatchString(id) {
		return nil, fail("id", fmt.Errorf("invalid rule id %q", id))
	}

	targetName := spec.TargetKind
	if spec.TargetKindAlias != "" {
		if targetName != "" && targetName != spec.TargetKindAlias {
			return nil, fail("target_kind", errors.New("target_kind and targetKind disagree"))
		}
		targetName = spec.TargetKindAlias
	}
	if targetName == "" {
		return nil, fail("target_kind", errors.New("is required"))
	}
	target, ok := core.ParseTargetKind(targetName)
	if !ok {
		return nil, fail("target_kind", fmt.Errorf("unknown target kind %q", targetName))
	}

	severity := core.SeverityError
	if spec.Severity != "" {
		severity, ok = core.ParseSeverity(spec.Severity)
		if !ok {
			return nil, fail("severity", fmt.Errorf("unknown severity %q", spec.Severity))
		}
	}

	matcher, err := compileMatcher(id, spec, target, pool)
	if err != nil {
		return nil, err
	}

	rule := &Rule{
		id:        id,
		target:    target,
		matcher:   matcher,
		severity:  cfg.GetSeverity(id, severity),
		rationale: spec.Rationale,
		message:   spec.Message,
		allow:     make(map[string]struct{}, len(spec.Allow)),
	}

	for _, k := range spec.FileKinds {
		fk, ok := core.ParseFileKind(k)
		if !ok {
			return nil, fail("file_kinds", fmt.Errorf("unknown file kind %q", k))
		}
		rule.fileKinds = append(rule.fileKinds, fk)
	}
	for _, g := range spec.Include {
		if !doublestar.ValidatePattern(g) {
			return nil, fail("include", fmt.Errorf("bad glob %q", g))
		}
	}
	for _, g := range spec.Exclude {
		if !doublestar.ValidatePattern(g) {
			return nil, fail("exclude", fmt.Errorf("bad glob %q", g))
		}
	}
	rule.include = slices.Clone(spec.Include)
	rule.exclude = slices.Clone(spec.Exclude)
	for _, name := range spec.Allow {
		rule.allow[name] = struct{}{}
	}

	return rule, nil
}

func compileMatcher(id string, spec RuleSpec, target core.TargetKind, pool *starctx.ThreadPool) (Matcher, error) {
	n := 0
	for _, set := range []bool{spec.Pattern != "", len(spec.Case) > 0, spec.Layout != nil, spec.Predicate != ""} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return nil, &ConfigError{RuleID: id, Err: errNoMatcher}
	case n > 1:
		return nil, &ConfigError{RuleID: id, Err: errManyMatchers}
	}

	switch {
	case spec.Pattern != "":
		m, err := newPatternMatcher(spec.Pattern)
		if err != nil {
			return nil, &ConfigError{RuleID: id, Field: "pattern", Err: err}
		}
		return m, nil

	case len(spec.Case) > 0:
		styles := make([]CaseStyle, 0, len(spec.Case))
		for _, c := range spec.Case {
			style, ok := ParseCaseStyle(c)
			if !ok {
				return nil, &ConfigError{RuleID: id, Field: "case", Err: fmt.Errorf("unknown case style %q", c)}
			}
			styles = append(styles, style)
		}
		return newCaseMatcher(styles), nil

	case spec.Layout != nil:
		if target != core.TargetFile {
			return nil, &ConfigError{RuleID: id, Field: "layout", Err: errors.New("layout rules require target_kind file")}
		}
		l := spec.Layout
		if l.Sibling == "" && !l.MatchDir && l.Directory == "" {
			return nil, &ConfigError{RuleID: id, Field: "layout", Err: errors.New("one of sibling, match_dir or directory is required")}
		}
		m := &FileLayout{sibling: l.Sibling, matchDir: l.MatchDir}
		if l.Directory != "" {
			re, err := regexp.Compile(l.Directory)
			if err != nil {
				return nil, &ConfigError{RuleID: id, Field: "layout.directory", Err: err}
			}
			m.directory = re
		}
		return m, nil

	default:
		prog, err := starctx.Compile(id, spec.Predicate, pool)
		if err != nil {
			return nil, &ConfigError{RuleID: id, Field: "predicate", Err: err}
		}
		return &Predicate{prog: prog}, nil
	}
}

// MergeDefinitions overlays rule definitions field by field: a key in override
// replaces the same key in base, other keys of base survive. Neither input is modified.
func MergeDefinitions(base, override map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(base)+len(override))
	for id, def := range base {
		out[id] = maps.Clone(def)
	}
	for id, def := range override {
		merged := out[id]
		if merged == nil {
			merged = make(map[string]any, len(def))
		}
		for k, v := range def {
			merged[k] = v
		}
		if hasMatcherKey(def) {
			for _, k := range matcherKeys {
				if _, ok := def[k]; !ok {
					delete(merged, k)
				}
			}
		}
		out[id] = merged
	}
	return out
}

var matcherKeys = []string{"pattern", "case", "layout", "predicate"}

// hasMatcherKey reports whether def sets a matcher; an overriding matcher
// replaces the base matcher instead of combining with it.
func hasMatcherKey(def map[string]any) bool {
	for _, k := range matcherKeys {
		if _, ok := def[k]; ok {
			return true
		}
	}
	return false
}
