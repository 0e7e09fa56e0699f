package lint

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/namelint/pkg/core"
)

func testDefs() map[string]map[string]any {
	return map[string]map[string]any{
		"variable-camel-case": {
			"target_kind": "variable",
			"case":        []any{"camel", "screaming_snake"},
			"severity":    "error",
			"rationale":   "Variables read like prose.",
		},
		"component-pascal-case": {
			"targetKind": "class",
			"case":       "pascal",
			"severity":   "warning",
		},
		"selector-bem": {
			"target_kind": "selector",
			"case":        "bem",
			"file_kinds":  []any{"style"},
		},
		"hook-prefix": {
			"target_kind": "function",
			"predicate":   `not name.startswith("use") or matches("^use[A-Z]", name)`,
			"include":     []any{"src/hooks/**"},
		},
		"component-has-stylesheet": {
			"target_kind": "file",
			"layout":      map[string]any{"sibling": ".css"},
			"include":     []any{"src/components/**/*.jsx"},
		},
	}
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(testDefs(), NewConfig())
	require.NoError(t, err)

	assert.Equal(t, 5, reg.Len())

	ids := make([]string, 0, reg.Len())
	for _, r := range reg.Rules() {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{
		"component-has-stylesheet",
		"component-pascal-case",
		"hook-prefix",
		"selector-bem",
		"variable-camel-case",
	}, ids, "rules are sorted by ID")

	rule, ok := reg.Get("component-pascal-case")
	require.True(t, ok)
	assert.Equal(t, core.TargetClass, rule.Target(), "targetKind alias")
	assert.Equal(t, core.SeverityWarning, rule.Severity())
	assert.Equal(t, ShapePattern, rule.Matcher().Shape())

	rule, ok = reg.Get("hook-prefix")
	require.True(t, ok)
	assert.Equal(t, ShapePredicate, rule.Matcher().Shape())
	assert.Equal(t, core.SeverityError, rule.Severity(), "default severity")

	rule, ok = reg.Get("component-has-stylesheet")
	require.True(t, ok)
	assert.Equal(t, ShapeLayout, rule.Matcher().Shape())

	byKind := reg.ByKind(core.TargetVariable)
	require.Len(t, byKind, 1)
	assert.Equal(t, "variable-camel-case", byKind[0].ID())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestLoadRegistry_Deterministic(t *testing.T) {
	first, err := LoadRegistry(testDefs(), NewConfig())
	require.NoError(t, err)
	second, err := LoadRegistry(testDefs(), NewConfig())
	require.NoError(t, err)

	if diff := cmp.Diff(first.Infos(), second.Infos()); diff != "" {
		t.Errorf("registries differ (-first +second):\n%s", diff)
	}
}

func TestLoadRegistry_Config(t *testing.T) {
	cfg := NewConfig().
		Disable("selector-bem").
		SetSeverity("variable-camel-case", core.SeverityWarning)

	reg, err := LoadRegistry(testDefs(), cfg)
	require.NoError(t, err)

	_, ok := reg.Get("selector-bem")
	assert.False(t, ok, "disabled rules are absent")

	rule, ok := reg.Get("variable-camel-case")
	require.True(t, ok)
	assert.Equal(t, core.SeverityWarning, rule.Severity())

	only, err := LoadRegistry(testDefs(), NewConfig().Only("hook-prefix"))
	require.NoError(t, err)
	assert.Equal(t, 1, only.Len())

	_, err = LoadRegistry(testDefs(), NewConfig().Only("no-such-rule"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "no-such-rule", cfgErr.RuleID)
}

func TestLoadRegistry_DisabledKey(t *testing.T) {
	defs := testDefs()
	defs["selector-bem"]["disabled"] = true

	reg, err := LoadRegistry(defs, nil)
	require.NoError(t, err)
	_, ok := reg.Get("selector-bem")
	assert.False(t, ok)
}

func TestLoadRegistry_ConfigErrors(t *testing.T) {
	tests := []struct {
		name      string
		def       map[string]any
		wantField string
		wantMsg   string
	}{
		{
			name:      "unknown target kind",
			def:       map[string]any{"target_kind": "module", "pattern": "^x$"},
			wantField: "target_kind",
			wantMsg:   `unknown target kind "module"`,
		},
		{
			name:      "missing target kind",
			def:       map[string]any{"pattern": "^x$"},
			wantField: "target_kind",
			wantMsg:   "is required",
		},
		{
			name:      "unknown severity",
			def:       map[string]any{"target_kind": "variable", "pattern": "^x$", "severity": "fatal"},
			wantField: "severity",
		},
		{
			name:      "invalid regex",
			def:       map[string]any{"target_kind": "variable", "pattern": "([a-z"},
			wantField: "pattern",
		},
		{
			name:      "unknown case style",
			def:       map[string]any{"target_kind": "variable", "case": "hungarian"},
			wantField: "case",
		},
		{
			name:      "unknown key",
			def:       map[string]any{"target_kind": "variable", "pattern": "^x$", "patern": "^y$"},
			wantField: "definition",
			wantMsg:   "patern",
		},
		{
			name:    "missing matcher",
			def:     map[string]any{"target_kind": "variable"},
			wantMsg: "is required",
		},
		{
			name:    "two matchers",
			def:     map[string]any{"target_kind": "variable", "pattern": "^x$", "case": "camel"},
			wantMsg: "only one of",
		},
		{
			name:      "predicate syntax error",
			def:       map[string]any{"target_kind": "variable", "predicate": "name =="},
			wantField: "predicate",
		},
		{
			name:      "layout on non-file target",
			def:       map[string]any{"target_kind": "class", "layout": map[string]any{"match_dir": true}},
			wantField: "layout",
		},
		{
			name:      "empty layout",
			def:       map[string]any{"target_kind": "file", "layout": map[string]any{}},
			wantField: "layout",
		},
		{
			name:      "bad glob",
			def:       map[string]any{"target_kind": "variable", "case": "camel", "include": []any{"src/[a"}},
			wantField: "include",
		},
		{
			name:      "unknown file kind",
			def:       map[string]any{"target_kind": "variable", "case": "camel", "file_kinds": []any{"markup"}},
			wantField: "file_kinds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := LoadRegistry(map[string]map[string]any{"bad-rule": tt.def}, NewConfig())
			require.Error(t, err)
			assert.Nil(t, reg)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "bad-rule", cfgErr.RuleID)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, cfgErr.Field)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadRegistry_ReportsEveryError(t *testing.T) {
	defs := map[string]map[string]any{
		"a": {"target_kind": "nope", "case": "camel"},
		"b": {"target_kind": "variable", "case": "camel"},
		"c": {"target_kind": "variable", "pattern": "("},
	}
	_, err := LoadRegistry(defs, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "a"`)
	assert.Contains(t, err.Error(), `rule "c"`)
	assert.NotContains(t, err.Error(), `rule "b"`)
}

func TestConfigError(t *testing.T) {
	inner := errors.New("boom")
	err := &ConfigError{RuleID: "r", Field: "pattern", Err: inner}
	assert.Equal(t, `rule "r": pattern: boom`, err.Error())
	assert.ErrorIs(t, err, inner)

	assert.Equal(t, `rule "r": boom`, (&ConfigError{RuleID: "r", Err: inner}).Error())
	assert.Equal(t, `invalid configuration: lint.rules: boom`, (&ConfigError{Field: "lint.rules", Err: inner}).Error())
}

func TestMergeDefinitions(t *testing.T) {
	base := map[string]map[string]any{
		"variable-camel-case": {"target_kind": "variable", "case": "camel", "severity": "error"},
		"selector-bem":        {"target_kind": "selector", "case": "bem"},
	}
	override := map[string]map[string]any{
		"variable-camel-case": {"severity": "warning"},
		"selector-bem":        {"pattern": "^[a-z-]+$"},
		"custom":              {"target_kind": "file", "layout": map[string]any{"match_dir": true}},
	}

	got := MergeDefinitions(base, override)

	assert.Equal(t, map[string]any{"target_kind": "variable", "case": "camel", "severity": "warning"}, got["variable-camel-case"])
	assert.Equal(t, map[string]any{"target_kind": "selector", "pattern": "^[a-z-]+$"}, got["selector-bem"], "matcher replaced, not combined")
	assert.Contains(t, got, "custom")
	assert.Equal(t, "error", base["variable-camel-case"]["severity"], "base untouched")
}
