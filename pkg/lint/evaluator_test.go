package lint

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/namelint/pkg/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sym(name string, kind core.TargetKind, file string, line, col int) Symbol {
	return Symbol{
		Name:  name,
		Kind:  kind,
		Pos:   core.Position{File: file, Line: line, Column: col},
		Scope: &Scope{Kind: ScopeFile},
	}
}

func mustRegistry(t *testing.T, defs map[string]map[string]any) *Registry {
	t.Helper()
	reg, err := LoadRegistry(defs, NewConfig())
	require.NoError(t, err)
	return reg
}

func TestEvaluate_CamelCase(t *testing.T) {
	reg := mustRegistry(t, testDefs())

	files := []FileSymbols{{
		File: "src/app.js",
		Kind: core.FileKindScript,
		Symbols: []Symbol{
			sym("first_name", core.TargetVariable, "src/app.js", 1, 7),
			sym("firstName", core.TargetVariable, "src/app.js", 2, 7),
			sym("MAX_RETRIES", core.TargetVariable, "src/app.js", 3, 7),
		},
	}}

	got := Evaluate(reg, files).Violations
	require.Len(t, got, 1)

	v := got[0]
	assert.Equal(t, "variable-camel-case", v.RuleID)
	assert.Equal(t, core.SeverityError, v.Severity)
	assert.Equal(t, core.Position{File: "src/app.js", Line: 1, Column: 7}, v.Pos())
	assert.Equal(t, `variable "first_name" is not camelCase or SCREAMING_SNAKE_CASE`, v.Message)
	assert.Equal(t, "firstName", v.Suggestion)
}

func TestEvaluate_Ordering(t *testing.T) {
	reg := mustRegistry(t, map[string]map[string]any{
		"b-rule": {"target_kind": "variable", "pattern": "^[a-z]+$"},
		"a-rule": {"target_kind": "variable", "pattern": "^[a-z]{1,3}$"},
	})

	files := []FileSymbols{
		{File: "z.js", Kind: core.FileKindScript, Symbols: []Symbol{sym("B1", core.TargetVariable, "z.js", 1, 1)}},
		{File: "a.js", Kind: core.FileKindScript, Symbols: []Symbol{
			sym("Zed", core.TargetVariable, "a.js", 2, 1),
			sym("Abc", core.TargetVariable, "a.js", 1, 5),
		}},
	}

	got := Evaluate(reg, files).Violations

	var order []string
	for _, v := range got {
		order = append(order, fmt.Sprintf("%s %s", v.Pos(), v.RuleID))
	}
	assert.Equal(t, []string{
		"a.js:1:5 a-rule",
		"a.js:1:5 b-rule",
		"a.js:2:1 a-rule",
		"a.js:2:1 b-rule",
		"z.js:1:1 a-rule",
		"z.js:1:1 b-rule",
	}, order)
}

func TestEvaluate_Scope(t *testing.T) {
	reg := mustRegistry(t, map[string]map[string]any{
		"selectors": {
			"target_kind": "selector",
			"case":        "bem",
			"file_kinds":  []any{"style"},
			"exclude":     []any{"vendor/**"},
			"allow":       []any{"clearfix_legacy"},
		},
	})

	files := []FileSymbols{
		{File: "src/card.css", Kind: core.FileKindStyle, Symbols: []Symbol{
			sym("Card", core.TargetSelector, "src/card.css", 1, 2),
			sym("clearfix_legacy", core.TargetSelector, "src/card.css", 5, 2),
		}},
		{File: "vendor/lib.css", Kind: core.FileKindStyle, Symbols: []Symbol{
			sym("Legacy", core.TargetSelector, "vendor/lib.css", 1, 2),
		}},
		{File: "src/odd.js", Kind: core.FileKindScript, Symbols: []Symbol{
			sym("Weird", core.TargetSelector, "src/odd.js", 1, 1),
		}},
	}

	got := Evaluate(reg, files).Violations
	require.Len(t, got, 1)
	assert.Equal(t, "Card", got[0].Symbol.Name)
	assert.Equal(t, "card", got[0].Suggestion)
}

func TestEvaluate_FileLayout(t *testing.T) {
	reg := mustRegistry(t, map[string]map[string]any{
		"component-has-stylesheet": {
			"target_kind": "file",
			"layout":      map[string]any{"sibling": ".css"},
			"include":     []any{"**/*.jsx"},
		},
		"component-in-own-dir": {
			"target_kind": "file",
			"layout":      map[string]any{"match_dir": true, "directory": "^src/components(/|$)"},
			"include":     []any{"**/*.jsx"},
		},
	})

	fileSym := func(path, name string) FileSymbols {
		return FileSymbols{
			File:    path,
			Kind:    core.FileKindScript,
			Symbols: []Symbol{sym(name, core.TargetFile, path, 1, 1)},
		}
	}
	files := []FileSymbols{
		fileSym("src/components/Button/Button.jsx", "Button"),
		{File: "src/components/Button/Button.css", Kind: core.FileKindStyle},
		fileSym("src/components/Card/Panel.jsx", "Panel"),
		fileSym("src/components/Card/index.jsx", "index"),
		fileSym("src/pages/Home.jsx", "Home"),
		fileSym("src/components/date/date.utils.jsx", "date"),
		{File: "src/components/date/date.utils.css", Kind: core.FileKindStyle},
		fileSym("src/components/date/date.view.jsx", "date"),
		{File: "src/components/date/date.css", Kind: core.FileKindStyle},
	}

	got := Evaluate(reg, files).Violations

	var msgs []string
	for _, v := range got {
		msgs = append(msgs, v.Pos().File+": "+v.Message)
	}
	assert.Equal(t, []string{
		`src/components/Card/Panel.jsx: file "Panel" has no sibling Panel.css`,
		`src/components/Card/Panel.jsx: file "Panel" does not match its directory "Card"`,
		`src/components/Card/index.jsx: file "index" has no sibling index.css`,
		`src/components/date/date.view.jsx: file "date" has no sibling date.view.css`,
		`src/pages/Home.jsx: file "Home" has no sibling Home.css`,
		`src/pages/Home.jsx: file "Home" does not match its directory "pages"`,
	}, msgs)
}

func TestEvaluate_Predicate(t *testing.T) {
	reg := mustRegistry(t, map[string]map[string]any{
		"hook-prefix": {
			"target_kind": "function",
			"predicate":   `not name.startswith("use") or matches("^use[A-Z]", name)`,
			"message":     "hook {name} in {file} must be useXxx",
		},
	})

	files := []FileSymbols{{
		File: "src/hooks.js",
		Kind: core.FileKindScript,
		Symbols: []Symbol{
			sym("usecounter", core.TargetFunction, "src/hooks.js", 1, 10),
			sym("useCounter", core.TargetFunction, "src/hooks.js", 2, 10),
			sym("render", core.TargetFunction, "src/hooks.js", 3, 10),
		},
	}}

	got := Evaluate(reg, files).Violations
	require.Len(t, got, 1)
	assert.Equal(t, "hook usecounter in src/hooks.js must be useXxx", got[0].Message)
	assert.Empty(t, got[0].Suggestion)
}

func TestEvaluate_PredicateRuntimeError(t *testing.T) {
	reg := mustRegistry(t, map[string]map[string]any{
		"sixth-char": {
			"target_kind": "variable",
			"predicate":   `name[5] != "x"`,
		},
	})

	files := []FileSymbols{{
		File: "src/app.js",
		Kind: core.FileKindScript,
		Symbols: []Symbol{
			sym("ab", core.TargetVariable, "src/app.js", 1, 7),
			sym("abcdex", core.TargetVariable, "src/app.js", 2, 7),
			sym("abcdef", core.TargetVariable, "src/app.js", 3, 7),
		},
	}}

	got := Evaluate(reg, files)

	require.Len(t, got.Violations, 1)
	assert.Equal(t, "abcdex", got.Violations[0].Symbol.Name)

	require.Len(t, got.Errors, 1)
	rerr := got.Errors[0]
	assert.Equal(t, "sixth-char", rerr.RuleID)
	assert.Equal(t, "ab", rerr.Symbol.Name)
	assert.Error(t, rerr.Err)
	assert.ErrorIs(t, rerr, rerr.Err)
	assert.Contains(t, rerr.Error(), `src/app.js:1:7: rule sixth-char on variable "ab"`)

	parallel, err := EvaluateFiles(context.Background(), reg, files, 2)
	require.NoError(t, err)
	assert.Len(t, parallel.Violations, 1)
	assert.Len(t, parallel.Errors, 1)
}

func TestEvaluate_Empty(t *testing.T) {
	reg := mustRegistry(t, testDefs())
	assert.Empty(t, Evaluate(reg, nil).Violations)

	empty, err := NewRegistry()
	require.NoError(t, err)
	assert.Empty(t, Evaluate(empty, []FileSymbols{{
		File:    "a.js",
		Symbols: []Symbol{sym("bad_name", core.TargetVariable, "a.js", 1, 1)},
	}}).Violations)
}

func TestEvaluateFiles_MatchesEvaluate(t *testing.T) {
	reg := mustRegistry(t, testDefs())

	var files []FileSymbols
	for i := range 40 {
		path := fmt.Sprintf("src/file%02d.js", i)
		files = append(files, FileSymbols{
			File: path,
			Kind: core.FileKindScript,
			Symbols: []Symbol{
				sym("bad_name", core.TargetVariable, path, 1, 7),
				sym("goodName", core.TargetVariable, path, 2, 7),
				sym("lowerClass", core.TargetClass, path, 3, 7),
			},
		})
	}

	want := Evaluate(reg, files)
	for _, workers := range []int{1, 4, 0} {
		got, err := EvaluateFiles(context.Background(), reg, files, workers)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("workers=%d mismatch (-want +got):\n%s", workers, diff)
		}
	}
	assert.Len(t, want.Violations, 80)
}

func TestEvaluateFiles_Canceled(t *testing.T) {
	reg := mustRegistry(t, testDefs())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []FileSymbols{{File: "a.js", Symbols: []Symbol{sym("x", core.TargetVariable, "a.js", 1, 1)}}}
	_, err := EvaluateFiles(ctx, reg, files, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScope_Path(t *testing.T) {
	file := &Scope{Kind: ScopeFile}
	fn := &Scope{Kind: ScopeFunction, Name: "render", Parent: file}
	block := &Scope{Kind: ScopeBlock, Parent: fn}

	assert.Equal(t, "file > function:render > block", block.Path())
	assert.Equal(t, "", (*Scope)(nil).Path())
}
