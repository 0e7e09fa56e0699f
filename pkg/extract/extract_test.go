package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/lint"
	"github.com/leapstack-labs/namelint/pkg/scan"
)

type sym struct {
	Name string
	Kind core.TargetKind
	Line int
	Col  int
}

func summarize(symbols []lint.Symbol) []sym {
	out := make([]sym, len(symbols))
	for i, s := range symbols {
		out[i] = sym{s.Name, s.Kind, s.Pos.Line, s.Pos.Column}
	}
	return out
}

func fileFor(rel string) scan.File {
	s, err := scan.New(".", scan.DefaultOptions())
	if err != nil {
		panic(err)
	}
	return scan.File{Path: rel, RelPath: rel, Kind: s.Classify(rel)}
}

func extractSource(t *testing.T, rel, src string) []lint.Symbol {
	t.Helper()
	symbols, err := New(Options{}).Extract(fileFor(rel), []byte(src))
	require.NoError(t, err)
	return symbols
}

func TestExtract_FirstName(t *testing.T) {
	symbols := extractSource(t, "src/app.js", `const first_name = "Luke";`)

	assert.Equal(t, []sym{
		{"app", core.TargetFile, 1, 1},
		{"first_name", core.TargetVariable, 1, 7},
	}, summarize(symbols))
}

const appJSX = "import React, { useState } from 'react';\n" +
	"\n" +
	"const MAX_ITEMS = 10, default_label = 'x';\n" +
	"let { user_name, profile: { avatarUrl }, ...rest_props } = props;\n" +
	"const [first, , third_item = 3] = list;\n" +
	"\n" +
	"function fetch_data(url) {\n" +
	"  const res = url;\n" +
	"  return res;\n" +
	"}\n" +
	"\n" +
	"const Button = ({ label }) => {\n" +
	"  const is_active = true;\n" +
	"  return <button className=\"btn\" onClick={() => { const clicked_at = 1 }}>{label}</button>;\n" +
	"};\n" +
	"\n" +
	"export default class user_card extends React.Component {\n" +
	"  render() {\n" +
	"    var count = 0\n" +
	"    let total = 1\n" +
	"    return <div>{count + total}</div>;\n" +
	"  }\n" +
	"}\n" +
	"const Memo = React.memo(function Inner() { return null; });\n" +
	"const re = /const fake_re = 1/g;\n" +
	"const tpl = `const fake_tpl = ${MAX_ITEMS}`;\n" +
	"// const commented_out = 1;\n"

func TestExtract_Script(t *testing.T) {
	symbols := extractSource(t, "src/app.jsx", appJSX)

	assert.Equal(t, []sym{
		{"app", core.TargetFile, 1, 1},
		{"MAX_ITEMS", core.TargetVariable, 3, 7},
		{"default_label", core.TargetVariable, 3, 23},
		{"user_name", core.TargetVariable, 4, 7},
		{"avatarUrl", core.TargetVariable, 4, 29},
		{"rest_props", core.TargetVariable, 4, 45},
		{"first", core.TargetVariable, 5, 8},
		{"third_item", core.TargetVariable, 5, 17},
		{"fetch_data", core.TargetFunction, 7, 10},
		{"res", core.TargetVariable, 8, 9},
		{"Button", core.TargetFunction, 12, 7},
		{"is_active", core.TargetVariable, 13, 9},
		{"clicked_at", core.TargetVariable, 14, 57},
		{"user_card", core.TargetClass, 17, 22},
		{"count", core.TargetVariable, 19, 9},
		{"total", core.TargetVariable, 20, 9},
		{"Memo", core.TargetFunction, 24, 7},
		{"Inner", core.TargetFunction, 24, 34},
		{"re", core.TargetVariable, 25, 7},
		{"tpl", core.TargetVariable, 26, 7},
	}, summarize(symbols))
}

func TestExtract_ScriptScopes(t *testing.T) {
	symbols := extractSource(t, "src/app.jsx", appJSX)

	scopes := map[string]string{}
	for _, s := range symbols {
		scopes[s.Name] = s.Scope.Path()
	}
	assert.Equal(t, "file:src/app.jsx", scopes["MAX_ITEMS"])
	assert.Equal(t, "file:src/app.jsx > function:fetch_data", scopes["res"])
	assert.Equal(t, "file:src/app.jsx > function:Button", scopes["is_active"])
	assert.Equal(t, "file:src/app.jsx > class:user_card > function:render", scopes["count"])
	assert.Equal(t, "file:src/app.jsx", scopes["Memo"])
}

func TestExtract_TypeScript(t *testing.T) {
	src := "interface user_props { name: string }\n" +
		"type Handler = (e: Event) => void;\n" +
		"enum color_mode { Light, Dark }\n" +
		"const enum Direction { Up }\n" +
		"const config: Record<string, number> = {}, other_value: Array<string> = [];\n" +
		"const toNumber = <T,>(x: T): number => 1;\n" +
		"let handler: Handler = () => {}\n" +
		"declare function greet_user(name: string): void;\n"

	symbols := extractSource(t, "src/types.ts", src)

	assert.Equal(t, []sym{
		{"types", core.TargetFile, 1, 1},
		{"user_props", core.TargetClass, 1, 11},
		{"Handler", core.TargetClass, 2, 6},
		{"color_mode", core.TargetClass, 3, 6},
		{"Direction", core.TargetClass, 4, 12},
		{"config", core.TargetVariable, 5, 7},
		{"other_value", core.TargetVariable, 5, 44},
		{"toNumber", core.TargetFunction, 6, 7},
		{"handler", core.TargetFunction, 7, 5},
		{"greet_user", core.TargetFunction, 8, 18},
	}, summarize(symbols))
}

func TestExtract_TypeKeywordsInJavaScript(t *testing.T) {
	symbols := extractSource(t, "src/plain.js", "let type = 1\ninterface = 2\n")

	assert.Equal(t, []sym{
		{"plain", core.TargetFile, 1, 1},
		{"type", core.TargetVariable, 1, 5},
	}, summarize(symbols))
}

func TestExtract_CSS(t *testing.T) {
	src := ".card { color: red; }\n" +
		".card__title, .card--active > .Icon:hover {}\n" +
		"@media (max-width: 10px) {\n" +
		"  .mobile_only { display: none }\n" +
		"}\n" +
		"a[href$=\".pdf\"], #main .is-visible:not(.hidden) { }\n" +
		"/* .commented {} */\n" +
		".btn { background: url(a.png); width: .5em; }\n"

	symbols := extractSource(t, "src/styles.css", src)

	assert.Equal(t, []sym{
		{"styles", core.TargetFile, 1, 1},
		{"card", core.TargetSelector, 1, 2},
		{"card__title", core.TargetSelector, 2, 2},
		{"card--active", core.TargetSelector, 2, 16},
		{"Icon", core.TargetSelector, 2, 32},
		{"mobile_only", core.TargetSelector, 4, 4},
		{"is-visible", core.TargetSelector, 6, 25},
		{"hidden", core.TargetSelector, 6, 41},
		{"btn", core.TargetSelector, 8, 2},
	}, summarize(symbols))

	assert.Equal(t, "file:src/styles.css > at-rule:media", symbols[5].Scope.Path())
}

func TestExtract_SCSS(t *testing.T) {
	src := "// .line-comment {}\n" +
		".card {\n" +
		"  $pad: 4px;\n" +
		"  &__title { font-weight: bold; }\n" +
		"  &--active {\n" +
		"    &:hover { color: red; }\n" +
		"    .nested_child {}\n" +
		"  }\n" +
		"  .icon-#{$name} {}\n" +
		"  &.is-open { &__x {} }\n" +
		"}\n"

	symbols := extractSource(t, "src/card.scss", src)

	assert.Equal(t, []sym{
		{"card", core.TargetFile, 1, 1},
		{"card", core.TargetSelector, 2, 2},
		{"card__title", core.TargetSelector, 4, 3},
		{"card--active", core.TargetSelector, 5, 3},
		{"nested_child", core.TargetSelector, 7, 6},
		{"is-open", core.TargetSelector, 10, 5},
		{"is-open__x", core.TargetSelector, 10, 15},
	}, summarize(symbols))
}

func TestExtract_Less(t *testing.T) {
	src := "@prefix: app;\n" +
		".@{prefix}-header { .mixin(); }\n" +
		".btn-primary { &-large {} }\n"

	symbols := extractSource(t, "src/theme.less", src)

	assert.Equal(t, []sym{
		{"theme", core.TargetFile, 1, 1},
		{"btn-primary", core.TargetSelector, 3, 2},
		{"btn-primary-large", core.TargetSelector, 3, 16},
	}, summarize(symbols))
}

func TestExtract_Sass(t *testing.T) {
	src := ".nav\n" +
		"  display: flex\n" +
		"  &__item\n" +
		"    color: red\n" +
		".Footer\n" +
		"  margin: 0\n"

	symbols := extractSource(t, "src/nav.sass", src)

	assert.Equal(t, []sym{
		{"nav", core.TargetFile, 1, 1},
		{"nav", core.TargetSelector, 1, 2},
		{"nav__item", core.TargetSelector, 3, 3},
		{"Footer", core.TargetSelector, 5, 2},
	}, summarize(symbols))
}

func TestExtract_Encoding(t *testing.T) {
	t.Run("utf-8 bom", func(t *testing.T) {
		symbols := extractSource(t, "a.js", "\xEF\xBB\xBFconst x = 1;")
		assert.Equal(t, sym{"x", core.TargetVariable, 1, 7}, summarize(symbols)[1])
	})

	t.Run("utf-16le bom", func(t *testing.T) {
		content := []byte{0xFF, 0xFE}
		for _, r := range "const a_b = 1;" {
			content = append(content, byte(r), 0)
		}
		symbols, err := New(Options{}).Extract(fileFor("a.js"), content)
		require.NoError(t, err)
		assert.Equal(t, sym{"a_b", core.TargetVariable, 1, 7}, summarize(symbols)[1])
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := New(Options{}).Extract(fileFor("a.js"), []byte{'a', 0xFF, 'b'})
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.ErrorIs(t, err, ErrInvalidUTF8)
		assert.Equal(t, "a.js", perr.File)
	})
}

func TestExtract_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		src  string
		line int
		col  int
	}{
		{"unterminated string", "a.js", `const a = "oops`, 1, 11},
		{"unterminated template", "a.js", "const a = `oops", 1, 11},
		{"unterminated comment", "a.js", "let a; /* never closed", 1, 8},
		{"unclosed css comment", "a.css", ".a { } /* x", 1, 8},
		{"unclosed css block", "a.css", ".a {\n  color: red;\n", 1, 4},
		{"stray css brace", "a.css", ".a {}\n}", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).Extract(fileFor(tt.rel), []byte(tt.src))
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.col, perr.Column)
		})
	}
}

func TestExtract_SyntaxCheck(t *testing.T) {
	ex := New(DefaultOptions())

	_, err := ex.Extract(fileFor("bad.js"), []byte("const = 5;\n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)

	symbols, err := ex.Extract(fileFor("ok.tsx"), []byte("export const Card = (p: { title: string }) => <h1>{p.title}</h1>;\n"))
	require.NoError(t, err)
	assert.Equal(t, sym{"Card", core.TargetFunction, 1, 14}, summarize(symbols)[1])
}

func TestExtract_UnknownKind(t *testing.T) {
	symbols, err := New(Options{}).Extract(scan.File{RelPath: "README.md"}, []byte("# hi"))
	require.NoError(t, err)
	assert.Equal(t, []sym{{"README", core.TargetFile, 1, 1}}, summarize(symbols))
}

func TestFileSymbolName(t *testing.T) {
	tests := map[string]string{
		"src/Button.module.css": "Button",
		"index.js":              "index",
		".eslintrc.js":          "eslintrc",
		"a/b/c.test.tsx":        "c",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileSymbolName(in), in)
	}
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{File: "a.js", Line: 3, Column: 4, Err: errUnterminatedString}
	assert.Equal(t, "parse a.js:3:4: unterminated string literal", err.Error())

	err = &ParseError{File: "a.js", Err: ErrInvalidUTF8}
	assert.Equal(t, "parse a.js: content is not valid UTF-8", err.Error())
}
