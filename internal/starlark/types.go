// Package starlark provides the Starlark runtime for predicate rules.
//
// A predicate is a boolean expression compiled once into a function of the
// symbol fields (name, kind, file, line, column, scope) and called from
// pooled threads during evaluation.
package starlark

import "go.starlark.net/starlark"

// SymbolInfo holds the symbol fields visible to a predicate.
type SymbolInfo struct {
	Name   string
	Kind   string
	File   string
	Line   int
	Column int
	Scope  string // rendered scope chain, e.g. "file > function:render"
}

// Params lists predicate parameter names in call order.
var Params = []string{"name", "kind", "file", "line", "column", "scope"}

// Args converts the symbol to positional call arguments matching Params.
func (s SymbolInfo) Args() starlark.Tuple {
	return starlark.Tuple{
		starlark.String(s.Name),
		starlark.String(s.Kind),
		starlark.String(s.File),
		starlark.MakeInt(s.Line),
		starlark.MakeInt(s.Column),
		starlark.String(s.Scope),
	}
}
