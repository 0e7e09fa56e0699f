package starlark

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const entrypoint = "__predicate"

// Program is a compiled predicate expression. It is safe for concurrent use:
// its globals are frozen and every call runs on its own thread.
type Program struct {
	name string
	expr string
	fn   *starlark.Function
	pool *ThreadPool
}

// Compile wraps expr in a function of the symbol fields and executes the
// resulting module once. Syntax errors and unknown identifiers are reported here.
func Compile(name, expr string, pool *ThreadPool) (*Program, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, &EvalError{File: name, Expr: expr, Message: "empty expression"}
	}
	if pool == nil {
		pool = NewThreadPool(0)
	}

	src := fmt.Sprintf("def %s(%s):\n    return (%s)\n", entrypoint, strings.Join(Params, ", "), expr)

	thread := &starlark.Thread{Name: "compile:" + name}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, src, Predeclared())
	if err != nil {
		return nil, &EvalError{File: name, Expr: expr, Message: err.Error()}
	}
	globals.Freeze()

	fn, ok := globals[entrypoint].(*starlark.Function)
	if !ok {
		return nil, &EvalError{File: name, Expr: expr, Message: "expression did not compile to a function"}
	}

	return &Program{name: name, expr: expr, fn: fn, pool: pool}, nil
}

// Expr returns the source expression.
func (p *Program) Expr() string { return p.expr }

// Eval runs the predicate against a symbol and reports its truth value.
func (p *Program) Eval(sym SymbolInfo) (bool, error) {
	thread := p.pool.Get(p.name)
	defer p.pool.Put(thread)

	result, err := starlark.Call(thread, p.fn, sym.Args(), nil)
	if err != nil {
		return false, &EvalError{File: sym.File, Line: sym.Line, Expr: p.expr, Message: err.Error()}
	}
	return bool(result.Truth()), nil
}

// EvalError represents an error compiling or evaluating a predicate.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: error evaluating %q: %s", e.File, e.Line, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}
