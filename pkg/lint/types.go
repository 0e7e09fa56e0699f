package lint

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/namelint/pkg/core"
)

// =============================================================================
// Symbols
// =============================================================================

// Symbol is a named declaration extracted from a source file.
// Symbols are immutable snapshots; nothing mutates them after extraction.
type Symbol struct {
	Name  string
	Kind  core.TargetKind
	Pos   core.Position
	Scope *Scope // enclosing scope; a back-reference, not owned by the symbol
}

// ScopeKind classifies a lexical scope.
type ScopeKind string

// Scope kinds.
const (
	ScopeFile     ScopeKind = "file"
	ScopeBlock    ScopeKind = "block"
	ScopeFunction ScopeKind = "function"
	ScopeClass    ScopeKind = "class"
	ScopeRule     ScopeKind = "rule"    // CSS qualified rule (selector block)
	ScopeAtRule   ScopeKind = "at-rule" // CSS @media, @supports, ...
)

// Scope is a lexical scope enclosing one or more symbols.
type Scope struct {
	Kind   ScopeKind
	Name   string
	Parent *Scope
}

// Path renders the scope chain from the outermost scope, e.g. "file > function:render".
func (s *Scope) Path() string {
	if s == nil {
		return ""
	}
	var parts []string
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Name != "" {
			parts = append(parts, string(cur.Kind)+":"+cur.Name)
		} else {
			parts = append(parts, string(cur.Kind))
		}
	}
	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}

// FileSymbols holds every symbol extracted from one file.
type FileSymbols struct {
	File    string // slash-separated path relative to the lint root
	Kind    core.FileKind
	Symbols []Symbol
}

// =============================================================================
// Violations
// =============================================================================

// Violation is a detected breach of a Rule at a specific source location.
type Violation struct {
	RuleID     string
	Severity   core.Severity
	Symbol     Symbol
	Message    string
	Suggestion string // Optional: a conforming name
}

// Pos returns the location of the offending symbol.
func (v Violation) Pos() core.Position {
	return v.Symbol.Pos
}

// SortViolations orders violations by file, line, column, then rule ID.
func SortViolations(vs []Violation) {
	slices.SortStableFunc(vs, compareViolations)
}

func compareViolations(a, b Violation) int {
	pa, pb := a.Pos(), b.Pos()
	switch {
	case pa.Before(pb):
		return -1
	case pb.Before(pa):
		return 1
	}
	return strings.Compare(a.RuleID, b.RuleID)
}

// =============================================================================
// Rule errors
// =============================================================================

// RuleError records a rule that could not be evaluated against a symbol, such
// as a predicate failing at runtime. It is not a violation.
type RuleError struct {
	RuleID string
	Symbol Symbol
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: rule %s on %s %q: %v", e.Symbol.Pos, e.RuleID, e.Symbol.Kind, e.Symbol.Name, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Result is the outcome of one evaluation. Both slices are ordered by file,
// line, column and rule ID.
type Result struct {
	Violations []Violation
	Errors     []*RuleError
}

func (r *Result) merge(o Result) {
	r.Violations = append(r.Violations, o.Violations...)
	r.Errors = append(r.Errors, o.Errors...)
}

func (r *Result) sort() {
	SortViolations(r.Violations)
	slices.SortStableFunc(r.Errors, func(a, b *RuleError) int {
		return compareViolations(
			Violation{RuleID: a.RuleID, Symbol: a.Symbol},
			Violation{RuleID: b.RuleID, Symbol: b.Symbol},
		)
	})
}
