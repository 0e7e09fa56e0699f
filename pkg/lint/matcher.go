package lint

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	starctx "github.com/leapstack-labs/namelint/internal/starlark"
	"github.com/leapstack-labs/namelint/pkg/core"
)

// Shape tags a Matcher variant.
type Shape string

// Matcher shapes.
const (
	ShapePattern   Shape = "pattern"
	ShapeLayout    Shape = "layout"
	ShapePredicate Shape = "predicate"
)

// Matcher decides whether a symbol conforms to a rule.
// The set of implementations is closed: NamePattern, FileLayout and Predicate.
type Matcher interface {
	// Shape returns the variant tag.
	Shape() Shape
	// String summarises the matcher for listings.
	String() string

	// match reports conformance and, on mismatch, a short description
	// of what is wrong ("is not camelCase"). An error means the symbol
	// could not be checked at all.
	match(sym Symbol, env *matchEnv) (bool, string, error)
}

// matchEnv is the read-only context shared by all matchers in one evaluation.
type matchEnv struct {
	layout *LayoutIndex
}

// =============================================================================
// NamePattern
// =============================================================================

// NamePattern matches symbol names against a regular expression, either
// given directly or expanded from one or more case styles.
type NamePattern struct {
	re     *regexp.Regexp
	styles []CaseStyle
}

func newPatternMatcher(pattern string) (*NamePattern, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &NamePattern{re: re}, nil
}

func newCaseMatcher(styles []CaseStyle) *NamePattern {
	alts := make([]string, len(styles))
	for i, s := range styles {
		alts[i] = s.Pattern()
	}
	re := regexp.MustCompile(`^(?:` + strings.Join(alts, "|") + `)$`)
	return &NamePattern{re: re, styles: slices.Clone(styles)}
}

// Shape implements Matcher.
func (m *NamePattern) Shape() Shape { return ShapePattern }

// String implements Matcher.
func (m *NamePattern) String() string {
	if len(m.styles) > 0 {
		names := make([]string, len(m.styles))
		for i, s := range m.styles {
			names[i] = string(s)
		}
		return "case: " + strings.Join(names, "|")
	}
	return "pattern: " + m.re.String()
}

// Pattern returns the compiled regular expression source.
func (m *NamePattern) Pattern() string { return m.re.String() }

// Styles returns the case styles the pattern was built from, if any.
func (m *NamePattern) Styles() []CaseStyle { return slices.Clone(m.styles) }

// MatchName reports whether name satisfies the pattern.
func (m *NamePattern) MatchName(name string) bool { return m.re.MatchString(name) }

func (m *NamePattern) match(sym Symbol, _ *matchEnv) (bool, string, error) {
	if m.re.MatchString(sym.Name) {
		return true, "", nil
	}
	if len(m.styles) > 0 {
		labels := make([]string, len(m.styles))
		for i, s := range m.styles {
			labels[i] = s.Label()
		}
		return false, "is not " + strings.Join(labels, " or "), nil
	}
	return false, fmt.Sprintf("does not match pattern `%s`", m.re.String()), nil
}

// Suggest returns a conforming rewrite of name, or "" if none is known.
// Only case-configured patterns can suggest.
func (m *NamePattern) Suggest(name string) string {
	for _, style := range m.styles {
		s := Convert(name, style)
		if s != "" && s != name && m.re.MatchString(s) {
			return s
		}
	}
	return ""
}

// =============================================================================
// FileLayout
// =============================================================================

// FileLayout checks where a file lives relative to its siblings and directory.
// It applies to file symbols only; any other symbol trivially conforms.
type FileLayout struct {
	sibling   string
	matchDir  bool
	directory *regexp.Regexp
}

// Shape implements Matcher.
func (m *FileLayout) Shape() Shape { return ShapeLayout }

// String implements Matcher.
func (m *FileLayout) String() string {
	var parts []string
	if m.sibling != "" {
		parts = append(parts, "sibling="+m.sibling)
	}
	if m.matchDir {
		parts = append(parts, "match_dir")
	}
	if m.directory != nil {
		parts = append(parts, "directory="+m.directory.String())
	}
	return "layout: " + strings.Join(parts, ", ")
}

// Sibling returns the required sibling extension, if any.
func (m *FileLayout) Sibling() string { return m.sibling }

func (m *FileLayout) match(sym Symbol, env *matchEnv) (bool, string, error) {
	if sym.Kind != core.TargetFile {
		return true, "", nil
	}

	file := sym.Pos.File
	dir := path.Dir(file)

	if m.sibling != "" {
		// "date.utils.jsx" pairs with "date.utils.css": only the final
		// extension is replaced.
		base := path.Base(file)
		want := path.Join(dir, strings.TrimSuffix(base, path.Ext(base))+m.sibling)
		if want != file && (env == nil || !env.layout.Has(want)) {
			return false, "has no sibling " + path.Base(want), nil
		}
	}

	if m.matchDir && sym.Name != "index" && dir != "." && path.Base(dir) != sym.Name {
		return false, fmt.Sprintf("does not match its directory %q", path.Base(dir)), nil
	}

	if m.directory != nil {
		rel := dir
		if rel == "." {
			rel = ""
		}
		if !m.directory.MatchString(rel) {
			return false, fmt.Sprintf("is not in a directory matching `%s`", m.directory.String()), nil
		}
	}

	return true, "", nil
}

// =============================================================================
// Predicate
// =============================================================================

// Predicate evaluates a Starlark boolean expression over the symbol fields.
type Predicate struct {
	prog *starctx.Program
}

// Shape implements Matcher.
func (m *Predicate) Shape() Shape { return ShapePredicate }

// String implements Matcher.
func (m *Predicate) String() string { return "predicate: " + m.prog.Expr() }

// Expr returns the predicate source.
func (m *Predicate) Expr() string { return m.prog.Expr() }

func (m *Predicate) match(sym Symbol, _ *matchEnv) (bool, string, error) {
	ok, err := m.prog.Eval(starctx.SymbolInfo{
		Name:   sym.Name,
		Kind:   string(sym.Kind),
		File:   sym.Pos.File,
		Line:   sym.Pos.Line,
		Column: sym.Pos.Column,
		Scope:  sym.Scope.Path(),
	})
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, fmt.Sprintf("does not satisfy `%s`", m.prog.Expr()), nil
	}
	return true, "", nil
}
