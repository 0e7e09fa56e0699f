package lint

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/namelint/pkg/core"
)

// Rule is a compiled naming rule. Rules are immutable once loaded:
// all fields are unexported and read through methods.
type Rule struct {
	id        string
	target    core.TargetKind
	matcher   Matcher
	severity  core.Severity
	rationale string
	message   string // optional template, see renderMessage

	fileKinds []core.FileKind // empty = any
	include   []string        // doublestar globs on the relative path; empty = all
	exclude   []string
	allow     map[string]struct{}
}

// ID returns the rule identifier.
func (r *Rule) ID() string { return r.id }

// Target returns the symbol kind this rule checks.
func (r *Rule) Target() core.TargetKind { return r.target }

// Matcher returns the rule's matcher variant.
func (r *Rule) Matcher() Matcher { return r.matcher }

// Severity returns the effective severity after overrides.
func (r *Rule) Severity() core.Severity { return r.severity }

// Rationale explains why the rule exists.
func (r *Rule) Rationale() string { return r.rationale }

// Allowed returns the names exempt from this rule, sorted.
func (r *Rule) Allowed() []string {
	names := make([]string, 0, len(r.allow))
	for n := range r.allow {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Allows reports whether name is on the rule's allow list.
func (r *Rule) Allows(name string) bool {
	_, ok := r.allow[name]
	return ok
}

// AppliesTo reports whether the rule's scope covers a file.
func (r *Rule) AppliesTo(file string, kind core.FileKind) bool {
	if len(r.fileKinds) > 0 && !slices.Contains(r.fileKinds, kind) {
		return false
	}
	if len(r.include) > 0 && !matchAny(r.include, file) {
		return false
	}
	return !matchAny(r.exclude, file)
}

// Info returns metadata for listings and serialisation.
func (r *Rule) Info() core.RuleInfo {
	return core.RuleInfo{
		ID:        r.id,
		Target:    r.target,
		Shape:     string(r.matcher.Shape()),
		Severity:  r.severity,
		Matcher:   r.matcher.String(),
		Rationale: r.rationale,
		Include:   slices.Clone(r.include),
		Exclude:   slices.Clone(r.exclude),
		Allow:     r.Allowed(),
	}
}

// check tests one symbol. The caller has already selected the rule by target kind.
func (r *Rule) check(sym Symbol, env *matchEnv) (Violation, bool, *RuleError) {
	if r.Allows(sym.Name) {
		return Violation{}, false, nil
	}
	ok, detail, err := r.matcher.match(sym, env)
	if err != nil {
		return Violation{}, false, &RuleError{RuleID: r.id, Symbol: sym, Err: err}
	}
	if ok {
		return Violation{}, false, nil
	}

	v := Violation{
		RuleID:   r.id,
		Severity: r.severity,
		Symbol:   sym,
		Message:  r.renderMessage(sym, detail),
	}
	if np, isPattern := r.matcher.(*NamePattern); isPattern {
		v.Suggestion = np.Suggest(sym.Name)
	}
	return v, true, nil
}

// renderMessage expands the message template. Supported placeholders:
// {name}, {kind}, {file}, {rule} and {detail}.
func (r *Rule) renderMessage(sym Symbol, detail string) string {
	if r.message == "" {
		return string(sym.Kind) + " " + quote(sym.Name) + " " + detail
	}
	return strings.NewReplacer(
		"{name}", sym.Name,
		"{kind}", string(sym.Kind),
		"{file}", sym.Pos.File,
		"{rule}", r.id,
		"{detail}", detail,
	).Replace(r.message)
}

func quote(s string) string { return `"` + s + `"` }

func matchAny(globs []string, file string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, file); ok {
			return true
		}
	}
	return false
}
