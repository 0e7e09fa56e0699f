package lint

import (
	"slices"
	"strings"

	"github.com/leapstack-labs/namelint/pkg/core"
)

// Registry is an immutable, ID-sorted set of compiled rules.
// It is built once per run and passed explicitly; there is no global registry.
type Registry struct {
	rules  []*Rule
	byID   map[string]*Rule
	byKind map[core.TargetKind][]*Rule
}

// NewRegistry indexes rules. Duplicate IDs are a configuration error.
func NewRegistry(rules ...*Rule) (*Registry, error) {
	sorted := slices.Clone(rules)
	slices.SortFunc(sorted, func(a, b *Rule) int { return strings.Compare(a.id, b.id) })

	r := &Registry{
		rules:  sorted,
		byID:   make(map[string]*Rule, len(sorted)),
		byKind: make(map[core.TargetKind][]*Rule),
	}
	for _, rule := range sorted {
		if _, dup := r.byID[rule.id]; dup {
			return nil, &ConfigError{RuleID: rule.id, Err: errDuplicateRule}
		}
		r.byID[rule.id] = rule
		r.byKind[rule.target] = append(r.byKind[rule.target], rule)
	}
	return r, nil
}

// Get returns a rule by ID.
func (r *Registry) Get(id string) (*Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// ByKind returns the rules targeting kind, sorted by ID.
func (r *Registry) ByKind(kind core.TargetKind) []*Rule {
	return slices.Clone(r.byKind[kind])
}

// Rules returns all rules sorted by ID.
func (r *Registry) Rules() []*Rule {
	return slices.Clone(r.rules)
}

// Len returns the number of rules.
func (r *Registry) Len() int { return len(r.rules) }

// Infos returns metadata for every rule, sorted by ID.
func (r *Registry) Infos() []core.RuleInfo {
	infos := make([]core.RuleInfo, len(r.rules))
	for i, rule := range r.rules {
		infos[i] = rule.Info()
	}
	return infos
}
