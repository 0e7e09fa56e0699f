package main

import (
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/namelint/internal/catalog"
	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/lint"
)

// generateRuleDocs writes one page listing every catalog rule, grouped by
// target kind. Rules disabled by default are documented too.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules, disabled, err := catalogRules()
	if err != nil {
		return err
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Rules", "Built-in naming rules")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("namelint ships **%d rules**. Override any field, or disable a rule, in the %s section of namelint.yaml.",
		len(rules), InlineCode("rules")))

	for _, kind := range core.TargetKinds {
		var group []core.RuleInfo
		for _, r := range rules {
			if r.Target == kind {
				group = append(group, r)
			}
		}
		if len(group) == 0 {
			continue
		}

		w.Header(2, kind.String())
		for _, r := range group {
			writeRuleDoc(w, r, disabled[r.ID])
		}
	}

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md")
	return nil
}

// catalogRules loads the catalog with every rule enabled and reports which
// ones ship disabled.
func catalogRules() ([]core.RuleInfo, map[string]bool, error) {
	defs, err := catalog.Definitions()
	if err != nil {
		return nil, nil, err
	}

	disabled := make(map[string]bool)
	enabled := make(map[string]map[string]any, len(defs))
	for id, def := range defs {
		def = maps.Clone(def)
		if off, _ := def["disabled"].(bool); off {
			disabled[id] = true
		}
		delete(def, "disabled")
		enabled[id] = def
	}

	reg, err := lint.LoadRegistry(enabled, lint.NewConfig())
	if err != nil {
		return nil, nil, err
	}
	return reg.Infos(), disabled, nil
}

func writeRuleDoc(w *MarkdownWriter, rule core.RuleInfo, disabled bool) {
	w.Line(fmt.Sprintf("### %s {#%s}", rule.ID, rule.ID))
	w.Newline()

	status := ""
	if disabled {
		status = " (disabled by default)"
	}
	w.Line(fmt.Sprintf("%s %s%s", Bold("Severity:"), InlineCode(rule.Severity.String()), status))
	w.Newline()
	w.Line(fmt.Sprintf("%s %s", Bold("Matcher:"), InlineCode(rule.Matcher)))
	w.Newline()

	if rule.Rationale != "" {
		w.Paragraph(cleanDescription(rule.Rationale))
	}

	var scope []string
	for _, g := range rule.Include {
		scope = append(scope, "include "+InlineCode(g))
	}
	for _, g := range rule.Exclude {
		scope = append(scope, "exclude "+InlineCode(g))
	}
	for _, a := range rule.Allow {
		scope = append(scope, "allow "+InlineCode(a))
	}
	if len(scope) > 0 {
		w.BulletList(scope)
	}

	w.Line("---")
	w.Newline()
}
