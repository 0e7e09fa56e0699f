package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/namelint/internal/cli/output"
	"github.com/leapstack-labs/namelint/pkg/core"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Kind string // Filter by target kind
	Tree bool   // Group by target kind as a tree
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the effective naming rules",
		Long: `List the rules lint would apply: the built-in catalog merged with the
"rules" section of namelint.yaml, minus disabled rules.

With a rule ID, show that rule in detail.`,
		Example: `  # List all rules
  namelint rules

  # Show one rule
  namelint rules selector-bem

  # Rules grouped by target kind
  namelint rules --tree

  # Only selector rules, as YAML
  namelint rules --kind selector --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format: text, json, yaml")
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Filter by target kind: variable, function, class, file, selector")
	cmd.Flags().BoolVar(&opts.Tree, "tree", false, "Group rules by target kind")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		kinds := make([]string, len(core.TargetKinds))
		for i, k := range core.TargetKinds {
			kinds[i] = k.String()
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func rulesFormat(s string) (string, error) {
	switch s {
	case "", string(output.ModeAuto), "text":
		return "text", nil
	case "json", "yaml":
		return s, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

func effectiveRules(cmdCtx *CommandContext) ([]core.RuleInfo, error) {
	reg, err := cmdCtx.Cfg.LoadRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Infos(), nil
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	format, err := rulesFormat(cmdCtx.Cfg.Format)
	if err != nil {
		return err
	}

	rules, err := effectiveRules(cmdCtx)
	if err != nil {
		return err
	}

	if opts.Kind != "" {
		kind, ok := core.ParseTargetKind(opts.Kind)
		if !ok {
			return fmt.Errorf("unknown target kind %q", opts.Kind)
		}
		filtered := rules[:0]
		for _, rule := range rules {
			if rule.Target == kind {
				filtered = append(filtered, rule)
			}
		}
		rules = filtered
	}

	switch {
	case format == "json":
		return r.JSON(RulesJSONOutput{Rules: rules, Count: len(rules)})
	case format == "yaml":
		return writeYAML(r, map[string]any{"rules": rules})
	case opts.Tree:
		r.Printf("%s", rulesTree(r, rules))
		return nil
	default:
		listRulesText(r, rules)
		return nil
	}
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []core.RuleInfo `json:"rules"`
	Count int             `json:"count"`
}

func listRulesText(r *output.Renderer, rules []core.RuleInfo) {
	if len(rules) == 0 {
		r.Println("No rules enabled")
		return
	}
	styles := r.Styles()

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Target", "Matcher", "Severity"})
	for _, rule := range rules {
		t.AppendRow(table.Row{
			rule.ID,
			rule.Target,
			truncateOneLine(rule.Matcher, 60),
			severityStyle(styles, rule.Severity).Render(rule.Severity.String()),
		})
	}
	t.Render()

	r.Println(styles.Muted.Render("Use 'namelint rules <rule-id>' for details"))
}

func rulesTree(r *output.Renderer, rules []core.RuleInfo) string {
	styles := r.Styles()
	tree := treeprint.NewWithRoot(fmt.Sprintf("rules (%d)", len(rules)))
	for _, kind := range core.TargetKinds {
		var branch treeprint.Tree
		for _, rule := range rules {
			if rule.Target != kind {
				continue
			}
			if branch == nil {
				branch = tree.AddBranch(styles.Bold.Render(kind.String()))
			}
			branch.AddNode(fmt.Sprintf("%s %s %s",
				rule.ID,
				severityStyle(styles, rule.Severity).Render("["+rule.Severity.String()+"]"),
				styles.Muted.Render(truncateOneLine(rule.Matcher, 60)),
			))
		}
	}
	return tree.String()
}

func showRule(cmd *cobra.Command, ruleID string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	format, err := rulesFormat(cmdCtx.Cfg.Format)
	if err != nil {
		return err
	}

	rules, err := effectiveRules(cmdCtx)
	if err != nil {
		return err
	}

	var rule *core.RuleInfo
	for i := range rules {
		if rules[i].ID == ruleID {
			rule = &rules[i]
			break
		}
	}
	if rule == nil {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	switch format {
	case "json":
		return r.JSON(rule)
	case "yaml":
		return writeYAML(r, rule)
	default:
		showRuleText(r, rule)
		return nil
	}
}

func showRuleText(r *output.Renderer, rule *core.RuleInfo) {
	styles := r.Styles()

	r.Println(styles.Header.Render(rule.ID))
	r.Println("")
	r.Printf("  %s: %s\n", styles.Bold.Render("Target"), rule.Target)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), severityStyle(styles, rule.Severity).Render(rule.Severity.String()))
	r.Printf("  %s: %s\n", styles.Bold.Render("Matcher"), rule.Matcher)
	if len(rule.Include) > 0 {
		r.Printf("  %s: %s\n", styles.Bold.Render("Include"), strings.Join(rule.Include, ", "))
	}
	if len(rule.Exclude) > 0 {
		r.Printf("  %s: %s\n", styles.Bold.Render("Exclude"), strings.Join(rule.Exclude, ", "))
	}
	if len(rule.Allow) > 0 {
		r.Printf("  %s: %s\n", styles.Bold.Render("Allow"), strings.Join(rule.Allow, ", "))
	}
	if rule.Rationale != "" {
		r.Println("")
		r.Println(styles.Bold.Render("Why"))
		r.Println("  " + rule.Rationale)
	}
}

func writeYAML(r *output.Renderer, v any) error {
	enc := yaml.NewEncoder(r.Writer())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// truncateOneLine collapses whitespace and cuts s to at most n runes.
func truncateOneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
