package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/namelint/internal/cli/output"
	"github.com/leapstack-labs/namelint/internal/engine"
	"github.com/leapstack-labs/namelint/internal/state"
	"github.com/leapstack-labs/namelint/pkg/report"
)

// LintOptions holds options for the lint command that are not configuration.
type LintOptions struct {
	Path   string // Directory to lint
	Watch  bool   // Re-lint on change
	Record bool   // Store the run in history
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Check names in style sheets and scripts",
		Long: `Check declared names against the naming rules.

Walks the directory (default: current directory), extracts variables,
functions, classes, CSS class selectors and file names, and reports every
name that breaks a rule. Rules come from the built-in catalog and the
"rules" section of namelint.yaml.

Exit status is 0 when no error-severity violation was found, 1 when at
least one was, and 2 on configuration or usage errors.`,
		Example: `  # Lint the current directory
  namelint lint

  # Lint a project with an explicit config file
  namelint lint ./web --config ./web/namelint.yaml

  # Machine-readable output
  namelint lint --format json

  # Only report errors, skip one rule
  namelint lint --severity error --disable file-name-case

  # Re-lint on every change
  namelint lint --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = "."
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runLint(cmd, opts)
		},
	}

	// Flag values are read through the layered config.
	cmd.Flags().StringP("format", "f", "", "Output format: text, json")
	cmd.Flags().StringSlice("disable", nil, "Rule IDs to disable")
	cmd.Flags().StringSlice("rule", nil, "Run only these rule IDs")
	cmd.Flags().String("severity", "", "Least severe level to report: error, warning")
	cmd.Flags().IntP("jobs", "j", 0, "Parallel workers (default: number of CPUs)")
	cmd.Flags().Bool("no-defaults", false, "Do not load the built-in rule catalog")
	cmd.Flags().Bool("no-syntax-check", false, "Skip script syntax validation")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-lint when files change")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Record the run in the history database")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	format, err := lintFormat(cfg.Format)
	if err != nil {
		return err
	}
	threshold, err := cfg.Threshold()
	if err != nil {
		return err
	}

	eng, err := cmdCtx.newEngine(opts.Path)
	if err != nil {
		return err
	}

	newReporter := func() *report.Reporter { return report.New(report.WithThreshold(threshold)) }
	ctx := cmd.Context()

	if opts.Watch {
		return eng.Watch(ctx, engine.DefaultDebounce, newReporter, func(rep *report.Reporter, stats engine.Stats, err error) {
			if err != nil {
				cmdCtx.Logger.Error("lint run failed", "error", err)
				return
			}
			if err := renderReport(cmdCtx.Renderer, rep, format); err != nil {
				cmdCtx.Logger.Error("failed to write report", "error", err)
			}
			if opts.Record {
				recordRun(ctx, cmdCtx, eng.Root(), rep, stats)
			}
		})
	}

	rep := newReporter()
	stats, err := eng.Run(ctx, rep)
	if err != nil {
		return err
	}
	if err := renderReport(cmdCtx.Renderer, rep, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if opts.Record {
		recordRun(ctx, cmdCtx, eng.Root(), rep, stats)
	}
	if rep.ExitStatus() != 0 {
		return ErrViolations
	}
	return nil
}

func lintFormat(s string) (report.Format, error) {
	if s == string(output.ModeAuto) {
		return report.FormatText, nil
	}
	return report.ParseFormat(s)
}

// renderReport writes styled, grouped output to color terminals and the
// plain report format everywhere else.
func renderReport(r *output.Renderer, rep *report.Reporter, format report.Format) error {
	if format == report.FormatJSON || !r.Styled() {
		return rep.Write(r.Writer(), format)
	}

	styles := r.Styles()
	violations := rep.Violations()
	if len(violations) == 0 {
		r.Success("No naming problems found")
		return nil
	}

	currentFile := ""
	for _, v := range violations {
		pos := v.Pos()
		if pos.File != currentFile {
			if currentFile != "" {
				r.Println("")
			}
			currentFile = pos.File
			r.Println(styles.Path.Render(pos.File))
		}
		sev := severityStyle(styles, v.Severity).Render(fmt.Sprintf("%-7s", v.Severity))
		r.Printf("  %s  %s  %s  %s\n",
			styles.Muted.Render(fmt.Sprintf("%d:%d", pos.Line, pos.Column)),
			sev,
			v.Message,
			styles.RuleID.Render(v.RuleID),
		)
		if v.Suggestion != "" {
			r.Printf("      %s %s\n", styles.Muted.Render("suggestion:"), v.Suggestion)
		}
	}
	r.Println("")

	summary := rep.Summary()
	line := summary.String()
	if summary.Errors > 0 {
		line = styles.Error.Render(line)
	} else {
		line = styles.Warning.Render(line)
	}
	r.Println(line)
	return nil
}

// recordRun stores the run in the history database. Failures are logged:
// the lint result stands on its own.
func recordRun(ctx context.Context, cmdCtx *CommandContext, root string, rep *report.Reporter, stats engine.Stats) {
	store, err := state.Open(ctx, cmdCtx.Cfg.History.DSN, cmdCtx.Logger)
	if err != nil {
		cmdCtx.Renderer.Warn(fmt.Sprintf("run not recorded: %v", err))
		return
	}
	defer func() { _ = store.Close() }()

	summary := rep.Summary()
	run, err := store.RecordRun(ctx, state.Run{
		Root:       root,
		StartedAt:  time.Now().Add(-stats.Duration),
		Duration:   stats.Duration,
		Files:      stats.Files,
		Violations: summary.Total,
		Errors:     summary.Errors,
		Warnings:   summary.Warnings,
		ExitStatus: rep.ExitStatus(),
	}, report.Entries(rep.Violations()))
	if err != nil {
		cmdCtx.Renderer.Warn(fmt.Sprintf("run not recorded: %v", err))
		return
	}
	cmdCtx.Logger.Info("run recorded", "id", run.ID, "violations", run.Violations)
	_, _ = fmt.Fprintf(cmdCtx.Renderer.ErrWriter(), "Recorded run %s\n", shortID(run.ID))
}
