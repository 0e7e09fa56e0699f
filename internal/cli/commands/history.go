package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/namelint/internal/cli/output"
	"github.com/leapstack-labs/namelint/internal/state"
	"github.com/leapstack-labs/namelint/pkg/report"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded lint runs",
		Long: `List lint runs stored with "namelint lint --record", newest first.

The history database is set by history.dsn in namelint.yaml: a SQLite file
path (default .namelint/history.db) or a postgres:// URL.`,
		Example: `  # Recent runs
  namelint history

  # Violations of one run (an ID prefix is enough)
  namelint history show 3f9c2a1b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.PersistentFlags().StringP("format", "f", "", "Output format: text, json")
	cmd.AddCommand(newHistoryShowCommand())

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the violations of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryRun(cmd, args[0])
		},
	}
}

func openStore(cmd *cobra.Command, cmdCtx *CommandContext) (*state.Store, error) {
	return state.Open(cmd.Context(), cmdCtx.Cfg.History.DSN, cmdCtx.Logger)
}

func listHistory(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openStore(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []state.Run{}
		}
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("No recorded runs")
		return nil
	}

	styles := r.Styles()
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Started", "Root", "Files", "Errors", "Warnings", "Status"})
	for _, run := range runs {
		status := styles.Success.Render("ok")
		if run.ExitStatus != 0 {
			status = styles.Error.Render("failed")
		}
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			run.Root,
			run.Files,
			run.Errors,
			run.Warnings,
			status,
		})
	}
	t.Render()
	return nil
}

// RunJSONOutput is the JSON output of history show.
type RunJSONOutput struct {
	Run        state.Run      `json:"run"`
	Violations []report.Entry `json:"violations"`
}

func showHistoryRun(cmd *cobra.Command, id string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openStore(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, entries, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(RunJSONOutput{Run: run, Violations: entries})
	}

	styles := r.Styles()
	r.Println(styles.Header.Render("Run " + run.ID))
	r.Printf("  %s: %s\n", styles.Bold.Render("Root"), run.Root)
	r.Printf("  %s: %s (%s)\n", styles.Bold.Render("Started"), run.StartedAt.Local().Format(time.DateTime), run.Duration)
	r.Printf("  %s: %d\n", styles.Bold.Render("Files"), run.Files)
	r.Printf("  %s: %s\n", styles.Bold.Render("Exit status"), strconv.Itoa(run.ExitStatus))
	r.Println("")

	for _, e := range entries {
		line := fmt.Sprintf("%s:%d:%d: %s: %s [%s]", e.File, e.Line, e.Column, e.Severity, e.Message, e.RuleID)
		if e.Suggestion != "" {
			line += " (suggestion: " + e.Suggestion + ")"
		}
		r.Println(line)
	}
	if len(entries) > 0 {
		r.Println("")
	}
	r.Println(report.Summary{
		Total:    run.Violations,
		Errors:   run.Errors,
		Warnings: run.Warnings,
		Files:    countFiles(entries),
	}.String())
	return nil
}

func countFiles(entries []report.Entry) int {
	files := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		files[e.File] = struct{}{}
	}
	return len(files)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
