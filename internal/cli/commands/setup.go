// Package commands implements the namelint subcommands.
package commands

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/namelint/internal/cli/config"
	"github.com/leapstack-labs/namelint/internal/cli/output"
	"github.com/leapstack-labs/namelint/internal/engine"
	"github.com/leapstack-labs/namelint/pkg/core"
)

// ErrViolations is returned by lint when an error-severity violation was
// reported. The process exits 1 without printing it.
var ErrViolations = errors.New("lint violations found")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer stored on the
// command's context by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), rendererMode(cfg.Format)),
	}
}

func rendererMode(format string) output.Mode {
	switch format {
	case "json":
		return output.ModeJSON
	case "text":
		return output.ModeText
	default:
		return output.ModeAuto
	}
}

// newEngine loads the rule registry and builds an engine for root. A
// configuration error is returned before any file is scanned.
func (c *CommandContext) newEngine(root string) (*engine.Engine, error) {
	reg, err := c.Cfg.LoadRegistry()
	if err != nil {
		return nil, err
	}
	return engine.New(reg, engine.Config{
		Root:    root,
		Scan:    c.Cfg.ScanOptions(),
		Extract: c.Cfg.ExtractOptions(),
		Jobs:    c.Cfg.Jobs,
		Logger:  c.Logger,
	})
}

func severityStyle(styles output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	default:
		return styles.Muted
	}
}
