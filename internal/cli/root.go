// Package cli provides the command-line interface for namelint.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/namelint/internal/cli/commands"
	"github.com/leapstack-labs/namelint/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Exit statuses.
const (
	ExitOK         = 0
	ExitViolations = 1
	ExitError      = 2
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "namelint",
		Short: "namelint - naming conventions for BEM style sheets and JS/React/TS",
		Long: `namelint checks the names declared in a front-end code base: variables,
functions, classes, CSS class selectors and file names.

Rules are declarative. A built-in catalog covers camelCase scripts, PascalCase
components and BEM selectors; namelint.yaml adds, overrides or disables rules.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip config loading for help and completion commands
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			// The lint root anchors the search for namelint.yaml.
			searchDir := "."
			if cmd.Name() == "lint" && len(args) > 0 {
				searchDir = args[0]
			}

			cfg, err := config.Load(config.LoadOptions{
				File:      cfgFile,
				SearchDir: searchDir,
				Flags:     cmd.Flags(),
			})
			if err != nil {
				return err
			}

			logger := cfg.NewLogger(cmd.ErrOrStderr())
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: namelint.yaml found upward from the lint root)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command. Errors other than lint violations are
// printed to stderr.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrViolations) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// ExitCode maps the error returned by Execute to the process exit status:
// 0 clean, 1 error-severity violations, 2 configuration, usage or runtime errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, commands.ErrViolations):
		return ExitViolations
	default:
		return ExitError
	}
}
