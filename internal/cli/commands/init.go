package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/namelint/internal/catalog"
	"github.com/leapstack-labs/namelint/internal/cli/output"
)

// ConfigFileName is the file written by init.
const ConfigFileName = "namelint.yaml"

const configHeader = `# namelint configuration.
#
# Settings can also come from NAMELINT_* environment variables
# (NAMELINT_LINT_SEVERITY=error) and command-line flags.

lint:
  # Include the built-in catalog; rules below override it field by field.
  defaults: true
  # Least severe level reported: error or warning.
  severity: warning
  disabled: []

scan:
  # Globs on slash-separated paths relative to the lint root.
  ignore: []

history:
  dsn: .namelint/history.db

`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter namelint.yaml",
		Long: `Write a namelint.yaml holding the default settings and a copy of the
built-in rule catalog, ready to be edited.`,
		Example: `  # Initialize in current directory
  namelint init

  # Initialize another directory
  namelint init ./web

  # Force overwrite existing config
  namelint init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(NewCommandContext(cmd).Renderer, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	buf.Write(catalog.Source())

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.Success("Created " + path)
	return nil
}
