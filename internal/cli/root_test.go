package cli_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/namelint/internal/cli"
	"github.com/leapstack-labs/namelint/internal/cli/commands"
	clitest "github.com/leapstack-labs/namelint/internal/cli/testutil"
	"github.com/leapstack-labs/namelint/internal/testutil"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: cli.ExitOK},
		{name: "violations", err: commands.ErrViolations, want: cli.ExitViolations},
		{name: "wrapped violations", err: fmt.Errorf("lint: %w", commands.ErrViolations), want: cli.ExitViolations},
		{name: "other error", err: errors.New("boom"), want: cli.ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}

func TestRootCmd_Help(t *testing.T) {
	res := clitest.Run(t, "--help")
	require.NoError(t, res.Err)
	for _, name := range []string{"lint", "rules", "init", "history", "version", "completion"} {
		assert.Contains(t, res.Stdout, name)
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	res := clitest.Run(t, "--version")
	require.NoError(t, res.Err)
	assert.Equal(t, "namelint "+cli.Version+"\n", res.Stdout)
}

func TestRootCmd_LintExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		config  string
		want    int
	}{
		{
			name:    "clean",
			archive: "-- src/app.js --\nconst firstName = 1;\n",
			want:    cli.ExitOK,
		},
		{
			name:    "error violation",
			archive: "-- src/app.js --\nconst first_name = 1;\n",
			want:    cli.ExitViolations,
		},
		{
			name:    "warning only",
			archive: "-- src/app.js --\nconst first_name = 1;\n",
			config:  "rules:\n  variable-camel-case:\n    severity: warning\n",
			want:    cli.ExitOK,
		},
		{
			name:    "invalid config",
			archive: "-- src/app.js --\nconst firstName = 1;\n",
			config:  "log:\n  level: loud\n",
			want:    cli.ExitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.WriteTree(t, tt.archive)
			if tt.config != "" {
				clitest.WriteConfig(t, root, tt.config)
			}

			res := clitest.Run(t, "lint", root)
			assert.Equal(t, tt.want, res.ExitCode(), "stdout: %s\nerr: %v", res.Stdout, res.Err)
		})
	}
}

func TestRootCmd_ExplicitConfig(t *testing.T) {
	root := testutil.WriteTree(t, "-- src/app.js --\nconst first_name = 1;\n")
	cfgPath := clitest.WriteConfig(t, t.TempDir(), "lint:\n  disabled: [variable-camel-case]\n")

	res := clitest.Run(t, "lint", root, "--config", cfgPath)
	require.NoError(t, res.Err)

	res = clitest.Run(t, "lint", root, "--config", cfgPath+".missing")
	assert.ErrorContains(t, res.Err, "error reading config file")
	assert.Equal(t, cli.ExitError, res.ExitCode())
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	res := clitest.Run(t, "frobnicate")
	require.Error(t, res.Err)
	assert.Equal(t, cli.ExitError, res.ExitCode())
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			res := clitest.Run(t, "completion", shell)
			require.NoError(t, res.Err)
			assert.Contains(t, res.Stdout, "namelint")
		})
	}

	res := clitest.Run(t, "completion", "tcsh")
	assert.Error(t, res.Err)
}
