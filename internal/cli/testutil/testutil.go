// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/namelint/internal/cli"
)

// Result is the outcome of one CLI invocation.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// ExitCode is the process status the invocation would exit with.
func (r Result) ExitCode() int { return cli.ExitCode(r.Err) }

// Run executes the namelint root command with args, capturing its output.
func Run(t testing.TB, args ...string) Result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// WriteConfig writes a namelint.yaml into dir and returns its path.
func WriteConfig(t testing.TB, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "namelint.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t testing.TB, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
