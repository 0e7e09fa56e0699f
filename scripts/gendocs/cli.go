package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/namelint/internal/cli"
)

// generateCLIDocs writes an index page and one page per command. Nested
// commands get their own page named after the command path ("history-show.md").
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	if err := generateCLIIndex(rootCmd, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	return walkCommands(rootCmd, func(cmd *cobra.Command) error {
		name := pageName(cmd)
		if err := generateCommandPage(cmd, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", name, err)
		}
		log.Printf("  Generated %s.md", name)
		return nil
	})
}

// walkCommands visits every documented command below parent, depth first.
func walkCommands(parent *cobra.Command, fn func(*cobra.Command) error) error {
	for _, cmd := range parent.Commands() {
		if !documented(cmd) {
			continue
		}
		if err := fn(cmd); err != nil {
			return err
		}
		if err := walkCommands(cmd, fn); err != nil {
			return err
		}
	}
	return nil
}

func documented(cmd *cobra.Command) bool {
	return !cmd.Hidden && cmd.Name() != "help" && cmd.Name() != "__complete"
}

// pageName is the command path without the binary name, joined with dashes.
func pageName(cmd *cobra.Command) string {
	path := strings.Fields(cmd.CommandPath())
	return strings.Join(path[1:], "-")
}

// generateCLIIndex generates the CLI overview page.
func generateCLIIndex(rootCmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("CLI Reference", "Command-line interface reference for namelint")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("namelint checks variable, function, class, CSS selector and file names against declarative naming rules.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/namelint/cmd/namelint@latest")

	w.Header(2, "Basic Usage")
	w.CodeBlock("bash", "namelint <command> [options]")

	w.Header(2, "Commands")

	headers := []string{"Command", "Description"}
	var rows [][]string
	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table(headers, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, rootCmd.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph("Every configuration key can be set with a " + InlineCode("NAMELINT_") +
		" variable. Nested keys join with an underscore and lists are comma-separated.")
	w.Table([]string{"Variable", "Key"}, [][]string{
		{InlineCode("NAMELINT_FORMAT"), InlineCode("format")},
		{InlineCode("NAMELINT_LOG_LEVEL"), InlineCode("log.level")},
		{InlineCode("NAMELINT_LINT_SEVERITY"), InlineCode("lint.severity")},
		{InlineCode("NAMELINT_LINT_DISABLED"), InlineCode("lint.disabled")},
		{InlineCode("NAMELINT_SCAN_IGNORE"), InlineCode("scan.ignore")},
		{InlineCode("NAMELINT_HISTORY_DSN"), InlineCode("history.dsn")},
	})
	w.Paragraph("Command-line flags take precedence over environment variables, which take precedence over namelint.yaml.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "No error-severity violations"},
		{InlineCode("1"), "At least one error-severity violation"},
		{InlineCode("2"), "Configuration, usage or runtime error"},
	})

	w.Header(2, "Getting Help")
	w.CodeBlock("bash", `# General help
namelint help
namelint --help

# Command-specific help
namelint lint --help`)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateCommandPage generates documentation for a single command.
func generateCommandPage(cmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter(cmd.CommandPath(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.CommandPath())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	if cmd.Runnable() {
		w.CodeBlock("bash", cmd.UseLine())
	} else {
		w.CodeBlock("bash", cmd.CommandPath()+" <subcommand> [options]")
	}

	var subs [][]string
	for _, sub := range cmd.Commands() {
		if documented(sub) {
			link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(sub.Name()), pageName(sub))
			subs = append(subs, []string{link, cleanDescription(sub.Short)})
		}
	}
	if len(subs) > 0 {
		w.Header(2, "Subcommands")
		w.Table([]string{"Subcommand", "Description"}, subs)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	return os.WriteFile(filepath.Join(outDir, pageName(cmd)+".md"), w.Bytes(), 0600)
}

// writeFlagsTable writes one row per visible flag. Empty defaults and zero
// numbers are left blank; other defaults are shown as code.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		switch def {
		case "", "0", "[]", "false":
			def = ""
		default:
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// cleanExample removes common leading whitespace from example text.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")
	if len(lines) == 0 {
		return example
	}

	// Find minimum indentation (ignoring empty lines)
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	if minIndent <= 0 {
		return strings.TrimSpace(example)
	}

	// Remove common indentation
	var result []string
	for _, line := range lines {
		if len(line) >= minIndent {
			result = append(result, line[minIndent:])
		} else {
			result = append(result, strings.TrimLeft(line, " \t"))
		}
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
