// Package report buffers lint violations and writes them as text or JSON.
//
// A Reporter is the one place where results from concurrent evaluation meet:
// Add may be called from any goroutine, and everything it returns is in scan
// order (file, line, column, rule).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/lint"
)

// Format selects the output encoding of Write.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithThreshold drops violations less severe than min.
func WithThreshold(min core.Severity) Option {
	return func(r *Reporter) { r.threshold = min }
}

// Reporter collects violations.
type Reporter struct {
	mu         sync.Mutex
	violations []lint.Violation
	sorted     bool
	threshold  core.Severity
}

// New creates an empty Reporter that keeps violations of every severity.
func New(opts ...Option) *Reporter {
	r := &Reporter{threshold: core.SeverityWarning, sorted: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add buffers violations. It is safe for concurrent use.
func (r *Reporter) Add(violations ...lint.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range violations {
		if v.Severity > r.threshold {
			continue
		}
		r.violations = append(r.violations, v)
		r.sorted = false
	}
}

// Reset discards every buffered violation.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = nil
	r.sorted = true
}

// Violations returns a copy of the buffered violations in scan order.
func (r *Reporter) Violations() []lint.Violation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sorted {
		lint.SortViolations(r.violations)
		r.sorted = true
	}
	out := make([]lint.Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// ExitStatus returns 1 when an error-severity violation was reported, else 0.
func (r *Reporter) ExitStatus() int {
	if r.Summary().Errors > 0 {
		return 1
	}
	return 0
}

// Summary counts the buffered violations.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Files    int `json:"files"` // files with at least one violation
}

// Summary returns violation counts per severity and the number of files involved.
func (r *Reporter) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{Total: len(r.violations)}
	files := make(map[string]struct{})
	for _, v := range r.violations {
		switch v.Severity {
		case core.SeverityError:
			s.Errors++
		case core.SeverityWarning:
			s.Warnings++
		}
		files[v.Pos().File] = struct{}{}
	}
	s.Files = len(files)
	return s
}

// String renders the summary line printed after text output.
func (s Summary) String() string {
	if s.Total == 0 {
		return "no problems found"
	}
	parts := []string{plural(s.Total, "problem")}
	if s.Errors > 0 {
		parts = append(parts, plural(s.Errors, "error"))
	}
	if s.Warnings > 0 {
		parts = append(parts, plural(s.Warnings, "warning"))
	}
	return fmt.Sprintf("%s in %s", strings.Join(parts, ", "), plural(s.Files, "file"))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Write encodes the violations to w.
func (r *Reporter) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r.Violations())
	case FormatText, "":
		return writeText(w, r.Violations(), r.Summary())
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Entry is the JSON form of a violation.
type Entry struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	RuleID     string `json:"ruleId"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Entries converts violations to their JSON form.
func Entries(violations []lint.Violation) []Entry {
	out := make([]Entry, 0, len(violations))
	for _, v := range violations {
		pos := v.Pos()
		out = append(out, Entry{
			File:       pos.File,
			Line:       pos.Line,
			Column:     pos.Column,
			RuleID:     v.RuleID,
			Message:    v.Message,
			Severity:   v.Severity.String(),
			Suggestion: v.Suggestion,
		})
	}
	return out
}

func writeJSON(w io.Writer, violations []lint.Violation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Entries(violations))
}

func writeText(w io.Writer, violations []lint.Violation, summary Summary) error {
	ew := &errWriter{w: w}
	for _, v := range violations {
		ew.printf("%s: %s: %s [%s]", v.Pos(), v.Severity, v.Message, v.RuleID)
		if v.Suggestion != "" {
			ew.printf(" (suggestion: %s)", v.Suggestion)
		}
		ew.printf("\n")
	}
	if len(violations) > 0 {
		ew.printf("\n")
	}
	ew.printf("%s\n", summary)
	return ew.err
}

// errWriter remembers the first write error so formatting code can ignore it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
