package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a lint violation.
type Severity int

// Severity levels for violations.
const (
	// SeverityError fails the run (exit status 1).
	SeverityError Severity = iota
	// SeverityWarning is reported but does not fail the run.
	SeverityWarning
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	default:
		return SeverityWarning, false
	}
}

// MarshalJSON encodes the severity as its string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string name.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	sev, ok := ParseSeverity(str)
	if !ok {
		return fmt.Errorf("unknown severity %q", str)
	}
	*s = sev
	return nil
}

// MarshalYAML encodes the severity as its string name.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// =============================================================================
// RuleInfo
// =============================================================================

// RuleInfo provides metadata about a lint rule for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
type RuleInfo struct {
	ID        string     `json:"id" yaml:"id"`
	Target    TargetKind `json:"target" yaml:"target"`
	Shape     string     `json:"shape" yaml:"shape"` // "pattern", "layout" or "predicate"
	Severity  Severity   `json:"severity" yaml:"severity"`
	Matcher   string     `json:"matcher" yaml:"matcher"` // human-readable matcher summary
	Rationale string     `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Include   []string   `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude   []string   `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Allow     []string   `json:"allow,omitempty" yaml:"allow,omitempty"`
}
