// Package core defines the shared language of the namelint system.
//
// This package contains:
//   - Severity levels for rules and violations
//   - Target kinds (what a rule checks: variables, functions, classes, files, selectors)
//   - File kinds (style sheets and scripts)
//   - Source positions
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
