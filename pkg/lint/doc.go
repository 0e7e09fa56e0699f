// Package lint provides the rule registry and evaluator for naming-convention linting.
//
// # Architecture
//
// The package sits between extraction and reporting:
//
//  1. Rules are declared as data (YAML via koanf, or the embedded catalog) and compiled
//     by LoadRegistry into an immutable Registry.
//  2. The extractor (pkg/extract) turns each file into a FileSymbols value.
//  3. Evaluate applies every applicable rule to every symbol and returns a Result:
//     Violations ordered by file, line, column and rule ID, plus the RuleErrors of
//     rules that failed at runtime.
//
// The Registry is never global. It is built once per run and passed explicitly:
//
//	reg, err := lint.LoadRegistry(defs, lint.NewConfig())
//	if err != nil {
//		// *lint.ConfigError: malformed rule definition
//	}
//	result := lint.Evaluate(reg, files)
//
// # Rule Shapes
//
// Each rule carries exactly one Matcher. The matcher variants are:
//
//   - NamePattern: regular expression on the symbol name ("pattern" or "case")
//   - FileLayout: structural checks on where a file lives ("layout")
//   - Predicate: a Starlark boolean expression ("predicate")
//
// # Configuration
//
// Use Config to control which rules are enabled and their severity:
//
//	config := lint.NewConfig()
//	config.Disable("selector-bem")
//	config.SetSeverity("variable-camel-case", core.SeverityWarning)
package lint
