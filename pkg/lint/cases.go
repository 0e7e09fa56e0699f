package lint

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	starctx "github.com/leapstack-labs/namelint/internal/starlark"
)

// CaseStyle is a named identifier casing convention.
type CaseStyle string

// Case styles accepted by the "case" rule option.
const (
	CaseCamel          CaseStyle = "camel"
	CasePascal         CaseStyle = "pascal"
	CaseKebab          CaseStyle = "kebab"
	CaseSnake          CaseStyle = "snake"
	CaseScreamingSnake CaseStyle = "screaming_snake"
	CaseBEM            CaseStyle = "bem"
)

const (
	bemTail = `[a-z0-9]*(?:-[a-z0-9]+)*`
	bemPart = `[a-z0-9]+(?:-[a-z0-9]+)*`
)

var casePatterns = map[CaseStyle]string{
	CaseCamel:          `[_$]?[a-z][a-zA-Z0-9]*`,
	CasePascal:         `[A-Z][a-zA-Z0-9]*`,
	CaseKebab:          `[a-z0-9]+(?:-[a-z0-9]+)*`,
	CaseSnake:          `_?[a-z0-9]+(?:_[a-z0-9]+)*`,
	CaseScreamingSnake: `[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)*`,
	CaseBEM:            `[a-z]` + bemTail + `(?:__` + bemPart + `)?(?:--` + bemPart + `)?`,
}

var caseLabels = map[CaseStyle]string{
	CaseCamel:          "camelCase",
	CasePascal:         "PascalCase",
	CaseKebab:          "kebab-case",
	CaseSnake:          "snake_case",
	CaseScreamingSnake: "SCREAMING_SNAKE_CASE",
	CaseBEM:            "BEM (block__element--modifier)",
}

// ParseCaseStyle converts a config value such as "camel" or "screaming-snake".
func ParseCaseStyle(s string) (CaseStyle, bool) {
	c := CaseStyle(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	_, ok := casePatterns[c]
	return c, ok
}

// Pattern returns the unanchored regular expression for the style.
func (c CaseStyle) Pattern() string { return casePatterns[c] }

// Label returns the human-readable style name used in messages.
func (c CaseStyle) Label() string {
	if l, ok := caseLabels[c]; ok {
		return l
	}
	return string(c)
}

// Convert rewrites name in the given style. It returns "" when name has no words.
func Convert(name string, style CaseStyle) string {
	if style == CaseBEM {
		return convertBEM(name)
	}

	words := starctx.SplitWords(name)
	if len(words) == 0 {
		return ""
	}

	lower := cases.Lower(language.Und)
	for i, w := range words {
		words[i] = lower.String(w)
	}

	switch style {
	case CaseCamel, CasePascal:
		title := cases.Title(language.Und)
		for i, w := range words {
			if i == 0 && style == CaseCamel {
				continue
			}
			words[i] = title.String(w)
		}
		return strings.Join(words, "")
	case CaseKebab:
		return strings.Join(words, "-")
	case CaseSnake:
		return strings.Join(words, "_")
	case CaseScreamingSnake:
		return cases.Upper(language.Und).String(strings.Join(words, "_"))
	default:
		return ""
	}
}

// convertBEM keeps the block, element and modifier boundaries and kebab-cases each part.
func convertBEM(name string) string {
	block, modifier, hasMod := strings.Cut(name, "--")
	block, element, hasElem := strings.Cut(block, "__")

	out := Convert(block, CaseKebab)
	if out == "" {
		return ""
	}
	if hasElem {
		out += "__" + Convert(element, CaseKebab)
	}
	if hasMod {
		out += "--" + Convert(modifier, CaseKebab)
	}
	return out
}
