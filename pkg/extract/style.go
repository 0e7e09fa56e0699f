package extract

import (
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/lint"
)

type styleDialect int

const (
	dialectCSS styleDialect = iota
	dialectSCSS
	dialectSass
	dialectLess
)

func styleDialectOf(rel string) styleDialect {
	switch strings.ToLower(path.Ext(rel)) {
	case ".scss":
		return dialectSCSS
	case ".sass":
		return dialectSass
	case ".less":
		return dialectLess
	default:
		return dialectCSS
	}
}

// dynamicMark replaces every rune of a preprocessor interpolation. The CSS
// scanner emits it as a lone char token, which breaks the adjacent identifier
// and lets the parser recognise the class as dynamic.
const dynamicMark = '\x01'

func extractStyle(file, text string, d styleDialect, fileScope *lint.Scope) ([]lint.Symbol, error) {
	if d != dialectCSS {
		text = blankPreprocessor(text, d)
	}
	if d == dialectSass {
		text = sassToBraces(text)
	}

	toks, err := tokenizeCSS(file, text)
	if err != nil {
		return nil, err
	}
	p := &styleParser{file: file}
	if err := p.parse(toks, fileScope); err != nil {
		return nil, err
	}
	return p.symbols, nil
}

func tokenizeCSS(file, text string) ([]*scanner.Token, error) {
	s := scanner.New(text)
	var toks []*scanner.Token
	for {
		t := s.Next()
		switch t.Type {
		case scanner.TokenEOF:
			return toks, nil
		case scanner.TokenError:
			return nil, &ParseError{File: file, Line: t.Line, Column: t.Column, Err: errors.New(t.Value)}
		case scanner.TokenComment, scanner.TokenBOM, scanner.TokenCDO, scanner.TokenCDC:
			continue
		}
		toks = append(toks, t)
	}
}

// =============================================================================
// Block structure
// =============================================================================

type styleBlock struct {
	scope    *lint.Scope
	open     *scanner.Token
	subjects []string // classes "&" resolves to; "" marks an unresolvable parent
}

type styleParser struct {
	file    string
	symbols []lint.Symbol
}

func (p *styleParser) parse(toks []*scanner.Token, fileScope *lint.Scope) error {
	stack := []*styleBlock{{scope: fileScope}}
	var prelude []*scanner.Token

	for _, t := range toks {
		if t.Type == scanner.TokenChar {
			switch t.Value {
			case "{":
				stack = append(stack, p.openBlock(prelude, stack[len(stack)-1], t))
				prelude = nil
				continue
			case "}":
				if len(stack) == 1 {
					return &ParseError{File: p.file, Line: t.Line, Column: t.Column, Err: errors.New(`unexpected "}"`)}
				}
				stack = stack[:len(stack)-1]
				prelude = nil
				continue
			case ";":
				prelude = nil
				continue
			}
		}
		prelude = append(prelude, t)
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1].open
		return &ParseError{File: p.file, Line: open.Line, Column: open.Column, Err: errors.New("unclosed block")}
	}
	return nil
}

func (p *styleParser) openBlock(prelude []*scanner.Token, parent *styleBlock, open *scanner.Token) *styleBlock {
	prelude = trimSpace(prelude)
	if len(prelude) == 0 {
		return &styleBlock{scope: &lint.Scope{Kind: lint.ScopeBlock, Parent: parent.scope}, open: open, subjects: parent.subjects}
	}

	if first := prelude[0]; first.Type == scanner.TokenAtKeyword {
		name := strings.TrimPrefix(first.Value, "@")
		scope := &lint.Scope{Kind: lint.ScopeAtRule, Name: name, Parent: parent.scope}
		if name == "at-root" && len(prelude) > 1 {
			subjects := p.selectors(prelude[1:], nil, parent.scope)
			return &styleBlock{scope: scope, open: open, subjects: subjects}
		}
		return &styleBlock{scope: scope, open: open, subjects: parent.subjects}
	}

	subjects := p.selectors(prelude, parent.subjects, parent.scope)
	return &styleBlock{
		scope:    &lint.Scope{Kind: lint.ScopeRule, Name: compactSelector(prelude), Parent: parent.scope},
		open:     open,
		subjects: subjects,
	}
}

// =============================================================================
// Selectors
// =============================================================================

// selectors emits a symbol for every class in a selector list and returns the
// subject classes of its complex selectors, which nested "&" references resolve to.
func (p *styleParser) selectors(toks []*scanner.Token, parents []string, scope *lint.Scope) []string {
	var subjects []string
	for _, complex := range splitSelectorList(toks) {
		for _, s := range p.complexSelector(trimSpace(complex), parents, scope) {
			if !slices.Contains(subjects, s) {
				subjects = append(subjects, s)
			}
		}
	}
	return subjects
}

func (p *styleParser) complexSelector(toks []*scanner.Token, parents []string, scope *lint.Scope) []string {
	var last []string // classes of the current compound selector
	depth := 0

	for k := 0; k < len(toks); k++ {
		t := toks[k]
		switch {
		case t.Type == scanner.TokenFunction:
			depth++

		case t.Type == scanner.TokenS:
			if depth == 0 {
				last = nil
			}

		case t.Type == scanner.TokenChar:
			switch t.Value {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			case ">", "+", "~":
				if depth == 0 {
					last = nil
				}
			case "[":
				for k < len(toks) && !(toks[k].Type == scanner.TokenChar && toks[k].Value == "]") {
					k++
				}
			case ".":
				if k+1 >= len(toks) || toks[k+1].Type != scanner.TokenIdent {
					continue
				}
				ident := toks[k+1]
				k++
				if isDynamic(toks, k+1) {
					if depth == 0 {
						last = []string{""}
					}
					continue
				}
				name := unescapeCSS(ident.Value)
				p.emit(name, ident, scope)
				if depth == 0 {
					last = []string{name}
				}
			case "&":
				suffix, end := ampersandSuffix(toks, k+1)
				dynamic := isDynamic(toks, end)
				k = end - 1
				if suffix == "" {
					if depth == 0 {
						last = parents
					}
					continue
				}
				var resolved []string
				for _, parent := range parents {
					if parent == "" || dynamic {
						resolved = append(resolved, "")
						continue
					}
					name := parent + suffix
					p.emit(name, t, scope)
					resolved = append(resolved, name)
				}
				if depth == 0 {
					last = resolved
				}
			}
		}
	}
	return last
}

// ampersandSuffix joins the identifier fragments glued to a parent reference:
// "&__title" and "&--active" (scanned as "-" followed by "-active").
func ampersandSuffix(toks []*scanner.Token, k int) (string, int) {
	var b strings.Builder
	for ; k < len(toks); k++ {
		t := toks[k]
		switch {
		case t.Type == scanner.TokenIdent, t.Type == scanner.TokenNumber, t.Type == scanner.TokenDimension:
			b.WriteString(t.Value)
		case t.Type == scanner.TokenChar && t.Value == "-":
			b.WriteString(t.Value)
		default:
			return b.String(), k
		}
	}
	return b.String(), k
}

func isDynamic(toks []*scanner.Token, k int) bool {
	return k < len(toks) && toks[k].Type == scanner.TokenChar && toks[k].Value == string(dynamicMark)
}

func (p *styleParser) emit(name string, at *scanner.Token, scope *lint.Scope) {
	p.symbols = append(p.symbols, lint.Symbol{
		Name:  name,
		Kind:  core.TargetSelector,
		Pos:   core.Position{File: p.file, Line: at.Line, Column: at.Column},
		Scope: scope,
	})
}

func splitSelectorList(toks []*scanner.Token) [][]*scanner.Token {
	var out [][]*scanner.Token
	depth, start := 0, 0
	for k, t := range toks {
		switch {
		case t.Type == scanner.TokenFunction, t.Type == scanner.TokenChar && t.Value == "(":
			depth++
		case t.Type == scanner.TokenChar && t.Value == ")" && depth > 0:
			depth--
		case t.Type == scanner.TokenChar && t.Value == "," && depth == 0:
			out = append(out, toks[start:k])
			start = k + 1
		}
	}
	return append(out, toks[start:])
}

func trimSpace(toks []*scanner.Token) []*scanner.Token {
	for len(toks) > 0 && toks[0].Type == scanner.TokenS {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].Type == scanner.TokenS {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func compactSelector(toks []*scanner.Token) string {
	var b strings.Builder
	for _, t := range toks {
		if t.Type == scanner.TokenS {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(t.Value)
	}
	s := strings.Join(strings.Fields(strings.ReplaceAll(b.String(), string(dynamicMark), "")), " ")
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return s
}

// unescapeCSS resolves backslash escapes in an identifier: "sm\:flex" -> "sm:flex".
func unescapeCSS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			b.WriteRune(runes[i])
			continue
		}
		j := i + 1
		var code rune
		n := 0
		for j < len(runes) && n < 6 && isHexDigit(runes[j]) {
			code = code*16 + hexValue(runes[j])
			j++
			n++
		}
		if n == 0 {
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		b.WriteRune(code)
		if j < len(runes) && runes[j] == ' ' {
			j++
		}
		i = j - 1
	}
	return b.String()
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(r rune) rune {
	switch {
	case r >= 'a':
		return r - 'a' + 10
	case r >= 'A':
		return r - 'A' + 10
	default:
		return r - '0'
	}
}
