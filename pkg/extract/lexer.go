package extract

import (
	"errors"
	"strings"
	"unicode"
)

type tokKind int

const (
	tkIdent tokKind = iota
	tkPunct
	tkString
	tkTemplate
	tkNumber
	tkRegex
	tkPrivate
	tkJSX // a whole JSX element; inner expressions are lexed as ordinary tokens before it
)

type token struct {
	kind  tokKind
	text  string
	line  int
	col   int
	nl    bool // a line break precedes the token
	match int  // index of the matching bracket, or -1
}

func (t token) is(kind tokKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) punct(text string) bool { return t.is(tkPunct, text) }

// puncts is ordered longest first.
var puncts = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "/",
	"%", "&", "|", "^", "!", "~", "?", ":", "=", ".", "@", "#",
}

// regexAfterKeyword lists keywords after which "/" starts a regular expression.
var regexAfterKeyword = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true, "extends": true,
}

var (
	errUnterminatedString   = errors.New("unterminated string literal")
	errUnterminatedTemplate = errors.New("unterminated template literal")
	errUnterminatedComment  = errors.New("unterminated comment")
	errUnterminatedRegex    = errors.New("unterminated regular expression")
	errUnexpectedEOF        = errors.New("unexpected end of input")
)

// jsLexer splits JavaScript and TypeScript into tokens. Comments and
// whitespace are dropped; JSX elements collapse into one tkJSX token.
type jsLexer struct {
	file string
	src  []rune
	pos  int
	line int
	col  int
	jsx  bool
	nl   bool
	toks []token
}

func lexScript(file, text string, jsx bool) ([]token, error) {
	l := &jsLexer{file: file, src: []rune(text), line: 1, col: 1, jsx: jsx}
	if strings.HasPrefix(text, "#!") {
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.advance()
		}
	}
	for {
		if err := l.skipSpace(); err != nil {
			return nil, err
		}
		if l.eof() {
			break
		}
		if err := l.lexToken(); err != nil {
			return nil, err
		}
	}
	matchBrackets(l.toks)
	return l.toks, nil
}

func (l *jsLexer) eof() bool { return l.pos >= len(l.src) }

func (l *jsLexer) peek(k int) rune {
	if l.pos+k < len(l.src) {
		return l.src[l.pos+k]
	}
	return 0
}

func (l *jsLexer) advance() rune {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *jsLexer) errorf(line, col int, err error) error {
	return &ParseError{File: l.file, Line: line, Column: col, Err: err}
}

func (l *jsLexer) emit(kind tokKind, text string, line, col int) {
	l.toks = append(l.toks, token{kind: kind, text: text, line: line, col: col, nl: l.nl, match: -1})
	l.nl = false
}

func (l *jsLexer) skipSpace() error {
	for !l.eof() {
		c := l.peek(0)
		switch {
		case c == '\n':
			l.nl = true
			l.advance()
		case unicode.IsSpace(c) || c == '\uFEFF':
			l.advance()
		case c == '/' && l.peek(1) == '/':
			for !l.eof() && l.peek(0) != '\n' {
				l.advance()
			}
		case c == '/' && l.peek(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				if l.eof() {
					return l.errorf(line, col, errUnterminatedComment)
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				if l.peek(0) == '\n' {
					l.nl = true
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *jsLexer) lexToken() error {
	line, col := l.line, l.col
	c := l.peek(0)

	switch {
	case isIdentStart(c):
		l.emit(tkIdent, l.readIdent(), line, col)
	case c == '#' && isIdentStart(l.peek(1)):
		l.advance()
		l.emit(tkPrivate, "#"+l.readIdent(), line, col)
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.emit(tkNumber, l.readNumber(), line, col)
	case c == '"' || c == '\'':
		return l.lexString(line, col)
	case c == '`':
		return l.lexTemplate(line, col)
	case c == '/' && l.regexAllowed():
		return l.lexRegex(line, col)
	case c == '<' && l.jsx && l.regexAllowed() && (isIdentStart(l.peek(1)) || l.peek(1) == '>'):
		ok, err := l.tryJSX(line, col)
		if err != nil {
			return err
		}
		if !ok {
			l.advance()
			l.emit(tkPunct, "<", line, col)
		}
	default:
		for _, p := range puncts {
			if l.hasPrefix(p) {
				for range p {
					l.advance()
				}
				l.emit(tkPunct, p, line, col)
				return nil
			}
		}
		l.advance()
		l.emit(tkPunct, string(c), line, col)
	}
	return nil
}

func (l *jsLexer) hasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		if l.peek(i) != r {
			return false
		}
		i++
	}
	return true
}

func (l *jsLexer) readIdent() string {
	start := l.pos
	for !l.eof() {
		c := l.peek(0)
		if c == '\\' && l.peek(1) == 'u' {
			l.advance()
			l.advance()
			continue
		}
		if !isIdentPart(c) {
			break
		}
		l.advance()
	}
	return string(l.src[start:l.pos])
}

func (l *jsLexer) readNumber() string {
	start := l.pos
	l.advance()
	for !l.eof() {
		c := l.peek(0)
		prev := l.src[l.pos-1]
		switch {
		case isIdentPart(c) || c == '.':
		case (c == '+' || c == '-') && (prev == 'e' || prev == 'E') && !isHexPrefixed(l.src[start:l.pos]):
		default:
			return string(l.src[start:l.pos])
		}
		l.advance()
	}
	return string(l.src[start:l.pos])
}

func isHexPrefixed(r []rune) bool {
	return len(r) > 1 && r[0] == '0' && (r[1] == 'x' || r[1] == 'X')
}

func (l *jsLexer) lexString(line, col int) error {
	quote := l.advance()
	start := l.pos
	for {
		if l.eof() || l.peek(0) == '\n' {
			return l.errorf(line, col, errUnterminatedString)
		}
		c := l.advance()
		if c == '\\' {
			if !l.eof() {
				l.advance()
			}
			continue
		}
		if c == quote {
			l.emit(tkString, string(l.src[start:l.pos-1]), line, col)
			return nil
		}
	}
}

// lexTemplate lexes a template literal. Tokens of "${...}" substitutions are
// emitted as they are read; the template token itself follows them.
func (l *jsLexer) lexTemplate(line, col int) error {
	l.advance()
	for {
		if l.eof() {
			return l.errorf(line, col, errUnterminatedTemplate)
		}
		c := l.advance()
		switch {
		case c == '\\':
			if !l.eof() {
				l.advance()
			}
		case c == '`':
			l.emit(tkTemplate, "`", line, col)
			return nil
		case c == '$' && l.peek(0) == '{':
			l.advance()
			if err := l.lexUntilBrace(line, col, errUnterminatedTemplate); err != nil {
				return err
			}
		}
	}
}

// lexUntilBrace lexes ordinary tokens up to and including the "}" that closes
// an already consumed "{". The closing brace is not emitted.
func (l *jsLexer) lexUntilBrace(line, col int, eofErr error) error {
	depth := 0
	for {
		if err := l.skipSpace(); err != nil {
			return err
		}
		if l.eof() {
			return l.errorf(line, col, eofErr)
		}
		if l.peek(0) == '}' && depth == 0 {
			l.advance()
			return nil
		}
		if err := l.lexToken(); err != nil {
			return err
		}
		switch last := l.toks[len(l.toks)-1]; {
		case last.punct("{"):
			depth++
		case last.punct("}"):
			depth--
		}
	}
}

func (l *jsLexer) lexRegex(line, col int) error {
	start := l.pos
	l.advance()
	inClass := false
	for {
		if l.eof() || l.peek(0) == '\n' {
			return l.errorf(line, col, errUnterminatedRegex)
		}
		c := l.advance()
		switch {
		case c == '\\':
			if !l.eof() && l.peek(0) != '\n' {
				l.advance()
			}
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			for !l.eof() && isIdentPart(l.peek(0)) {
				l.advance()
			}
			l.emit(tkRegex, string(l.src[start:l.pos]), line, col)
			return nil
		}
	}
}

// regexAllowed reports whether the next token starts an expression, which
// decides between division and a regular expression (or a JSX element).
func (l *jsLexer) regexAllowed() bool {
	if len(l.toks) == 0 {
		return true
	}
	last := l.toks[len(l.toks)-1]
	switch last.kind {
	case tkIdent:
		return regexAfterKeyword[last.text]
	case tkPunct:
		switch last.text {
		case ")", "]", "++", "--":
			return false
		}
		return true
	default:
		return false
	}
}

// =============================================================================
// JSX
// =============================================================================

type lexState struct {
	pos, line, col int
	nl             bool
	ntoks          int
}

func (l *jsLexer) save() lexState {
	return lexState{pos: l.pos, line: l.line, col: l.col, nl: l.nl, ntoks: len(l.toks)}
}

func (l *jsLexer) restore(s lexState) {
	l.pos, l.line, l.col, l.nl = s.pos, s.line, s.col, s.nl
	l.toks = l.toks[:s.ntoks]
}

// errNotJSX aborts a JSX attempt; the "<" is then lexed as an operator
// (TypeScript generics such as "<T,>(x: T) => x").
var errNotJSX = errors.New("not jsx")

func (l *jsLexer) tryJSX(line, col int) (bool, error) {
	state := l.save()
	nl := l.nl
	if err := l.jsxElement(); err != nil {
		if errors.Is(err, errNotJSX) {
			l.restore(state)
			return false, nil
		}
		return false, err
	}
	l.toks = append(l.toks, token{kind: tkJSX, text: "<>", line: line, col: col, nl: nl, match: -1})
	l.nl = false
	return true, nil
}

func (l *jsLexer) jsxElement() error {
	l.advance() // <
	if l.peek(0) == '>' {
		l.advance()
		return l.jsxChildren()
	}

	if name := l.jsxName(); name == "" {
		return errNotJSX
	}
	for {
		for !l.eof() && unicode.IsSpace(l.peek(0)) {
			l.advance()
		}
		switch c := l.peek(0); {
		case l.eof():
			return errNotJSX
		case c == '/' && l.peek(1) == '>':
			l.advance()
			l.advance()
			return nil
		case c == '>':
			l.advance()
			return l.jsxChildren()
		case c == '{':
			line, col := l.line, l.col
			l.advance()
			if err := l.lexUntilBrace(line, col, errUnexpectedEOF); err != nil {
				return err
			}
		case isIdentStart(c):
			l.jsxName()
			for !l.eof() && unicode.IsSpace(l.peek(0)) {
				l.advance()
			}
			if l.peek(0) == '=' {
				l.advance()
				for !l.eof() && unicode.IsSpace(l.peek(0)) {
					l.advance()
				}
				if err := l.jsxAttrValue(); err != nil {
					return err
				}
			}
		default:
			return errNotJSX
		}
	}
}

func (l *jsLexer) jsxAttrValue() error {
	switch c := l.peek(0); {
	case c == '"' || c == '\'':
		line, col := l.line, l.col
		l.advance()
		for !l.eof() && l.peek(0) != c {
			l.advance()
		}
		if l.eof() {
			return l.errorf(line, col, errUnterminatedString)
		}
		l.advance()
		return nil
	case c == '{':
		line, col := l.line, l.col
		l.advance()
		return l.lexUntilBrace(line, col, errUnexpectedEOF)
	case c == '<':
		return l.jsxElement()
	default:
		return errNotJSX
	}
}

func (l *jsLexer) jsxChildren() error {
	for {
		if l.eof() {
			return errNotJSX
		}
		switch c := l.peek(0); {
		case c == '<' && l.peek(1) == '/':
			for !l.eof() && l.peek(0) != '>' {
				l.advance()
			}
			if l.eof() {
				return errNotJSX
			}
			l.advance()
			return nil
		case c == '<':
			if err := l.jsxElement(); err != nil {
				return err
			}
		case c == '{':
			line, col := l.line, l.col
			l.advance()
			if err := l.lexUntilBrace(line, col, errUnexpectedEOF); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}
}

func (l *jsLexer) jsxName() string {
	start := l.pos
	for !l.eof() {
		c := l.peek(0)
		if !isIdentPart(c) && c != '.' && c != ':' && c != '-' {
			break
		}
		l.advance()
	}
	return string(l.src[start:l.pos])
}

// =============================================================================
// Helpers
// =============================================================================

func isIdentStart(c rune) bool {
	return c == '$' || c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || unicode.IsDigit(c) || c == '\u200C' || c == '\u200D'
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

// matchBrackets links every bracket token to its partner. Unbalanced
// brackets keep match == -1.
func matchBrackets(toks []token) {
	pairs := map[string]string{")": "(", "]": "[", "}": "{"}
	var stack []int
	for i, t := range toks {
		if t.kind != tkPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 || toks[stack[len(stack)-1]].text != pairs[t.text] {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			toks[open].match = i
			toks[i].match = open
		}
	}
}
