package extract

import (
	"path"
	"strings"

	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/lint"
)

type scriptDialect struct {
	ts  bool
	jsx bool
}

func scriptDialectOf(rel string) scriptDialect {
	switch strings.ToLower(path.Ext(rel)) {
	case ".ts", ".mts", ".cts":
		return scriptDialect{ts: true}
	case ".tsx":
		return scriptDialect{ts: true, jsx: true}
	default:
		return scriptDialect{jsx: true}
	}
}

// controlKeywords open blocks, not functions, when followed by "(...) {".
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true, "with": true,
}

// continuationKeywords continue an expression across a line break.
var continuationKeywords = map[string]bool{
	"instanceof": true, "in": true, "of": true, "as": true, "satisfies": true,
}

type declState int

const (
	expectBinding declState = iota
	afterBinding            // type annotation zone before "="
	inInitializer
)

// declaration tracks a const/let/var statement across its declarators.
type declaration struct {
	depth int
	state declState
	angle int
}

type bracket struct {
	scoped bool // the bracket opened a lint.Scope
}

type scriptParser struct {
	file    string
	dialect scriptDialect
	toks    []token
	symbols []lint.Symbol

	scopes   []*lint.Scope
	brackets []bracket
	decls    []*declaration

	pendingName  string // name of the function or class a declarator is initialised with
	pendingClass int    // bracket depth of a class header awaiting its body, or -1
	className    string
}

func extractScript(file, text string, d scriptDialect, fileScope *lint.Scope) ([]lint.Symbol, error) {
	toks, err := lexScript(file, text, d.jsx)
	if err != nil {
		return nil, err
	}
	p := &scriptParser{
		file:         file,
		dialect:      d,
		toks:         toks,
		scopes:       []*lint.Scope{fileScope},
		pendingClass: -1,
	}
	p.run()
	return p.symbols, nil
}

func (p *scriptParser) depth() int { return len(p.brackets) }

func (p *scriptParser) scope() *lint.Scope { return p.scopes[len(p.scopes)-1] }

func (p *scriptParser) tok(i int) token {
	if i >= 0 && i < len(p.toks) {
		return p.toks[i]
	}
	return token{kind: tkPunct, match: -1}
}

func (p *scriptParser) emit(t token, kind core.TargetKind) {
	p.symbols = append(p.symbols, lint.Symbol{
		Name:  t.text,
		Kind:  kind,
		Pos:   core.Position{File: p.file, Line: t.line, Column: t.col},
		Scope: p.scope(),
	})
}

func (p *scriptParser) run() {
	for i := 0; i < len(p.toks); i++ {
		if next, handled := p.declarator(i); handled {
			i = next
			continue
		}
		p.general(i)
	}
}

// declarator advances the innermost const/let/var statement when the token
// sits at its bracket depth. It returns the last consumed index and whether
// the token was consumed.
func (p *scriptParser) declarator(i int) (int, bool) {
	if len(p.decls) == 0 {
		return i, false
	}
	d := p.decls[len(p.decls)-1]
	if d.depth != p.depth() {
		return i, false
	}
	t := p.toks[i]

	switch d.state {
	case expectBinding:
		switch {
		case t.kind == tkIdent:
			p.emit(t, p.classifyInitializer(i))
			d.state = afterBinding
			return i, true
		case (t.punct("{") || t.punct("[")) && t.match > i:
			for _, b := range p.patternBindings(i) {
				p.emit(b, core.TargetVariable)
			}
			d.state = afterBinding
			return t.match, true
		}
		p.popDecl()
		return i, false

	case afterBinding:
		switch {
		case t.punct("=") && d.angle == 0:
			d.state = inInitializer
		case t.punct(",") && d.angle == 0:
			d.state = expectBinding
		case t.punct(";"):
			p.popDecl()
		case t.kind == tkIdent && (t.text == "of" || t.text == "in") && d.angle == 0:
			p.popDecl()
		case t.kind == tkIdent && t.nl && d.angle == 0:
			p.popDecl()
			return i, false
		case t.punct("<"):
			d.angle++
		case t.punct(">"), t.punct(">>"), t.punct(">>>"):
			d.angle = max(0, d.angle-len(t.text))
		case (t.punct("{") || t.punct("(") || t.punct("[")) && t.match > i:
			return t.match, true
		}
		return i, true

	default: // inInitializer
		switch {
		case t.punct(","):
			d.state = expectBinding
			return i, true
		case t.punct(";"):
			p.popDecl()
			return i, true
		case t.kind == tkIdent && t.nl && !continuationKeywords[t.text]:
			p.popDecl()
		}
		return i, false
	}
}

func (p *scriptParser) popDecl() {
	p.decls = p.decls[:len(p.decls)-1]
}

// general handles brackets, scopes and declaration keywords.
func (p *scriptParser) general(i int) {
	t := p.toks[i]

	if t.kind == tkPunct {
		switch t.text {
		case "{":
			p.openBrace(i)
		case "(", "[":
			p.brackets = append(p.brackets, bracket{})
		case ")", "]", "}":
			p.closeBracket()
		case ";":
			if p.pendingClass == p.depth() {
				p.pendingClass = -1
			}
		}
		return
	}

	if t.kind != tkIdent {
		return
	}
	if prev := p.tok(i - 1); prev.punct(".") || prev.punct("?.") {
		return
	}

	next := p.tok(i + 1)
	switch t.text {
	case "const", "let", "var":
		if p.dialect.ts && t.text == "const" && next.is(tkIdent, "enum") {
			return
		}
		if next.kind == tkIdent || next.punct("{") || next.punct("[") {
			p.decls = append(p.decls, &declaration{depth: p.depth()})
			p.pendingName = ""
		}
	case "function":
		j := i + 1
		if p.tok(j).punct("*") {
			j++
		}
		if name := p.tok(j); name.kind == tkIdent {
			p.emit(name, core.TargetFunction)
		}
	case "class":
		if next.kind == tkIdent && next.text != "extends" && next.text != "implements" {
			p.emit(next, core.TargetClass)
			p.className = next.text
		} else {
			p.className = p.pendingName
		}
		p.pendingName = ""
		p.pendingClass = p.depth()
	case "interface":
		if p.dialect.ts && next.kind == tkIdent {
			if after := p.tok(i + 2); after.punct("{") || after.punct("<") || after.is(tkIdent, "extends") {
				p.emit(next, core.TargetClass)
			}
		}
	case "type":
		if p.dialect.ts && next.kind == tkIdent {
			if after := p.tok(i + 2); after.punct("=") || after.punct("<") {
				p.emit(next, core.TargetClass)
			}
		}
	case "enum":
		if p.dialect.ts && next.kind == tkIdent && p.tok(i+2).punct("{") {
			p.emit(next, core.TargetClass)
		}
	}
}

func (p *scriptParser) openBrace(i int) {
	kind, name := p.braceScope(i)
	if kind == "" {
		p.brackets = append(p.brackets, bracket{})
		return
	}
	p.scopes = append(p.scopes, &lint.Scope{Kind: kind, Name: name, Parent: p.scope()})
	p.brackets = append(p.brackets, bracket{scoped: true})
}

// braceScope decides what a "{" opens. Object literals and type literals are
// reported as blocks; only the scope chain depends on it.
func (p *scriptParser) braceScope(i int) (lint.ScopeKind, string) {
	if p.pendingClass == p.depth() {
		p.pendingClass = -1
		return lint.ScopeClass, p.className
	}

	prev := p.tok(i - 1)
	switch {
	case prev.punct("=>"):
		name := p.pendingName
		p.pendingName = ""
		return lint.ScopeFunction, name
	case prev.punct(")") && prev.match >= 0:
		before := p.tok(prev.match - 1)
		if before.kind != tkIdent || controlKeywords[before.text] {
			return lint.ScopeBlock, ""
		}
		if before.text == "function" {
			name := p.pendingName
			p.pendingName = ""
			return lint.ScopeFunction, name
		}
		return lint.ScopeFunction, before.text
	}
	return lint.ScopeBlock, ""
}

func (p *scriptParser) closeBracket() {
	if len(p.brackets) == 0 {
		return
	}
	b := p.brackets[len(p.brackets)-1]
	p.brackets = p.brackets[:len(p.brackets)-1]
	if b.scoped && len(p.scopes) > 1 {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}
	for len(p.decls) > 0 && p.decls[len(p.decls)-1].depth > p.depth() {
		p.popDecl()
	}
	if p.pendingClass > p.depth() {
		p.pendingClass = -1
	}
}

// classifyInitializer looks past the binding at i (and any type annotation)
// to decide whether it is initialised with a function or a class.
func (p *scriptParser) classifyInitializer(i int) core.TargetKind {
	j := i + 1
	if p.tok(j).punct(":") {
		j = p.skipType(j + 1)
	}
	if !p.tok(j).punct("=") {
		return core.TargetVariable
	}

	kind := p.classifyExpr(j + 1)
	if kind != core.TargetVariable {
		p.pendingName = p.tok(i).text
	}
	return kind
}

func (p *scriptParser) classifyExpr(k int) core.TargetKind {
	t := p.tok(k)
	if t.is(tkIdent, "async") {
		if n := p.tok(k + 1); n.is(tkIdent, "function") || n.punct("(") || (n.kind == tkIdent && p.tok(k+2).punct("=>")) {
			k++
			t = p.tok(k)
		}
	}

	switch {
	case t.is(tkIdent, "function"):
		return core.TargetFunction
	case t.is(tkIdent, "class"):
		return core.TargetClass
	case t.punct("(") && t.match > k:
		if after := p.tok(t.match + 1); after.punct("=>") || after.punct(":") {
			return core.TargetFunction
		}
	case t.punct("<") && p.dialect.ts:
		return core.TargetFunction
	case t.kind == tkIdent:
		if p.tok(k + 1).punct("=>") {
			return core.TargetFunction
		}
		// Wrapped functions: memo(() => ...), React.forwardRef(function ...), useCallback(...)
		for k+2 < len(p.toks) && p.tok(k+1).punct(".") && p.tok(k+2).kind == tkIdent {
			k += 2
		}
		if call := p.tok(k + 1); call.punct("(") && call.match > k+2 {
			if p.classifyExpr(k+2) == core.TargetFunction {
				return core.TargetFunction
			}
		}
	}
	return core.TargetVariable
}

// skipType returns the index of the first token after a type annotation
// starting at j: the "=", ",", ";" or line-leading identifier that ends it.
func (p *scriptParser) skipType(j int) int {
	angle := 0
	for ; j < len(p.toks); j++ {
		t := p.toks[j]
		switch {
		case (t.punct("{") || t.punct("(") || t.punct("[")) && t.match > j:
			j = t.match
		case t.punct("<"):
			angle++
		case t.punct(">"), t.punct(">>"), t.punct(">>>"):
			angle = max(0, angle-len(t.text))
		case angle == 0 && (t.punct("=") || t.punct(",") || t.punct(";") || t.punct(")")):
			return j
		}
	}
	return j
}

// patternBindings returns the identifiers bound by the destructuring pattern
// whose opening bracket is at open.
func (p *scriptParser) patternBindings(open int) []token {
	closeIdx := p.toks[open].match
	isObject := p.toks[open].punct("{")

	var out []token
	for _, entry := range p.splitEntries(open+1, closeIdx) {
		a, b := entry[0], entry[1]
		if a >= b {
			continue // array hole
		}
		if p.toks[a].punct("...") {
			a++
		}
		target := a
		if isObject {
			if colon := p.topLevelColon(a, b); colon >= 0 {
				target = colon + 1
			}
		}
		switch t := p.tok(target); {
		case (t.punct("{") || t.punct("[")) && t.match > target:
			out = append(out, p.patternBindings(target)...)
		case t.kind == tkIdent:
			out = append(out, t)
		}
	}
	return out
}

// splitEntries splits [from, to) at top-level commas.
func (p *scriptParser) splitEntries(from, to int) [][2]int {
	var out [][2]int
	start := from
	for k := from; k < to; k++ {
		t := p.toks[k]
		switch {
		case (t.punct("{") || t.punct("(") || t.punct("[")) && t.match > k:
			k = t.match
		case t.punct(","):
			out = append(out, [2]int{start, k})
			start = k + 1
		}
	}
	return append(out, [2]int{start, to})
}

// topLevelColon finds the "key:" separator of an object pattern property,
// ignoring anything after a default value's "=".
func (p *scriptParser) topLevelColon(from, to int) int {
	for k := from; k < to; k++ {
		t := p.toks[k]
		switch {
		case (t.punct("{") || t.punct("(")) && t.match > k:
			k = t.match
		case t.punct("["):
			if t.match > k {
				k = t.match // computed key
			}
		case t.punct("="):
			return -1
		case t.punct(":"):
			return k
		}
	}
	return -1
}
