// Package extract turns source files into the named symbols that rules check.
//
// Style sheets (.css, .scss, .sass, .less) yield class selectors; scripts
// (.js, .jsx, .ts, .tsx and friends) yield variable, function and class
// declarations. Every file also yields one file symbol for layout rules.
// Extraction is lexical: it never builds a full syntax tree.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/leapstack-labs/namelint/pkg/core"
	"github.com/leapstack-labs/namelint/pkg/lint"
	"github.com/leapstack-labs/namelint/pkg/scan"
)

// ErrInvalidUTF8 is wrapped by ParseError for content that is not text.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// ParseError reports a file that could not be extracted. It is recoverable:
// the caller logs it and skips the file.
type ParseError struct {
	File   string
	Line   int // 0 when the error has no position
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d:%d: %v", e.File, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options configures an Extractor.
type Options struct {
	// SyntaxCheck validates scripts with esbuild before extraction.
	SyntaxCheck bool
}

// DefaultOptions enables syntax validation.
func DefaultOptions() Options {
	return Options{SyntaxCheck: true}
}

// Extractor extracts symbols. It holds no per-file state and is safe for
// concurrent use.
type Extractor struct {
	opts Options
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract returns the symbols declared in content, the body of f.
// The first symbol is always the file symbol.
func (e *Extractor) Extract(f scan.File, content []byte) ([]lint.Symbol, error) {
	text, err := decode(content)
	if err != nil {
		return nil, &ParseError{File: f.RelPath, Err: err}
	}

	fileScope := &lint.Scope{Kind: lint.ScopeFile, Name: f.RelPath}
	symbols := []lint.Symbol{{
		Name:  FileSymbolName(f.RelPath),
		Kind:  core.TargetFile,
		Pos:   core.Position{File: f.RelPath, Line: 1, Column: 1},
		Scope: fileScope,
	}}

	var found []lint.Symbol
	switch f.Kind {
	case core.FileKindStyle:
		found, err = extractStyle(f.RelPath, text, styleDialectOf(f.RelPath), fileScope)
	case core.FileKindScript:
		if e.opts.SyntaxCheck {
			if err := checkSyntax(f.RelPath, text); err != nil {
				return nil, err
			}
		}
		found, err = extractScript(f.RelPath, text, scriptDialectOf(f.RelPath), fileScope)
	default:
		return symbols, nil
	}
	if err != nil {
		return nil, err
	}
	return append(symbols, found...), nil
}

// FileSymbolName returns the base name of a path up to its first dot,
// ignoring leading dots: "src/Button.module.css" -> "Button".
func FileSymbolName(rel string) string {
	base := strings.TrimLeft(path.Base(rel), ".")
	name, _, _ := strings.Cut(base, ".")
	return name
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// decode strips a UTF-8 byte order mark, transcodes UTF-16 input announced by
// its byte order mark, and rejects anything else that is not valid UTF-8.
func decode(content []byte) (string, error) {
	if bytes.HasPrefix(content, bomUTF16BE) || bytes.HasPrefix(content, bomUTF16LE) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	content = bytes.TrimPrefix(content, bomUTF8)
	if !utf8.Valid(content) {
		return "", ErrInvalidUTF8
	}
	return string(content), nil
}
