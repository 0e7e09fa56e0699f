package starlark

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"go.starlark.net/starlark"
)

// regexCache memoizes patterns compiled by the matches builtin.
var regexCache sync.Map // map[string]*regexp.Regexp

// Predeclared returns the builtin globals available to predicate expressions:
//
//	matches(pattern, s)  regular expression search
//	words(s)             split an identifier into lower-case words
//	basename(path)       last path element
//	dirname(path)        all but the last path element
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"matches":  starlark.NewBuiltin("matches", builtinMatches),
		"words":    starlark.NewBuiltin("words", builtinWords),
		"basename": starlark.NewBuiltin("basename", builtinBasename),
		"dirname":  starlark.NewBuiltin("dirname", builtinDirname),
	}
}

func builtinMatches(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern, s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &pattern, &s); err != nil {
		return nil, err
	}
	re, err := compileCached(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.Bool(re.MatchString(s)), nil
}

func builtinWords(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	parts := SplitWords(s)
	elems := make([]starlark.Value, len(parts))
	for i, p := range parts {
		elems[i] = starlark.String(strings.ToLower(p))
	}
	return starlark.NewList(elems), nil
}

func builtinBasename(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var p string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &p); err != nil {
		return nil, err
	}
	return starlark.String(path.Base(p)), nil
}

func builtinDirname(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var p string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &p); err != nil {
		return nil, err
	}
	return starlark.String(path.Dir(p)), nil
}

func compileCached(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// SplitWords splits an identifier into its words at separators and case
// boundaries: "parseHTTPResponse_v2" -> ["parse", "HTTP", "Response", "v2"].
func SplitWords(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}
