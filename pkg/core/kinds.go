package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TargetKind identifies what kind of symbol a rule checks.
type TargetKind string

// Target kinds.
const (
	TargetVariable TargetKind = "variable"
	TargetFunction TargetKind = "function"
	TargetClass    TargetKind = "class"
	TargetFile     TargetKind = "file"
	TargetSelector TargetKind = "selector"
)

// TargetKinds lists every valid target kind in display order.
var TargetKinds = []TargetKind{
	TargetVariable,
	TargetFunction,
	TargetClass,
	TargetFile,
	TargetSelector,
}

// ParseTargetKind converts a string to a TargetKind.
func ParseTargetKind(s string) (TargetKind, bool) {
	k := TargetKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TargetKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (k TargetKind) String() string { return string(k) }

// FileKind classifies a source file.
type FileKind int

// File kinds.
const (
	FileKindUnknown FileKind = iota
	FileKindStyle
	FileKindScript
)

// String returns the string representation of the file kind.
func (k FileKind) String() string {
	switch k {
	case FileKindStyle:
		return "style"
	case FileKindScript:
		return "script"
	default:
		return "unknown"
	}
}

// ParseFileKind converts "style" or "script" to a FileKind.
func ParseFileKind(s string) (FileKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "style":
		return FileKindStyle, true
	case "script":
		return FileKindScript, true
	default:
		return FileKindUnknown, false
	}
}

// MarshalJSON encodes the file kind as its string name.
func (k FileKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Position is a location in a source file.
type Position struct {
	File   string // Slash-separated path relative to the lint root
	Line   int    // 1-based line number
	Column int    // 1-based column number, counted in runes
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats the position as file:line:column.
func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Before reports whether p sorts before q (file, then line, then column).
// Files are ordered as a directory walk visits them, see ComparePaths.
func (p Position) Before(q Position) bool {
	if p.File != q.File {
		return ComparePaths(p.File, q.File) < 0
	}
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// ComparePaths orders slash-separated paths element by element, the order in
// which a lexical directory walk reaches them: "a/b.js" before "a-b.js".
func ComparePaths(a, b string) int {
	for a != "" && b != "" {
		ha, ta, _ := strings.Cut(a, "/")
		hb, tb, _ := strings.Cut(b, "/")
		if c := strings.Compare(ha, hb); c != 0 {
			return c
		}
		a, b = ta, tb
	}
	return strings.Compare(a, b)
}
