package lint

// LayoutIndex is the read-only set of file paths seen in one run.
// FileLayout rules consult it for sibling checks.
type LayoutIndex struct {
	files map[string]struct{}
}

// NewLayoutIndex indexes the relative paths of files.
func NewLayoutIndex(files []FileSymbols) *LayoutIndex {
	idx := &LayoutIndex{files: make(map[string]struct{}, len(files))}
	for _, f := range files {
		idx.files[f.File] = struct{}{}
	}
	return idx
}

// Has reports whether path was part of the run.
func (l *LayoutIndex) Has(path string) bool {
	if l == nil {
		return false
	}
	_, ok := l.files[path]
	return ok
}

// Len returns the number of indexed files.
func (l *LayoutIndex) Len() int {
	if l == nil {
		return 0
	}
	return len(l.files)
}
