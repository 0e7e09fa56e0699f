// Package scan walks a source tree and classifies files for extraction.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/namelint/pkg/core"
)

// ErrTooLarge marks files skipped because they exceed Options.MaxFileSize.
var ErrTooLarge = errors.New("file exceeds size limit")

// Default classification and ignore lists.
var (
	DefaultStyleExt   = []string{".css", ".scss", ".sass", ".less"}
	DefaultScriptExt  = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}
	DefaultIgnoreDirs = []string{"node_modules", ".git", "dist", "build", "coverage"}
)

// DefaultMaxFileSize is the size above which files are reported and skipped.
const DefaultMaxFileSize = 2 << 20

// declarationSuffixes are TypeScript declaration files; they describe other
// code and are not linted.
var declarationSuffixes = []string{".d.ts", ".d.mts", ".d.cts"}

// Options configures a Scanner.
type Options struct {
	StyleExt       []string // extensions classified as style sheets
	ScriptExt      []string // extensions classified as scripts
	IgnoreDirs     []string // directory base names never entered
	Ignore         []string // doublestar globs on slash-separated relative paths
	MaxFileSize    int64    // 0 = unlimited
	FollowSymlinks bool
}

// DefaultOptions returns the standard classification and ignore lists.
func DefaultOptions() Options {
	return Options{
		StyleExt:    DefaultStyleExt,
		ScriptExt:   DefaultScriptExt,
		IgnoreDirs:  DefaultIgnoreDirs,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// File is a classified source file found under the scan root.
type File struct {
	Path    string // path on disk
	RelPath string // slash-separated, relative to the scan root
	Kind    core.FileKind
	Size    int64
}

// Read returns the file's content.
func (f File) Read() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// ScanWarning reports an entry that could not be scanned. The walk continues.
type ScanWarning struct {
	Path string
	Err  error
}

func (w *ScanWarning) Error() string {
	return fmt.Sprintf("scan %s: %v", w.Path, w.Err)
}

func (w *ScanWarning) Unwrap() error { return w.Err }

// Scanner enumerates lintable files under a root directory.
type Scanner struct {
	root       string
	opts       Options
	kinds      map[string]core.FileKind
	ignoreDirs map[string]bool
}

// New validates root and opts. It fails only when root is not an existing
// directory or an ignore glob is malformed.
func New(root string, opts Options) (*Scanner, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", root)
	}
	for _, g := range opts.Ignore {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("scan ignore: bad glob %q", g)
		}
	}

	s := &Scanner{
		root:       filepath.Clean(root),
		opts:       opts,
		kinds:      make(map[string]core.FileKind),
		ignoreDirs: make(map[string]bool, len(opts.IgnoreDirs)),
	}
	for _, ext := range opts.StyleExt {
		s.kinds[normalizeExt(ext)] = core.FileKindStyle
	}
	for _, ext := range opts.ScriptExt {
		s.kinds[normalizeExt(ext)] = core.FileKindScript
	}
	for _, d := range opts.IgnoreDirs {
		s.ignoreDirs[d] = true
	}
	return s, nil
}

// Root returns the cleaned scan root.
func (s *Scanner) Root() string { return s.root }

// Classify returns the file kind for a path, or FileKindUnknown.
func (s *Scanner) Classify(path string) core.FileKind {
	lower := strings.ToLower(path)
	for _, suffix := range declarationSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return core.FileKindUnknown
		}
	}
	return s.kinds[filepath.Ext(lower)]
}

// Files returns a lazy sequence of the files under the root in lexical order.
// Every call walks the tree afresh. Unreadable entries yield a *ScanWarning
// with a zero File and the walk continues.
func (s *Scanner) Files() iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			rel := s.rel(path)

			if err != nil {
				if !yield(File{}, &ScanWarning{Path: rel, Err: err}) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != s.root && s.skipDir(d.Name(), rel) {
					return filepath.SkipDir
				}
				return nil
			}

			file, ok, werr := s.visit(path, rel, d)
			switch {
			case werr != nil:
				if !yield(File{}, werr) {
					return filepath.SkipAll
				}
			case ok:
				if !yield(file, nil) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// Dirs returns a lazy sequence of the root and every directory below it that
// Files would descend into. Unreadable directories are skipped silently.
func (s *Scanner) Dirs() iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			switch {
			case err != nil:
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			case !d.IsDir():
				return nil
			case path != s.root && s.skipDir(d.Name(), s.rel(path)):
				return filepath.SkipDir
			case !yield(path):
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// SkipsDir reports whether the directory at the slash-separated path rel,
// relative to the root, is excluded from scanning.
func (s *Scanner) SkipsDir(rel string) bool {
	return rel != "." && rel != "" && s.skipDir(path.Base(rel), rel)
}

func (s *Scanner) visit(path, rel string, d fs.DirEntry) (File, bool, error) {
	kind := s.Classify(path)
	if kind == core.FileKindUnknown || s.ignored(rel) {
		return File{}, false, nil
	}

	if d.Type()&fs.ModeSymlink != 0 {
		if !s.opts.FollowSymlinks {
			return File{}, false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return File{}, false, &ScanWarning{Path: rel, Err: err}
		}
		if !info.Mode().IsRegular() {
			return File{}, false, nil
		}
		return s.sized(path, rel, kind, info.Size())
	}

	if !d.Type().IsRegular() {
		return File{}, false, nil
	}
	info, err := d.Info()
	if err != nil {
		return File{}, false, &ScanWarning{Path: rel, Err: err}
	}
	return s.sized(path, rel, kind, info.Size())
}

func (s *Scanner) sized(path, rel string, kind core.FileKind, size int64) (File, bool, error) {
	if s.opts.MaxFileSize > 0 && size > s.opts.MaxFileSize {
		return File{}, false, &ScanWarning{
			Path: rel,
			Err:  fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, size, s.opts.MaxFileSize),
		}
	}
	return File{Path: path, RelPath: rel, Kind: kind, Size: size}, true, nil
}

func (s *Scanner) skipDir(name, rel string) bool {
	return s.ignoreDirs[name] || s.ignored(rel) || s.ignored(rel+"/")
}

func (s *Scanner) ignored(rel string) bool {
	for _, g := range s.opts.Ignore {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
