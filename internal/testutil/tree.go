package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// WriteTree materialises a txtar archive under a fresh temp directory and
// returns its path. Each archive member becomes one file:
//
//	-- src/app.js --
//	const first_name = "Luke";
func WriteTree(t testing.TB, archive string) string {
	t.Helper()
	root := t.TempDir()
	WriteTreeAt(t, root, archive)
	return root
}

// WriteTreeAt writes a txtar archive into an existing directory.
func WriteTreeAt(t testing.TB, root, archive string) {
	t.Helper()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(root, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, f.Data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}
