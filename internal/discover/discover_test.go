package discover

import (
	"os"
	"path/filepath"
	"testing"

	"callflow/internal/logging"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("// stub\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestWalker() *Walker {
	return NewWalker(
		[]string{".js", ".ts"},
		[]string{"node_modules", "build", "dist"},
		logging.Discard(),
	)
}

func relPaths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestDiscoverMatchesExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "server.js")
	writeFile(t, root, "lib/rooms.ts")
	writeFile(t, root, "readme.md")
	writeFile(t, root, "style.css")

	files, err := newTestWalker().Discover(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := relPaths(files)
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %v", got)
	}
}

func TestDiscoverSkipsIgnoredAndDotDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.js")
	writeFile(t, root, "node_modules/dep/index.js")
	writeFile(t, root, "build/bundle.js")
	writeFile(t, root, ".git/hooks/hook.js")
	writeFile(t, root, "src/canvas.js")

	files, err := newTestWalker().Discover(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := relPaths(files)
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %v", got)
	}
	for _, p := range got {
		if p == "node_modules/dep/index.js" || p == "build/bundle.js" {
			t.Errorf("ignored directory leaked into results: %s", p)
		}
	}
}

func TestDiscoverDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.js")
	writeFile(t, root, "a.js")
	writeFile(t, root, "sub/c.js")

	w := newTestWalker()
	first, err := w.Discover(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := w.Discover(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RelPath != second[i].RelPath {
			t.Errorf("order differs at %d: %s vs %s", i, first[i].RelPath, second[i].RelPath)
		}
	}
}

func TestDiscoverEmptyTree(t *testing.T) {
	files, err := newTestWalker().Discover(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", relPaths(files))
	}
}
