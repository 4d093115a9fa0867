package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.RelPath
	}
	return out
}

func TestWalkAppliesFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":                     "package main\n",
		"src/app.go":                  "package src\n",
		"node_modules/pkg/index.js":   "x\n",
		".git/config":                 "x\n",
		".hidden/notes.txt":           "x\n",
		"vendor/dep/dep.go":           "x\n",
		"src/build/out.bin":           "x\n",
		"src/deep/nested/provider.go": "x\n",
	})

	w := NewWalker(NewIgnoreMatcher(false), 0)
	got := relPaths(w.Walk(root))

	want := map[string]bool{
		"main.go":                     true,
		"src/app.go":                  true,
		"src/deep/nested/provider.go": true,
	}
	if len(got) != len(want) {
		t.Fatalf("Walk returned %v, want exactly %v", got, want)
	}
	for _, rel := range got {
		if !want[rel] {
			t.Errorf("unexpected candidate %q", rel)
		}
	}
}

func TestWalkSortsByNameCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Zebra.go":   "x",
		"apple.go":   "x",
		"Mango.go":   "x",
		"sub/bee.go": "x",
	})

	w := NewWalker(NewIgnoreMatcher(false), 0)
	candidates := w.Walk(root)

	var names []string
	for _, c := range candidates {
		names = append(names, c.Name)
	}
	want := []string{"apple.go", "bee.go", "Mango.go", "Zebra.go"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Walk order = %v, want %v", names, want)
	}
}

func TestWalkDepthCap(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/b/c/deep.txt": "x",
		"a/shallow.txt":  "x",
	})

	w := NewWalker(NewIgnoreMatcher(false), 2)
	got := relPaths(w.Walk(root))

	for _, rel := range got {
		if rel == "a/b/c/deep.txt" {
			t.Error("candidate beyond the depth cap was returned")
		}
	}
	found := false
	for _, rel := range got {
		if rel == "a/shallow.txt" {
			found = true
		}
	}
	if !found {
		t.Error("candidate within the depth cap missing")
	}
}

func TestWalkMissingRoot(t *testing.T) {
	w := NewWalker(NewIgnoreMatcher(false), 0)
	if got := w.Walk(filepath.Join(t.TempDir(), "does-not-exist")); len(got) != 0 {
		t.Errorf("Walk of missing root returned %d candidates, want 0", len(got))
	}
}

func TestFileCandidate(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "single.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, ok := fileCandidate(path)
	if !ok || len(got) != 1 {
		t.Fatalf("fileCandidate = %v, %v; want one candidate", got, ok)
	}
	if got[0].Name != "single.txt" || got[0].Size != 5 {
		t.Errorf("candidate = %+v", got[0])
	}

	if _, ok := fileCandidate(root); ok {
		t.Error("fileCandidate accepted a directory")
	}
}
