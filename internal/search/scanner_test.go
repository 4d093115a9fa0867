package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func scanString(t *testing.T, pattern, content string, opts Options) []MatchResult {
	t.Helper()
	s := NewLineScanner(pattern, opts, 0)
	return s.ScanContent("test.txt", content, newMatchBudget(0))
}

func TestScanLiteral(t *testing.T) {
	content := "first needle here\nnothing\nneedle and needle again\n"
	got := scanString(t, "needle", content, Options{})

	want := []struct{ line, col int }{
		{1, 7},
		{3, 1},
		{3, 12},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d matches, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Line != w.line || got[i].Column != w.col {
			t.Errorf("match %d at %d:%d, want %d:%d", i, got[i].Line, got[i].Column, w.line, w.col)
		}
	}
}

func TestScanCaseInsensitiveByDefault(t *testing.T) {
	got := scanString(t, "error", "Error ERROR error\n", Options{})
	if len(got) != 3 {
		t.Errorf("got %d matches, want 3", len(got))
	}

	got = scanString(t, "error", "Error ERROR error\n", Options{CaseSensitive: true})
	if len(got) != 1 {
		t.Errorf("case-sensitive: got %d matches, want 1", len(got))
	}
}

func TestScanSmartCase(t *testing.T) {
	opts := Options{SmartCase: true}

	// Lowercase query: insensitive.
	if got := scanString(t, "error", "Error error\n", opts); len(got) != 2 {
		t.Errorf("lowercase smart-case: got %d matches, want 2", len(got))
	}
	// Uppercase rune in the query: sensitive.
	if got := scanString(t, "Error", "Error error\n", opts); len(got) != 1 {
		t.Errorf("uppercase smart-case: got %d matches, want 1", len(got))
	}
}

func TestScanRegex(t *testing.T) {
	got := scanString(t, `fo+bar`, "x foobar y fooobar\nfbar\n", Options{})
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Column != 3 || got[1].Column != 12 {
		t.Errorf("columns = %d, %d; want 3, 12", got[0].Column, got[1].Column)
	}
}

func TestScanInvalidRegexFallsBackToLiteral(t *testing.T) {
	// "a(b" does not compile; it must still find the literal text.
	got := scanString(t, "a(b", "call a(b) here\n", Options{})
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Column != 6 {
		t.Errorf("column = %d, want 6", got[0].Column)
	}
}

func TestScanWholeWord(t *testing.T) {
	content := "cat catalog concat cat\n"
	got := scanString(t, "cat", content, Options{WholeWord: true})
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Column != 1 || got[1].Column != 20 {
		t.Errorf("columns = %d, %d; want 1, 20", got[0].Column, got[1].Column)
	}
}

func TestScanZeroWidthRegexTerminates(t *testing.T) {
	// A pattern that can match empty must not loop or flood the line.
	got := scanString(t, "z*", "abc\n", Options{})
	if len(got) > maxMatchesPerFile {
		t.Errorf("got %d matches, want at most the per-file cap", len(got))
	}
}

func TestScanColumnsAreRuneOffsets(t *testing.T) {
	got := scanString(t, "x", "日本語x\n", Options{})
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Column != 4 {
		t.Errorf("column = %d, want 4 (rune offset, not byte)", got[0].Column)
	}
}

func TestScanTrailingNewlineNoPhantomLine(t *testing.T) {
	got := scanString(t, `^$`, "a\nb\n", Options{})
	if len(got) != 0 {
		t.Errorf("trailing newline produced %d phantom empty-line matches", len(got))
	}
}

func TestScanPerFileCap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 150; i++ {
		sb.WriteString("hit\n")
	}
	got := scanString(t, "hit", sb.String(), Options{})
	if len(got) != maxMatchesPerFile {
		t.Errorf("got %d matches, want the per-file cap %d", len(got), maxMatchesPerFile)
	}
}

func TestScanBudgetStopsEarly(t *testing.T) {
	budget := newMatchBudget(5)
	s := NewLineScanner("hit", Options{}, 0)
	got := s.ScanContent("a.txt", strings.Repeat("hit\n", 20), budget)

	if len(got) != 5 {
		t.Errorf("got %d matches, want 5", len(got))
	}
	if !budget.capReached() {
		t.Error("budget cap not reported as reached")
	}
}

func TestScanFileSkipsOversizedAndBinary(t *testing.T) {
	dir := t.TempDir()

	big := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(big, []byte(strings.Repeat("hit\n", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	bin := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(bin, []byte("hit\x00hit"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewLineScanner("hit", Options{}, 64)
	if got := s.ScanFile(big, 400, newMatchBudget(0)); got != nil {
		t.Errorf("oversized file produced %d matches", len(got))
	}

	s = NewLineScanner("hit", Options{}, 0)
	if got := s.ScanFile(bin, 7, newMatchBudget(0)); got != nil {
		t.Errorf("binary file produced %d matches", len(got))
	}
}

func TestScanFileUTF16Content(t *testing.T) {
	// BOM plus little-endian code units; BMP runes only.
	encodeUTF16LE := func(s string) []byte {
		b := []byte{0xFF, 0xFE}
		for _, r := range s {
			b = append(b, byte(r), byte(r>>8))
		}
		return b
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "wide.txt")
	content := encodeUTF16LE("alpha\nhit here\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewLineScanner("hit", Options{}, 0)
	got := s.ScanFile(path, int64(len(content)), newMatchBudget(0))
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Line != 2 || got[0].Column != 1 {
		t.Errorf("match at %d:%d, want 2:1", got[0].Line, got[0].Column)
	}
	if got[0].Text != "hit here" {
		t.Errorf("match text = %q, want decoded UTF-8", got[0].Text)
	}
}

func TestScanFileBoundaryAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	content := []byte("hit here\n")
	path := filepath.Join(dir, "exact.txt")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// A file exactly at the limit is still scanned.
	s := NewLineScanner("hit", Options{}, int64(len(content)))
	if got := s.ScanFile(path, int64(len(content)), newMatchBudget(0)); len(got) != 1 {
		t.Errorf("file at the exact size limit produced %d matches, want 1", len(got))
	}
}
