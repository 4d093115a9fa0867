package search

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pseudoincorrect/quickfind/internal/fsutil"
	"github.com/pseudoincorrect/quickfind/internal/textutil"
)

const contextUnavailable = "(context unavailable)"

// LoadContext re-reads the file behind a match and returns up to
// 2*contextSize+1 lines centered on the match line, clamped at the file's
// edges. The file may have changed since the scan; whatever is there now is
// what the caller gets. Read failures yield a single placeholder line rather
// than an error, so a deleted file never breaks result presentation.
func LoadContext(path string, line, contextSize int) []string {
	if contextSize < 0 {
		contextSize = 0
	}

	content, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("context load failed", "path", path, "err", err)
		return []string{contextUnavailable}
	}

	lines := splitLines(fsutil.DecodeText(content))
	if line < 1 || line > len(lines) {
		return []string{contextUnavailable}
	}

	lo := line - 1 - contextSize
	if lo < 0 {
		lo = 0
	}
	hi := line + contextSize
	if hi > len(lines) {
		hi = len(lines)
	}

	out := make([]string, 0, hi-lo)
	for _, l := range lines[lo:hi] {
		out = append(out, textutil.SanitizeLine(l))
	}
	return out
}

func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
