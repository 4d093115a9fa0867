package search

import (
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pseudoincorrect/quickfind/internal/fsutil"
	"github.com/pseudoincorrect/quickfind/internal/textutil"
)

const (
	maxMatchesPerFile  = 100
	defaultMaxResults  = 1000
	defaultMaxFileSize = 1 << 20
)

// LineScanner applies a literal-or-regex pattern to file content and emits
// per-line match locations. A pattern that fails to compile silently degrades
// to a literal substring scan with the same case rule; the caller never sees
// the difference.
type LineScanner struct {
	re            *regexp.Regexp // nil in literal mode
	needle        string         // folded when case-insensitive
	caseSensitive bool
	maxFileSize   int64
}

// NewLineScanner compiles pattern according to opts. WholeWord wraps the
// pattern in word-boundary anchors before compilation.
func NewLineScanner(pattern string, opts Options, maxFileSize int64) *LineScanner {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	s := &LineScanner{
		caseSensitive: effectiveCaseSensitive(pattern, opts),
		maxFileSize:   maxFileSize,
	}

	expr := pattern
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !s.caseSensitive {
		expr = `(?i)` + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		// Malformed expression: fall back to a literal substring scan.
		s.needle = pattern
		if !s.caseSensitive {
			s.needle = strings.ToLower(pattern)
		}
		return s
	}
	s.re = re
	return s
}

// ScanFile reads and scans one file. Oversized and binary files produce zero
// matches by policy.
func (s *LineScanner) ScanFile(path string, size int64, budget *matchBudget) []MatchResult {
	if size > s.maxFileSize {
		slog.Debug("skipping oversized file", "path", path, "size", size)
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("skipping unreadable file", "path", path, "err", err)
		return nil
	}
	if !fsutil.IsTextContent(path, content) {
		return nil
	}
	return s.ScanContent(path, fsutil.DecodeText(content), budget)
}

// ScanContent scans already-loaded content, honoring the per-file cap and the
// session-wide budget. Matches are emitted in ascending line/column order.
func (s *LineScanner) ScanContent(path, content string, budget *matchBudget) []MatchResult {
	var results []MatchResult

	// A trailing newline does not start a phantom final line.
	content = strings.TrimSuffix(content, "\n")

	line := 1
	for start := 0; start <= len(content); line++ {
		end := strings.IndexByte(content[start:], '\n')
		var text string
		if end == -1 {
			text = content[start:]
			start = len(content) + 1
		} else {
			text = content[start : start+end]
			start += end + 1
		}
		text = strings.TrimSuffix(text, "\r")

		for _, col := range s.matchColumns(text) {
			if budget != nil && !budget.take() {
				return results
			}
			clean := textutil.SanitizeLine(strings.TrimSpace(text))
			results = append(results, MatchResult{
				Path:   path,
				Line:   line,
				Column: col,
				Text:   clean,
				// Until context is loaded, the match line stands in for it.
				Context: []string{clean},
			})
			if len(results) >= maxMatchesPerFile {
				return results
			}
		}
		if end == -1 {
			break
		}
	}
	return results
}

// matchColumns returns the 1-based rune columns of all non-overlapping
// matches on one line.
func (s *LineScanner) matchColumns(line string) []int {
	if s.re != nil {
		return s.regexColumns(line)
	}
	return s.literalColumns(line)
}

func (s *LineScanner) regexColumns(line string) []int {
	var cols []int
	offset := 0
	for offset <= len(line) {
		loc := s.re.FindStringIndex(line[offset:])
		if loc == nil {
			break
		}
		start := offset + loc[0]
		cols = append(cols, utf8.RuneCountInString(line[:start])+1)

		advance := loc[1]
		if loc[1] == loc[0] {
			// Zero-width match: step one rune to avoid looping forever.
			_, size := utf8.DecodeRuneInString(line[offset+loc[0]:])
			if size == 0 {
				break
			}
			advance = loc[0] + size
		}
		offset += advance
		if len(cols) >= maxMatchesPerFile {
			break
		}
	}
	return cols
}

func (s *LineScanner) literalColumns(line string) []int {
	if s.needle == "" {
		return nil
	}
	haystack := line
	if !s.caseSensitive {
		haystack = strings.ToLower(line)
	}

	var cols []int
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], s.needle)
		if idx == -1 {
			break
		}
		start := offset + idx
		cols = append(cols, utf8.RuneCountInString(line[:start])+1)
		offset = start + len(s.needle)
		if len(cols) >= maxMatchesPerFile {
			break
		}
	}
	return cols
}

func effectiveCaseSensitive(pattern string, opts Options) bool {
	if opts.CaseSensitive {
		return true
	}
	return opts.SmartCase && hasUpper(pattern)
}

// matchBudget is the session-wide match cap shared across concurrently
// scanned files.
type matchBudget struct {
	mu        sync.Mutex
	remaining int
	hitCap    bool
}

func newMatchBudget(limit int) *matchBudget {
	if limit <= 0 {
		limit = defaultMaxResults
	}
	return &matchBudget{remaining: limit}
}

func (b *matchBudget) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining == 0 {
		b.hitCap = true
		return false
	}
	b.remaining--
	return true
}

func (b *matchBudget) exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining == 0
}

func (b *matchBudget) capReached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hitCap || b.remaining == 0
}
