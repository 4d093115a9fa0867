package search

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pseudoincorrect/quickfind/internal/fsutil"
)

// Built-in denylist, applied before any ignore-file rules: version control,
// dependency and build-output directories, log files.
var defaultDenyPatterns = []string{
	".git/**",
	".svn/**",
	".hg/**",
	"node_modules/**",
	"bower_components/**",
	"vendor/**",
	"target/**",
	"dist/**",
	"build/**",
	"out/**",
	"*.log",
}

// Ignore-file names probed at the search root, in preference order.
var ignoreFileNames = []string{".quickfindignore", ".gitignore"}

type ignoreRule struct {
	pattern   string // slash-normalized glob
	dirPrefix string // set for trailing /** patterns; excludes the directory itself too
	literal   bool   // invalid glob syntax degrades to path equality
	hasSlash  bool
}

// IgnoreMatcher decides whether a root-relative path is excluded from a
// search. Rules are evaluated in order; the first match excludes. Ignore-file
// rules are appended after the defaults, so they can never un-exclude one.
type IgnoreMatcher struct {
	rules         []ignoreRule
	includeHidden bool
}

// NewIgnoreMatcher builds a matcher carrying the default denylist.
func NewIgnoreMatcher(includeHidden bool) *IgnoreMatcher {
	m := &IgnoreMatcher{includeHidden: includeHidden}
	for _, p := range defaultDenyPatterns {
		m.addPattern(p)
	}
	return m
}

// LoadIgnoreFile appends rules from the first ignore file found at root.
// Parsing is best-effort glob translation: comments and blank lines are
// skipped, negation patterns are unsupported and dropped.
func (m *IgnoreMatcher) LoadIgnoreFile(root string) {
	for _, name := range ignoreFileNames {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if strings.HasPrefix(line, "!") {
				slog.Debug("ignore file negation patterns are unsupported", "pattern", line)
				continue
			}
			m.addPattern(line)
		}
		return
	}
}

func (m *IgnoreMatcher) addPattern(raw string) {
	p := filepath.ToSlash(strings.TrimSpace(raw))
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return
	}

	rule := ignoreRule{pattern: p}

	// "dir/" and "dir/**" both exclude the directory and everything beneath.
	if trimmed, ok := strings.CutSuffix(p, "/**"); ok {
		rule.dirPrefix = trimmed
	} else if trimmed, ok := strings.CutSuffix(p, "/"); ok && trimmed != "" {
		rule.dirPrefix = trimmed
		rule.pattern = trimmed + "/**"
	}

	if rule.dirPrefix == "" && !doublestar.ValidatePattern(rule.pattern) {
		rule.literal = true
	}
	if rule.dirPrefix != "" && !doublestar.ValidatePattern(rule.dirPrefix) {
		rule.literal = true
		rule.pattern = rule.dirPrefix
		rule.dirPrefix = ""
	}

	rule.hasSlash = strings.Contains(strings.TrimSuffix(rule.pattern, "/**"), "/")
	m.rules = append(m.rules, rule)
}

// Excluded reports whether the slash-normalized root-relative path should be
// skipped. Excluding a directory prunes its whole subtree at the walker.
func (m *IgnoreMatcher) Excluded(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	base := path.Base(relPath)

	for _, rule := range m.rules {
		if rule.matches(relPath, base, isDir) {
			return true
		}
	}

	if !m.includeHidden && fsutil.IsHidden(base) {
		return true
	}
	return false
}

func (r ignoreRule) matches(relPath, base string, isDir bool) bool {
	if r.literal {
		if relPath == r.pattern {
			return true
		}
		return !r.hasSlash && base == r.pattern
	}

	if r.dirPrefix != "" {
		if !r.hasSlash {
			// Segment match at any depth: a "node_modules/**" rule hits
			// sub/node_modules and everything inside it. The entry itself
			// only matches when it really is a directory; a plain file that
			// shares the name stays visible.
			segs := strings.Split(relPath, "/")
			for i, seg := range segs {
				if seg != r.dirPrefix {
					continue
				}
				if i < len(segs)-1 || isDir {
					return true
				}
			}
			return false
		}
		if relPath == r.dirPrefix {
			return isDir
		}
		return strings.HasPrefix(relPath, r.dirPrefix+"/")
	}

	target := relPath
	if !r.hasSlash {
		target = base
	}
	ok, err := doublestar.Match(r.pattern, target)
	if err != nil {
		return relPath == r.pattern
	}
	return ok
}
