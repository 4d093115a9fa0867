package search

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultMaxDepth = 8

// Walker enumerates files under a root, applying the ignore matcher and a
// depth cap. Unreadable entries are skipped, never fatal.
type Walker struct {
	filter   *IgnoreMatcher
	maxDepth int
}

func NewWalker(filter *IgnoreMatcher, maxDepth int) *Walker {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Walker{filter: filter, maxDepth: maxDepth}
}

// Walk returns the candidate files under root, sorted by display name,
// case-insensitive ascending. An unreadable root yields an empty list: the
// caller treats "no results" and "root missing" identically.
func (w *Walker) Walk(root string) []Candidate {
	var out []Candidate
	w.walkDir(root, "", 0, &out)

	sort.SliceStable(out, func(i, j int) bool {
		a := strings.ToLower(out[i].Name)
		b := strings.ToLower(out[j].Name)
		if a == b {
			return out[i].RelPath < out[j].RelPath
		}
		return a < b
	})
	return out
}

func (w *Walker) walkDir(dir, relDir string, depth int, out *[]Candidate) {
	if depth > w.maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if relDir != "" {
			slog.Debug("skipping unreadable directory", "dir", dir, "err", err)
		}
		return
	}

	for _, entry := range entries {
		rel := joinRelPath(relDir, entry.Name())
		if w.filter.Excluded(rel, entry.IsDir()) {
			continue
		}

		full := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			slog.Debug("skipping unreadable entry", "path", full, "err", err)
			continue
		}

		if entry.IsDir() {
			w.walkDir(full, rel, depth+1, out)
			continue
		}

		*out = append(*out, Candidate{
			Path:    full,
			Name:    entry.Name(),
			RelPath: rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
}

// fileCandidate builds the single candidate for a file-scoped root.
func fileCandidate(path string) ([]Candidate, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	return []Candidate{{
		Path:    path,
		Name:    filepath.Base(path),
		RelPath: filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}}, true
}

func joinRelPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "/" + child
}
