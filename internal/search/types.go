package search

import (
	"fmt"
	"time"
)

// Mode selects which matching pipeline a query runs through.
type Mode int

const (
	// ModeText scans file contents line by line.
	ModeText Mode = iota
	// ModeName ranks file names and relative paths fuzzily.
	ModeName
)

func (m Mode) String() string {
	if m == ModeName {
		return "name"
	}
	return "text"
}

// RootScope distinguishes a single-file root from a directory subtree.
type RootScope int

const (
	ScopeTree RootScope = iota
	ScopeFile
)

// SearchRoot is the fixed starting point of one session.
type SearchRoot struct {
	Path  string
	Scope RootScope
}

// Options are the per-query matching switches.
type Options struct {
	// CaseSensitive forces case-sensitive matching. When false and
	// SmartCase is set, an uppercase rune in the query makes the match
	// case-sensitive anyway.
	CaseSensitive bool
	SmartCase     bool
	WholeWord     bool
}

// Candidate is one filesystem entry discovered by the walker.
// Immutable after traversal.
type Candidate struct {
	Path    string // absolute
	Name    string // display name
	RelPath string // relative to the search root, slash-separated
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// MatchResult is one located occurrence in text mode. Context and
// ContextLoaded form the single mutable pair: context lines are filled in
// lazily when the caller first asks for them.
type MatchResult struct {
	ID     int
	Path   string
	Line   int // 1-based
	Column int // 1-based, rune offset
	Text   string

	Context       []string
	ContextLoaded bool
}

// ScoredCandidate is a Candidate plus its fuzzy score and the matched rune
// indices into the candidate's searchable string, for highlighting.
type ScoredCandidate struct {
	Candidate
	Score      float64
	Indices    []int
	InputOrder int
}

// ResultSet holds the outcome of the current query. It is replaced
// wholesale on every new query, never merged.
type ResultSet struct {
	Query string
	Mode  Mode

	Matches []MatchResult     // text mode
	Scored  []ScoredCandidate // name mode

	Displayed int
	Truncated bool

	capacity int
}

// Len returns the number of results regardless of mode.
func (rs *ResultSet) Len() int {
	if rs.Mode == ModeName {
		return len(rs.Scored)
	}
	return len(rs.Matches)
}

// DisplayCount renders the result count, with a "1000+" style suffix when
// the scan stopped at the session cap rather than exhausting its input.
func (rs *ResultSet) DisplayCount() string {
	if rs.Truncated {
		return fmt.Sprintf("%d+", rs.capacity)
	}
	return fmt.Sprintf("%d", rs.Len())
}
