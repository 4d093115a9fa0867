package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// State is where a session currently is in its query lifecycle.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateReady
)

// ErrNoResults is returned by result accessors before any query completed.
var ErrNoResults = errors.New("no completed search")

// Config carries the session-level limits. Zero fields take defaults.
type Config struct {
	MaxResults       int   // session-wide match cap
	MaxFileSize      int64 // bytes; larger files are skipped in text mode
	MaxDepth         int   // directory recursion limit
	ContextSize      int   // lines either side of a match on context load
	BatchSize        int   // scan parallelism and async flush granularity
	InitialDisplay   int   // results shown after a query completes
	DisplayIncrement int   // results added per LoadMore
	IncludeHidden    bool
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxResults:       defaultMaxResults,
		MaxFileSize:      defaultMaxFileSize,
		MaxDepth:         defaultMaxDepth,
		ContextSize:      2,
		BatchSize:        10,
		InitialDisplay:   50,
		DisplayIncrement: 25,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = d.MaxFileSize
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.ContextSize < 0 {
		c.ContextSize = d.ContextSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.InitialDisplay <= 0 {
		c.InitialDisplay = d.InitialDisplay
	}
	if c.DisplayIncrement <= 0 {
		c.DisplayIncrement = d.DisplayIncrement
	}
	return c
}

// Session binds a search root to a sequence of queries. Each new query
// replaces the previous result set wholesale; an in-flight async query is
// superseded (its completion dropped) rather than merged. Candidates for
// name mode are enumerated once per session and re-ranked per query.
type Session struct {
	root    SearchRoot
	cfg     Config
	matcher *FuzzyMatcher

	mu         sync.Mutex
	state      State
	results    *ResultSet
	candidates []Candidate
	walked     bool

	cancelMu sync.Mutex
	cancel   context.CancelFunc
	token    atomic.Uint64
}

// NewSession creates a session over root with cfg (zero fields defaulted).
func NewSession(root SearchRoot, cfg Config) *Session {
	return &Session{
		root:    root,
		cfg:     cfg.withDefaults(),
		matcher: NewFuzzyMatcher(),
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results returns the current result set, or ErrNoResults before the first
// query completes.
func (s *Session) Results() (*ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return nil, ErrNoResults
	}
	return s.results, nil
}

// Search runs one query to completion and installs its result set. Any
// async query still in flight is superseded first, so its completion can
// never overwrite this newer result. An empty text query yields an empty
// set; an empty name query lists every candidate in traversal order.
func (s *Session) Search(ctx context.Context, query string, mode Mode, opts Options) (*ResultSet, error) {
	s.Cancel()
	s.setState(StateScanning)
	rs, err := s.runSearch(ctx, query, mode, opts, nil)
	if err != nil {
		s.setState(StateIdle)
		return nil, err
	}
	s.install(rs)
	return rs, nil
}

// SearchAsync starts a query in the background. onUpdate fires with partial
// result sets while scanning (final=false) and exactly once with the complete
// set (final=true). If a newer query supersedes this one, this query's
// updates stop and its completion is dropped.
func (s *Session) SearchAsync(query string, mode Mode, opts Options, onUpdate func(rs *ResultSet, final bool)) {
	ctx, token := s.beginAsync()
	s.setState(StateScanning)

	go func() {
		progress := func(rs *ResultSet) {
			if s.token.Load() == token && onUpdate != nil {
				onUpdate(rs, false)
			}
		}
		rs, err := s.runSearch(ctx, query, mode, opts, progress)
		if !s.endAsync(token) {
			return // superseded; drop the completion
		}
		if err != nil {
			slog.Debug("async search aborted", "query", query, "err", err)
			s.setState(StateIdle)
			return
		}
		s.install(rs)
		if onUpdate != nil {
			onUpdate(rs, true)
		}
	}()
}

// Cancel aborts any in-flight async query without starting a new one.
func (s *Session) Cancel() {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	s.token.Add(1)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// LoadMore reveals the next increment of already-computed results and
// returns the new display count.
func (s *Session) LoadMore() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return 0, ErrNoResults
	}
	rs := s.results
	rs.Displayed += s.cfg.DisplayIncrement
	if rs.Displayed > rs.Len() {
		rs.Displayed = rs.Len()
	}
	return rs.Displayed, nil
}

// LoadContext fills in the context lines for one text match, lazily and
// idempotently: a second call returns the already-loaded lines without
// touching the file again. A non-positive contextSize takes the session
// default.
func (s *Session) LoadContext(matchID, contextSize int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return nil, ErrNoResults
	}
	if contextSize <= 0 {
		contextSize = s.cfg.ContextSize
	}
	for i := range s.results.Matches {
		m := &s.results.Matches[i]
		if m.ID != matchID {
			continue
		}
		if !m.ContextLoaded {
			m.Context = LoadContext(m.Path, m.Line, contextSize)
			m.ContextLoaded = true
		}
		return m.Context, nil
	}
	return nil, errors.New("unknown match id")
}

func (s *Session) beginAsync() (context.Context, uint64) {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return ctx, s.token.Add(1)
}

// endAsync reports whether this completion is still the current one and, if
// so, clears the cancel handle.
func (s *Session) endAsync(token uint64) bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	if s.token.Load() != token {
		return false
	}
	s.cancel = nil
	return true
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) install(rs *ResultSet) {
	s.mu.Lock()
	s.results = rs
	s.state = StateReady
	s.mu.Unlock()
}

func (s *Session) runSearch(ctx context.Context, query string, mode Mode, opts Options, progress func(*ResultSet)) (*ResultSet, error) {
	var (
		rs  *ResultSet
		err error
	)
	if mode == ModeName {
		// Name mode enumerates once per session and re-ranks the cached
		// listing on every query.
		candidates, cerr := s.nameCandidates(ctx)
		if cerr != nil {
			return nil, cerr
		}
		rs, err = s.runNameSearch(query, candidates)
	} else {
		// Text mode walks fresh so new and deleted files are picked up.
		candidates, cerr := s.enumerate(ctx)
		if cerr != nil {
			return nil, cerr
		}
		rs, err = s.runTextSearch(ctx, query, opts, candidates, progress)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("search complete",
		"query", query, "mode", mode, "results", rs.Len(), "truncated", rs.Truncated)
	return rs, nil
}

func (s *Session) enumerate(ctx context.Context) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.root.Scope == ScopeFile {
		if c, ok := fileCandidate(s.root.Path); ok {
			return c, nil
		}
		return nil, nil
	}
	filter := NewIgnoreMatcher(s.cfg.IncludeHidden)
	filter.LoadIgnoreFile(s.root.Path)
	return NewWalker(filter, s.cfg.MaxDepth).Walk(s.root.Path), nil
}

func (s *Session) nameCandidates(ctx context.Context) ([]Candidate, error) {
	s.mu.Lock()
	if s.walked {
		defer s.mu.Unlock()
		return s.candidates, nil
	}
	s.mu.Unlock()

	candidates, err := s.enumerate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.candidates = candidates
	s.walked = true
	s.mu.Unlock()
	return candidates, nil
}

func (s *Session) runNameSearch(query string, candidates []Candidate) (*ResultSet, error) {
	scored, truncated := s.matcher.RankTop(candidates, query, s.cfg.MaxResults)
	rs := &ResultSet{
		Query:     query,
		Mode:      ModeName,
		Scored:    scored,
		Truncated: truncated,
		capacity:  s.cfg.MaxResults,
	}
	rs.Displayed = min(s.cfg.InitialDisplay, rs.Len())
	return rs, nil
}

func (s *Session) runTextSearch(ctx context.Context, query string, opts Options, candidates []Candidate, progress func(*ResultSet)) (*ResultSet, error) {
	rs := &ResultSet{Query: query, Mode: ModeText, capacity: s.cfg.MaxResults}
	if query == "" {
		return rs, nil
	}

	scanner := NewLineScanner(query, opts, s.cfg.MaxFileSize)
	budget := newMatchBudget(s.cfg.MaxResults)

	// Per-candidate result slots keep traversal order without a final sort.
	perFile := make([][]MatchResult, len(candidates))
	var (
		flushMu   sync.Mutex
		filesDone int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchSize)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if budget.exhausted() {
				return nil
			}
			matches := scanner.ScanFile(c.Path, c.Size, budget)

			flushMu.Lock()
			perFile[i] = matches
			filesDone++
			var snap *ResultSet
			if progress != nil && filesDone%s.cfg.BatchSize == 0 {
				snap = s.snapshotText(query, perFile, budget)
			}
			flushMu.Unlock()
			if snap != nil {
				progress(snap)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, matches := range perFile {
		rs.Matches = append(rs.Matches, matches...)
	}
	for i := range rs.Matches {
		rs.Matches[i].ID = i
	}
	rs.Truncated = budget.capReached()
	rs.Displayed = min(s.cfg.InitialDisplay, rs.Len())
	return rs, nil
}

// snapshotText builds a partial result set from whatever has been scanned so
// far. Partial sets carry no IDs; only the final set is addressable.
func (s *Session) snapshotText(query string, perFile [][]MatchResult, budget *matchBudget) *ResultSet {
	rs := &ResultSet{Query: query, Mode: ModeText, capacity: s.cfg.MaxResults}
	for _, matches := range perFile {
		rs.Matches = append(rs.Matches, matches...)
	}
	rs.Truncated = budget.capReached()
	rs.Displayed = min(s.cfg.InitialDisplay, rs.Len())
	return rs
}
