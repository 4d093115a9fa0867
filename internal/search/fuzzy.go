package search

import (
	"sort"
	"unicode"
)

// FuzzyMatcher scores candidate strings against a query with a three-tier
// fallback: exact substring, best consecutive partial match, then a bounded
// backtracking subsequence search. Tiers 1 and 2 cover almost all real
// queries cheaply; the backtracking tier only runs for abbreviation-style
// queries the cheap tiers cannot place.
//
// Scores are unnormalized and only comparable within one ranking pass.
type FuzzyMatcher struct {
	substringBase    float64
	consecutiveBase  float64
	charBonus        float64
	positionBonus    float64
	positionDecay    float64
	runWeight        float64
	boundaryBonus    float64
	camelBonus       float64
	consecutiveBonus float64
	spanPenalty      float64
	gapPenalty       float64
	gapPenaltyCap    float64
	indexPenalty     float64

	maxStartOffsets int
	backtrackBudget int
}

// NewFuzzyMatcher creates a matcher with default tuning.
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{
		substringBase:    100.0,
		consecutiveBase:  40.0,
		charBonus:        4.0,
		positionBonus:    10.0,
		positionDecay:    0.5,
		runWeight:        6.0,
		boundaryBonus:    8.0,
		camelBonus:       6.0,
		consecutiveBonus: 5.0,
		spanPenalty:      0.5,
		gapPenalty:       1.0,
		gapPenaltyCap:    10.0,
		indexPenalty:     0.05,
		maxStartOffsets:  16,
		backtrackBudget:  10000,
	}
}

// Match scores query against text (the candidate's searchable string in its
// original casing; comparison is case-insensitive). The returned indices are
// strictly increasing rune offsets into text, one per query rune. An empty
// query matches everything with score 0 and no indices.
func (fm *FuzzyMatcher) Match(query, text string) (score float64, indices []int, ok bool) {
	if query == "" {
		return 0, nil, true
	}

	textRunes := []rune(text)
	folded := foldRunes(textRunes)
	queryRunes := foldRunes([]rune(query))
	if len(queryRunes) > len(folded) {
		return 0, nil, false
	}

	if idx := runeIndex(folded, queryRunes); idx >= 0 {
		return fm.substringScore(idx, len(queryRunes))
	}
	if score, indices, ok := fm.bestConsecutive(queryRunes, folded, textRunes); ok {
		return score, indices, true
	}
	return fm.backtrackMatch(queryRunes, folded, textRunes)
}

// Rank scores all candidates and returns them sorted descending by score,
// ties broken by original candidate order. An empty query is a pass-through:
// every candidate, score 0, original order.
func (fm *FuzzyMatcher) Rank(candidates []Candidate, query string) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))

	if query == "" {
		for i, c := range candidates {
			scored = append(scored, ScoredCandidate{Candidate: c, InputOrder: i})
		}
		return scored
	}

	for i, c := range candidates {
		score, indices, ok := fm.Match(query, searchableString(c))
		if !ok {
			continue
		}
		scored = append(scored, ScoredCandidate{
			Candidate:  c,
			Score:      score,
			Indices:    indices,
			InputOrder: i,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return compareScored(scored[i], scored[j]) < 0
	})
	return scored
}

// searchableString is what the ranker sees for a candidate: display name and
// relative path, space-joined. Matched indices point into this string.
func searchableString(c Candidate) string {
	if c.RelPath == "" || c.RelPath == c.Name {
		return c.Name
	}
	return c.Name + " " + c.RelPath
}

// Tier 1: the full query appears verbatim.
func (fm *FuzzyMatcher) substringScore(start, queryLen int) (float64, []int, bool) {
	score := fm.substringBase + fm.charBonus*float64(queryLen) + fm.positionTerm(start)
	indices := make([]int, queryLen)
	for i := range indices {
		indices[i] = start + i
	}
	return score, indices, true
}

// Tier 2: from each candidate start offset, greedily consume query runes in
// order while tracking the longest consecutive run. A start qualifies only
// when every query rune is eventually matched. The scan is bounded to the
// first maxStartOffsets qualifying-first-rune offsets; text beyond that is
// the backtracking tier's problem.
func (fm *FuzzyMatcher) bestConsecutive(query, folded, text []rune) (float64, []int, bool) {
	var (
		bestScore   float64
		bestIndices []int
	)

	starts := 0
	for start := 0; start <= len(folded)-len(query); start++ {
		if folded[start] != query[0] {
			continue
		}
		starts++
		if starts > fm.maxStartOffsets {
			break
		}

		indices := make([]int, 0, len(query))
		qi := 0
		longest := 0
		run := 0
		prev := -2
		for j := start; j < len(folded) && qi < len(query); j++ {
			if folded[j] != query[qi] {
				continue
			}
			if j == prev+1 {
				run++
			} else {
				run = 1
			}
			if run > longest {
				longest = run
			}
			indices = append(indices, j)
			prev = j
			qi++
		}
		if qi < len(query) {
			continue
		}

		span := indices[len(indices)-1] - start + 1
		score := fm.consecutiveBase +
			fm.runWeight*float64(longest) +
			fm.positionTerm(start) -
			fm.spanPenalty*float64(span)
		if isWordBoundary(text, start) {
			score += fm.boundaryBonus
		}

		if bestIndices == nil || score > bestScore {
			bestScore = score
			bestIndices = indices
		}
	}

	if bestIndices == nil {
		return 0, nil, false
	}
	return bestScore, bestIndices, true
}

// Tier 3: bounded backtracking subsequence search. Explores alternative
// positions per query rune and keeps the best-scoring complete ordering
// found before the iteration budget runs out. No complete ordering: no match.
func (fm *FuzzyMatcher) backtrackMatch(query, folded, text []rune) (float64, []int, bool) {
	bt := &backtracker{fm: fm, query: query, folded: folded, text: text}
	bt.explore(0, 0, 0, nil, -2)
	if bt.best == nil {
		return 0, nil, false
	}
	return bt.bestScore, bt.best, true
}

type backtracker struct {
	fm     *FuzzyMatcher
	query  []rune
	folded []rune
	text   []rune

	steps     int
	best      []int
	bestScore float64
}

func (bt *backtracker) explore(qi, from int, score float64, indices []int, prev int) {
	if qi == len(bt.query) {
		if bt.best == nil || score > bt.bestScore {
			bt.best = append([]int(nil), indices...)
			bt.bestScore = score
		}
		return
	}

	for j := from; j < len(bt.folded); j++ {
		if len(bt.folded)-j < len(bt.query)-qi {
			return
		}
		if bt.steps >= bt.fm.backtrackBudget {
			return
		}
		if bt.folded[j] != bt.query[qi] {
			continue
		}
		bt.steps++

		charScore := bt.fm.charBonus
		if isWordBoundary(bt.text, j) {
			charScore += bt.fm.boundaryBonus
		}
		if isCamelBoundary(bt.text, j) {
			charScore += bt.fm.camelBonus
		}
		if j == prev+1 {
			charScore += bt.fm.consecutiveBonus
		} else if prev >= 0 {
			gap := bt.fm.gapPenalty * float64(j-prev-1)
			if gap > bt.fm.gapPenaltyCap {
				gap = bt.fm.gapPenaltyCap
			}
			charScore -= gap
		}
		charScore -= bt.fm.indexPenalty * float64(j)

		bt.explore(qi+1, j+1, score+charScore, append(indices[:len(indices):len(indices)], j), j)
	}
}

func (fm *FuzzyMatcher) positionTerm(start int) float64 {
	term := fm.positionBonus - fm.positionDecay*float64(start)
	if term < 0 {
		return 0
	}
	return term
}

// compareScored orders by score descending, then original candidate order.
// Negative result means a sorts before b.
func compareScored(a, b ScoredCandidate) int {
	const epsilon = 1e-9
	diff := a.Score - b.Score
	if diff > epsilon {
		return -1
	}
	if diff < -epsilon {
		return 1
	}
	switch {
	case a.InputOrder < b.InputOrder:
		return -1
	case a.InputOrder > b.InputOrder:
		return 1
	default:
		return 0
	}
}

func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	if len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i <= len(haystack)-len(needle); i++ {
		if haystack[i] != needle[0] {
			continue
		}
		for j := 1; j < len(needle); j++ {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// isWordBoundary reports whether text[idx] starts a word: position 0, a
// letter after a separator or non-letter, or a case transition.
func isWordBoundary(text []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx < 0 || idx >= len(text) {
		return false
	}
	prev := text[idx-1]
	switch prev {
	case '/', '\\', '-', '_', ' ', '.', ':':
		return true
	}
	curr := text[idx]
	if !unicode.IsLetter(prev) && unicode.IsLetter(curr) {
		return true
	}
	return isCamelBoundary(text, idx)
}

// isCamelBoundary reports a lowercase-then-uppercase transition at idx.
func isCamelBoundary(text []rune, idx int) bool {
	if idx <= 0 || idx >= len(text) {
		return false
	}
	return unicode.IsLower(text[idx-1]) && unicode.IsUpper(text[idx])
}

// hasUpper reports whether s contains an uppercase rune; used for smart-case.
func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
