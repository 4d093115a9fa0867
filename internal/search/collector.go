package search

import "container/heap"

// topCollector keeps the best limit scored candidates seen so far. A min-heap
// ordered worst-first makes the current cutoff O(1) to inspect and replacement
// O(log n), so ranking a large tree never holds more than limit entries.
type topCollector struct {
	limit   int
	heap    scoredHeap
	dropped bool
}

func newTopCollector(limit int) *topCollector {
	if limit <= 0 {
		limit = defaultMaxResults
	}
	return &topCollector{limit: limit, heap: make(scoredHeap, 0, limit)}
}

func (c *topCollector) add(sc ScoredCandidate) {
	if c.heap.Len() < c.limit {
		heap.Push(&c.heap, sc)
		return
	}
	c.dropped = true
	if compareScored(sc, c.heap[0]) < 0 {
		c.heap[0] = sc
		heap.Fix(&c.heap, 0)
	}
}

// results drains the heap, best candidate first. The collector is spent
// afterwards.
func (c *topCollector) results() []ScoredCandidate {
	out := make([]ScoredCandidate, c.heap.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&c.heap).(ScoredCandidate)
	}
	return out
}

// truncated reports whether any candidate was discarded for lack of room.
func (c *topCollector) truncated() bool {
	return c.dropped
}

// RankTop scores candidates against query and returns at most limit of them,
// best first, plus whether anything was cut for lack of room. An empty query
// keeps the candidates' original order.
func (fm *FuzzyMatcher) RankTop(candidates []Candidate, query string, limit int) ([]ScoredCandidate, bool) {
	coll := newTopCollector(limit)
	for i, c := range candidates {
		sc := ScoredCandidate{Candidate: c, InputOrder: i}
		if query != "" {
			score, indices, ok := fm.Match(query, searchableString(c))
			if !ok {
				continue
			}
			sc.Score = score
			sc.Indices = indices
		}
		coll.add(sc)
	}
	return coll.results(), coll.truncated()
}

// scoredHeap is a min-heap where the root is the worst surviving candidate.
type scoredHeap []ScoredCandidate

func (h scoredHeap) Len() int           { return len(h) }
func (h scoredHeap) Less(i, j int) bool { return compareScored(h[i], h[j]) > 0 }
func (h scoredHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scoredHeap) Push(x any) {
	*h = append(*h, x.(ScoredCandidate))
}

func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	sc := old[n-1]
	*h = old[:n-1]
	return sc
}
