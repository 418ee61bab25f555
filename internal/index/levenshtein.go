package index

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/cognicore/blockrule/internal/textnorm"
)

// editOptions is shared across calls; agext/levenshtein's Options
// carries per-operation costs we leave at their defaults (uniform
// insert/delete/substitute cost of 1).
var editOptions = levenshtein.NewOptions()

const gramSize = 2

// LevenshteinIndex is the edit-distance neighborhood index of
// SPEC_FULL.md §3: `index(values)` assigns stable doc ids;
// `search(query, threshold)` returns every indexed doc whose
// normalised edit-distance similarity to query is >= threshold.
//
// Candidate generation adapts the teacher's q-gram posting-list
// machinery (pkg/qgram/candidates.go): rather than intersecting
// postings to require every gram present (exact multi-term search),
// we take the UNION of docs sharing any gram with the query, then
// verify with exact edit distance — a fuzzy-match candidate only
// needs to share *some* grams with the query, not all of them.
type LevenshteinIndex struct {
	docs     []string
	docToID  map[string]int
	postings map[string][]int // gram -> doc ids containing it
}

// NewLevenshteinIndex returns an empty index.
func NewLevenshteinIndex() *LevenshteinIndex {
	return &LevenshteinIndex{
		docToID:  make(map[string]int),
		postings: make(map[string][]int),
	}
}

// Index assigns a stable doc id to every distinct value not already
// indexed, in sorted order (SPEC_FULL.md §5 requires Cover/Counter
// construction to be reproducible regardless of traversal order; a
// deterministic assignment order is part of that).
func (idx *LevenshteinIndex) Index(values []string) {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	for _, v := range sorted {
		idx.indexOne(v)
	}
}

func (idx *LevenshteinIndex) indexOne(v string) int {
	if id, ok := idx.docToID[v]; ok {
		return id
	}
	id := len(idx.docs)
	idx.docs = append(idx.docs, v)
	idx.docToID[v] = id
	for _, g := range grams(v) {
		idx.postings[g] = append(idx.postings[g], id)
	}
	return id
}

// Unindex removes values from the index; any canopy/search predicate
// holding a cached result for them is unaffected (caches are frozen
// independently of index state).
func (idx *LevenshteinIndex) Unindex(values []string) {
	for _, v := range values {
		id, ok := idx.docToID[v]
		if !ok {
			continue
		}
		delete(idx.docToID, v)
		idx.docs[id] = ""
		for _, g := range grams(v) {
			idx.postings[g] = removeID(idx.postings[g], id)
		}
	}
}

func removeID(ids []int, target int) []int {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func grams(s string) []string {
	stripped := strings.ReplaceAll(s, " ", "")
	g := textnorm.NGrams(stripped, gramSize)
	if len(g) == 0 && stripped != "" {
		return []string{stripped}
	}
	return g
}

// DocToID implements predicate.Index.
func (idx *LevenshteinIndex) DocToID(doc string) (int, bool) {
	id, ok := idx.docToID[doc]
	return id, ok
}

// Search implements predicate.Index: normalised similarity, 1 minus
// edit distance over the longer string's length, thresholded.
func (idx *LevenshteinIndex) Search(doc string, threshold float64) []int {
	candidates := idx.candidateIDs(doc)

	out := make([]int, 0, len(candidates))
	for id := range candidates {
		other := idx.docs[id]
		if other == "" {
			continue
		}
		if similarity(doc, other) >= threshold {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

func (idx *LevenshteinIndex) candidateIDs(doc string) map[int]bool {
	g := grams(doc)
	if len(g) == 0 {
		all := make(map[int]bool, len(idx.docs))
		for id := range idx.docs {
			all[id] = true
		}
		return all
	}

	candidates := make(map[int]bool)
	for _, gram := range g {
		for _, id := range idx.postings[gram] {
			candidates[id] = true
		}
	}
	return candidates
}

func similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, editOptions)
}
