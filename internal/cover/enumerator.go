// Package cover implements the pair-enumeration and coverage-counting
// data structures BlockLearner and BranchBound operate over:
// Enumerator (stable pair ids), Counter (a pair-id multiset with
// commutative multiplication), and Cover (predicate -> set-of-pair-ids,
// with compound/dominator/intersection operations).
package cover

import "sort"

// Enumerator assigns each unordered pair of record ids a stable
// integer id: (a, b) and (b, a) share one id, and ids are handed out
// in order of first request, so the numbering depends on the order in
// which pairs are first presented (SPEC_FULL.md §5).
type Enumerator struct {
	ids map[[2]int]int
}

// NewEnumerator returns an empty Enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{ids: make(map[[2]int]int)}
}

// PairID returns the stable id for the unordered pair (a, b), creating
// one on first use. IDs are assigned in order of first request, so
// callers that want determinism must present pairs in a deterministic
// order themselves (sort record/block ids before enumerating).
func (e *Enumerator) PairID(a, b int) int {
	key := orderedKey(a, b)
	if id, ok := e.ids[key]; ok {
		return id
	}
	id := len(e.ids)
	e.ids[key] = id
	return id
}

func orderedKey(a, b int) [2]int {
	if a <= b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

// Len returns the number of distinct pairs enumerated so far.
func (e *Enumerator) Len() int { return len(e.ids) }

// Pairs returns every (recordA, recordB, pairID) triple enumerated so
// far, sorted by pairID — used by BlockLearner to look pair ids back
// up to the records they denote when reporting results.
func (e *Enumerator) Pairs() [][3]int {
	out := make([][3]int, 0, len(e.ids))
	for k, id := range e.ids {
		out = append(out, [3]int{k[0], k[1], id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][2] < out[j][2] })
	return out
}

// EnumerateBlock enumerates every unordered pair within a single block
// of record ids (dedupe training) into e, after sorting ids so the
// resulting pair-id assignment is independent of block-membership
// discovery order.
func EnumerateBlock(e *Enumerator, ids []int) []int {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	var out []int
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			out = append(out, e.PairID(sorted[i], sorted[j]))
		}
	}
	return out
}

// EnumerateCrossBlock enumerates the cross product of two id lists
// (record-link training: one block's members from each side), with
// both lists sorted first for determinism.
func EnumerateCrossBlock(e *Enumerator, idsA, idsB []int) []int {
	sortedA := append([]int(nil), idsA...)
	sortedB := append([]int(nil), idsB...)
	sort.Ints(sortedA)
	sort.Ints(sortedB)
	var out []int
	for _, a := range sortedA {
		for _, b := range sortedB {
			out = append(out, e.PairID(a, b))
		}
	}
	return out
}
