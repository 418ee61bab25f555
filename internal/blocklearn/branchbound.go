package blocklearn

import (
	"sort"

	"github.com/cognicore/blockrule/internal/cover"
)

// BranchBound implements SPEC_FULL.md §4.5: a branch-and-bound search
// for the cheapest predicate tuple whose union cover reaches a target
// size, bounded by a call budget.
type BranchBound struct {
	target   int
	maxCalls int

	calls int
	first bool

	originalCover map[cover.PredKey]cover.Set
	cost          map[cover.PredKey]int

	cheapest      []cover.PredKey
	cheapestScore int
}

// NewBranchBound returns a BranchBound ready to Search.
func NewBranchBound(target, maxCalls int, cost map[cover.PredKey]int) *BranchBound {
	return &BranchBound{
		target:   target,
		maxCalls: maxCalls,
		calls:    maxCalls,
		first:    true,
		cost:     cost,
	}
}

// Search runs the branch-and-bound procedure over candidates (a
// predicate key -> not-yet-covered-ids cover, reduced incrementally as
// predicates are chosen) starting from partial, returning the cheapest
// predicate tuple found within the call budget.
func (bb *BranchBound) Search(candidates map[cover.PredKey]cover.Set, partial []cover.PredKey) []cover.PredKey {
	if bb.calls <= 0 {
		return bb.cheapest
	}
	if bb.first {
		bb.originalCover = candidates
		bb.cheapest = sortedKeys(candidates)
		bb.cheapestScore = bb.sumCost(bb.cheapest)
		bb.first = false
	}
	bb.calls--

	covered := bb.unionOriginal(partial)
	score := bb.sumCost(partial)

	if len(covered) >= bb.target && score < bb.cheapestScore {
		bb.cheapest = append([]cover.PredKey(nil), partial...)
		bb.cheapestScore = score
		return bb.cheapest
	}

	window := bb.cheapestScore - score
	restricted := make(map[cover.PredKey]cover.Set)
	for p, c := range candidates {
		if bb.cost[p] < window {
			restricted[p] = c
		}
	}

	reachable := len(bb.unionValues(restricted)) + len(covered)
	if len(restricted) == 0 || reachable < bb.target {
		return bb.cheapest
	}

	best := bb.argmaxBest(restricted)
	bestCov := restricted[best]

	includeCandidates := make(map[cover.PredKey]cover.Set)
	for p, c := range restricted {
		if p == best {
			continue
		}
		diff := minus(c, bestCov)
		if len(diff) > 0 {
			includeCandidates[p] = diff
		}
	}
	bb.Search(includeCandidates, append(append([]cover.PredKey(nil), partial...), best))

	excludeCandidates := bb.removeDominated(restricted, best)
	delete(excludeCandidates, best)
	bb.Search(excludeCandidates, partial)

	return bb.cheapest
}

func (bb *BranchBound) sumCost(keys []cover.PredKey) int {
	total := 0
	for _, k := range keys {
		total += bb.cost[k]
	}
	return total
}

func (bb *BranchBound) unionOriginal(keys []cover.PredKey) cover.Set {
	out := make(cover.Set)
	for _, k := range keys {
		for id := range bb.originalCover[k] {
			out[id] = true
		}
	}
	return out
}

func (bb *BranchBound) unionValues(candidates map[cover.PredKey]cover.Set) cover.Set {
	out := make(cover.Set)
	for _, c := range candidates {
		for id := range c {
			out[id] = true
		}
	}
	return out
}

// argmaxBest selects the predicate maximising (|cover|, -cost), with
// ties broken by key string (SPEC_FULL.md §4.5 "Determinism").
func (bb *BranchBound) argmaxBest(candidates map[cover.PredKey]cover.Set) cover.PredKey {
	keys := make([]cover.PredKey, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := len(candidates[keys[i]]), len(candidates[keys[j]])
		if ci != cj {
			return ci > cj
		}
		costi, costj := bb.cost[keys[i]], bb.cost[keys[j]]
		if costi != costj {
			return costi < costj
		}
		return keys[i] < keys[j]
	})
	return keys[0]
}

// removeDominated drops every predicate p (other than best) whose
// cover is a subset of best's and whose cost is no lower than best's
// (SPEC_FULL.md §4.5 step 6, exclude branch).
func (bb *BranchBound) removeDominated(candidates map[cover.PredKey]cover.Set, best cover.PredKey) map[cover.PredKey]cover.Set {
	bestCost := bb.cost[best]
	bestCov := candidates[best]
	out := make(map[cover.PredKey]cover.Set, len(candidates))
	for p, c := range candidates {
		if p != best && bestCost <= bb.cost[p] && supersetOf(bestCov, c) {
			continue
		}
		out[p] = c
	}
	return out
}

func supersetOf(s, sub cover.Set) bool {
	if len(s) < len(sub) {
		return false
	}
	for id := range sub {
		if !s[id] {
			return false
		}
	}
	return true
}

func minus(a, b cover.Set) cover.Set {
	out := make(cover.Set)
	for id := range a {
		if !b[id] {
			out[id] = true
		}
	}
	return out
}

func sortedKeys(candidates map[cover.PredKey]cover.Set) []cover.PredKey {
	out := make([]cover.PredKey, 0, len(candidates))
	for k := range candidates {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
