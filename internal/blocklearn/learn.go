package blocklearn

import (
	"math"

	"github.com/cognicore/blockrule/internal/cover"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
)

// Learn implements SPEC_FULL.md §4.4 learn(matches, recall): builds a
// fresh match-cover from the learner's candidate predicates and the
// labelled matches, compounds it, discards predicates absent from the
// cost estimate, drops dominated predicates, computes the recall
// epsilon (falling back to ε=0 with a Warning if too many matches are
// uncoverable by any predicate), and runs BranchBound to pick the
// cheapest tuple reaching the resulting target.
func (bl *BlockLearner) Learn(matches []record.Pair, recall float64) ([]*predicate.Predicate, *Warning, error) {
	dupeCover := bl.buildDupeCover(matches)
	dupeCover = bl.compoundDupeCover(dupeCover, bl.opts.MaxCompoundLength)

	known := make(map[cover.PredKey]bool, len(bl.comparisonCost))
	for k := range bl.comparisonCost {
		known[k] = true
	}
	dupeCover.IntersectionUpdate(known)

	survivors := dupeCover.Dominators(bl.comparisonCost)

	survivorCover := make(map[cover.PredKey]cover.Set, len(survivors))
	for _, k := range survivors {
		s, _ := dupeCover.Get(k)
		survivorCover[k] = s
	}

	coverable := make(cover.Set)
	for _, s := range survivorCover {
		for id := range s {
			coverable[id] = true
		}
	}

	uncoverable := 0
	for i := range matches {
		if !coverable[i] {
			uncoverable++
		}
	}

	eps := int(math.Floor((1 - recall) * float64(len(matches))))
	var warning *Warning
	if uncoverable > eps {
		warning = &Warning{Message: "fewer matches are coverable by any available predicate than the requested recall allows"}
		eps = 0
	} else {
		eps -= uncoverable
	}

	target := len(coverable) - eps

	bb := NewBranchBound(target, bl.opts.MaxCalls, bl.comparisonCost)
	resultKeys := bb.Search(survivorCover, nil)

	out := make([]*predicate.Predicate, 0, len(resultKeys))
	for _, k := range resultKeys {
		if p, ok := bl.predsByKey[k]; ok {
			out = append(out, p)
		}
	}
	return out, warning, nil
}

// buildDupeCover applies every non-compound candidate predicate to
// each labelled match pair, covering match index i iff the predicate's
// keys on the two sides intersect (SPEC_FULL.md §4.3 Cover construction,
// with target=true on the pair's second member per §4.2's Search call
// semantics, and ignored by canopy/non-indexed predicates).
func (bl *BlockLearner) buildDupeCover(matches []record.Pair) *cover.Cover {
	c := cover.New()
	for key, p := range bl.predsByKey {
		if p.IsCompound() {
			continue
		}
		ids := make(cover.Set)
		for i, pair := range matches {
			keysA, errA := p.Apply(pair.A, false)
			if errA != nil || len(keysA) == 0 {
				continue
			}
			keysB, errB := p.Apply(pair.B, true)
			if errB != nil || len(keysB) == 0 {
				continue
			}
			if intersects(keysA, keysB) {
				ids[i] = true
			}
		}
		c.Set(key, ids)
	}
	return c
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if set[k] {
			return true
		}
	}
	return false
}

// compoundDupeCover extends c with compounds (up to maxLen, arbitrary
// length) of its own keys whose CompoundsWith relation permits
// pairing. Registers each surviving combination's compound predicate
// in predsByKey, then delegates the actual subset enumeration and
// cover-intersection to cover.Cover.Compound rather than
// reimplementing it here.
func (bl *BlockLearner) compoundDupeCover(c *cover.Cover, maxLen int) *cover.Cover {
	if maxLen < 2 {
		return c
	}

	for _, combo := range cover.SubsetsUpTo(c.Keys(), maxLen, bl.compoundCompatible) {
		parts := make([]*predicate.Predicate, len(combo))
		for i, k := range combo {
			parts[i] = bl.predsByKey[k]
		}
		compound := predicate.NewCompound(parts...)
		ck := cover.PredKey(compound.Key())
		bl.predsByKey[ck] = compound
	}

	return c.Compound(maxLen, bl.compoundCompatible)
}
