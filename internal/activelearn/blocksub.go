package activelearn

import (
	"github.com/cognicore/blockrule/internal/blocklearn"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
)

// blockSubLearnerRecall is the recall target BlockSubLearner asks its
// BlockLearner for on every refit. The disagreement loop never varies
// it — only the final learn_predicates(recall, ...) call (§4.7) uses a
// caller-chosen recall — so a fixed high value keeps the sub-learner
// conservative (prefers rules that cover nearly everything labelled a
// match so far) without exposing another knob mid-session.
const blockSubLearnerRecall = 0.95

// BlockSubLearner is the active learner's second sub-learner
// (SPEC_FULL.md §4.7): it re-derives a blocking rule set from the
// matches labelled so far, and scores a candidate pair 1 iff any
// current rule covers it, 0 otherwise.
type BlockSubLearner struct {
	bl    *blocklearn.BlockLearner
	rules []*predicate.Predicate

	matches []record.Pair
}

// NewBlockSubLearner wraps an already-constructed BlockLearner (over
// the full training sample) whose rule set will be refit as matches
// accumulate.
func NewBlockSubLearner(bl *blocklearn.BlockLearner) *BlockSubLearner {
	return &BlockSubLearner{bl: bl}
}

// Fit appends newly labelled positive pairs to the accumulated match
// set and re-derives the rule set.
func (b *BlockSubLearner) Fit(pairs []record.Pair, labels []float64) {
	for i, p := range pairs {
		if labels[i] >= 0.5 {
			b.matches = append(b.matches, p)
		}
	}
	if len(b.matches) == 0 {
		b.rules = nil
		return
	}
	rules, _, err := b.bl.Learn(b.matches, blockSubLearnerRecall)
	if err != nil {
		return
	}
	b.rules = rules
}

// Score returns 1.0 if any current rule covers pair, else 0.0.
func (b *BlockSubLearner) Score(pair record.Pair) float64 {
	for _, rule := range b.rules {
		keysA, err := rule.Apply(pair.A, false)
		if err != nil || len(keysA) == 0 {
			continue
		}
		keysB, err := rule.Apply(pair.B, true)
		if err != nil || len(keysB) == 0 {
			continue
		}
		if sharesKey(keysA, keysB) {
			return 1.0
		}
	}
	return 0.0
}

// Rules returns the current rule set, e.g. for learn_predicates to
// return directly once a session concludes.
func (b *BlockSubLearner) Rules() []*predicate.Predicate { return b.rules }

func sharesKey(a, b []string) bool {
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
