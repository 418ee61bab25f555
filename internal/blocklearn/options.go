// Package blocklearn implements BlockLearner and BranchBound
// (SPEC_FULL.md §4.4, §4.5): building simple and compound blocking
// predicates over a record sample, estimating their comparison cost,
// and searching for the cheapest predicate tuple that covers a
// recall target over a labelled match set.
package blocklearn

import "errors"

// ErrExhaustedCandidates mirrors SPEC_FULL.md §7. No function in this
// package returns it; the active learner's Pop returns its own
// activelearn.ErrExhaustedCandidates when its candidate pool is empty.
var ErrExhaustedCandidates = errors.New("blocklearn: no candidate predicates left")

// Options configures a BlockLearner.
type Options struct {
	// MaxCompoundLength bounds compound predicate arity (SPEC_FULL.md
	// §4.4 point 3: "up to length 2 (configurable)").
	MaxCompoundLength int
	// MaxCalls bounds BranchBound.search's recursion budget
	// (SPEC_FULL.md §4.5; default 2500).
	MaxCalls int
	// MaxComparisons is not read by BlockLearner, Learn or BranchBound:
	// the estimated comparison count of a returned predicate tuple is
	// not bounded by it, whatever its value (SPEC_FULL.md §5
	// "learner-level max_comparison").
	MaxComparisons int
}

// DefaultOptions returns the spec's defaults.
func DefaultOptions() Options {
	return Options{
		MaxCompoundLength: 2,
		MaxCalls:          2500,
	}
}

// Warning is OutOfPredicates (SPEC_FULL.md §7): non-fatal, communicated
// as a value rather than an error.
type Warning struct {
	Message string
}
