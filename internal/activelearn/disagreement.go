package activelearn

import (
	"math"
	"math/rand"

	"github.com/cognicore/blockrule/internal/blocklearn"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
)

// DisagreementLearner is the training session of SPEC_FULL.md §4.7: a
// CandidatePool, a precomputed distance matrix for it, and two
// sub-learners whose disagreement drives pop()'s selection.
type DisagreementLearner struct {
	pool   *CandidatePool
	reg    *RegressionLearner
	block  *BlockSubLearner
	bl     *blocklearn.BlockLearner
	rng    *rand.Rand

	labelledPairs   []record.Pair
	labelledVectors [][]float64
	labels          []float64
}

// New builds a DisagreementLearner over pool, the dimension of its
// distance vectors, and the BlockLearner the BlockSubLearner refits
// against.
func New(pool *CandidatePool, dim int, bl *blocklearn.BlockLearner, rng *rand.Rand) *DisagreementLearner {
	return &DisagreementLearner{
		pool:  pool,
		reg:   NewRegressionLearner(dim),
		block: NewBlockSubLearner(bl),
		bl:    bl,
		rng:   rng,
	}
}

// Seed injects the original's exact-match / random-pair priming pairs
// (SPEC_FULL.md SUPPLEMENTED feature 2): four copies of an exact
// self-match pair labelled positive, and one randomly chosen candidate
// labelled negative — reproducing the 4-positive/1-negative seed ratio
// verbatim rather than a single pair of each.
func (d *DisagreementLearner) Seed(selfMatch record.Pair, selfMatchVector []float64) {
	pairs := make([]record.Pair, 0, 5)
	vectors := make([][]float64, 0, 5)
	labels := make([]float64, 0, 5)
	for i := 0; i < 4; i++ {
		pairs = append(pairs, selfMatch)
		vectors = append(vectors, selfMatchVector)
		labels = append(labels, 1.0)
	}
	if d.pool.Len() > 0 {
		idx := d.rng.Intn(d.pool.Len())
		pairs = append(pairs, d.pool.Pair(idx))
		vectors = append(vectors, d.pool.Vector(idx))
		labels = append(labels, 0.0)
		d.pool.RemoveAt(idx)
	}
	d.mark(pairs, vectors, labels)
}

// Pop selects and removes one pair from the candidate pool, per §4.7
// `pop()` (spec.md:179: "remove that row from both sub-learners and
// from the candidate list"). The original keeps a candidate-indexed
// score cache per sub-learner, so popping a row there means trimming
// that cache to keep indices aligned with the shrinking candidate
// list. Neither RegressionLearner.Score nor BlockSubLearner.Score
// caches anything keyed by candidate-pool position — both recompute
// directly from the popped pair's vector/records against the
// currently fitted model — so there is no pool-indexed row in either
// sub-learner to keep in sync; removing the pair from d.pool (below)
// is the whole of it.
func (d *DisagreementLearner) Pop() (record.Pair, error) {
	if d.pool.Len() == 0 {
		return record.Pair{}, ErrExhaustedCandidates
	}

	n := d.pool.Len()
	regScores := make([]float64, n)
	blockScores := make([]float64, n)
	for i := 0; i < n; i++ {
		regScores[i] = d.reg.Score(d.pool.Vector(i))
		blockScores[i] = d.block.Score(d.pool.Pair(i))
	}

	var disagreement []int
	for i := 0; i < n; i++ {
		if (regScores[i] > 0.5) != (blockScores[i] > 0.5) {
			disagreement = append(disagreement, i)
		}
	}

	var chosen int
	if len(disagreement) > 0 {
		u := d.rng.Float64()
		best := disagreement[0]
		bestVal := regScores[best] - u
		for _, i := range disagreement[1:] {
			v := regScores[i] - u
			if v > bestVal {
				bestVal = v
				best = i
			}
		}
		chosen = best
	} else {
		chosen = argmaxStdDiff(regScores, blockScores)
	}

	pair := d.pool.Pair(chosen)
	d.pool.RemoveAt(chosen)
	return pair, nil
}

// argmaxStdDiff picks the index maximising the two-sample standard
// deviation of (reg[i], block[i]) — with two values this is equivalent
// to maximising their absolute difference — reproducing the spec's
// "argmax std(scores, axis=1)" fallback when no pair disagrees on the
// 0.5 threshold.
func argmaxStdDiff(reg, block []float64) int {
	best := 0
	bestDiff := math.Abs(reg[0] - block[0])
	for i := 1; i < len(reg); i++ {
		diff := math.Abs(reg[i] - block[i])
		if diff > bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

// Mark appends newly labelled pairs (label 1.0 = match, 0.0 = distinct)
// to the accumulated training data and refits both sub-learners, per
// §4.7 `mark(pairs, labels)`. Callers label pairs previously returned
// by Pop, passing each pair's precomputed distance vector alongside
// (the session's distance.Model.Compute output for that pair).
func (d *DisagreementLearner) Mark(pairs []record.Pair, vectors [][]float64, labels []float64) {
	d.mark(pairs, vectors, labels)
}

func (d *DisagreementLearner) mark(pairs []record.Pair, vectors [][]float64, labels []float64) {
	d.labelledPairs = append(d.labelledPairs, pairs...)
	d.labelledVectors = append(d.labelledVectors, vectors...)
	d.labels = append(d.labels, labels...)
	d.reg.Fit(vectors, labels)
	d.block.Fit(pairs, labels)
}

// LearnPredicates returns the final rule set via BlockLearner.Learn
// over the matches accumulated so far (§4.7 `learn_predicates`).
// indexPredicates=false restricts the returned rules to non-indexed
// predicates by filtering the returned tuple — BlockLearner's
// construction-time candidate set is fixed once built; a caller that
// truly needs a non-indexed-only search should construct a second
// BlockLearner without index predicates and call LearnPredicates
// against it instead.
func (d *DisagreementLearner) LearnPredicates(recall float64, indexPredicates bool) ([]*predicate.Predicate, *blocklearn.Warning, error) {
	matches := make([]record.Pair, 0, len(d.labels))
	for i, l := range d.labels {
		if l >= 0.5 {
			matches = append(matches, d.labelledPairs[i])
		}
	}
	rules, warning, err := d.bl.Learn(matches, recall)
	if err != nil || indexPredicates {
		return rules, warning, err
	}
	nonIndexed := rules[:0]
	for _, p := range rules {
		if !containsIndexed(p) {
			nonIndexed = append(nonIndexed, p)
		}
	}
	return nonIndexed, warning, nil
}

func containsIndexed(p *predicate.Predicate) bool {
	if p.IsIndexed() {
		return true
	}
	for _, c := range p.Components() {
		if containsIndexed(c) {
			return true
		}
	}
	return false
}
