package activelearn

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/cognicore/blockrule/internal/blocklearn"
	"github.com/cognicore/blockrule/internal/distance"
	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/sample"
)

// ErrExhaustedCandidates mirrors SPEC_FULL.md §7: pop() called when
// the candidate pool is empty.
var ErrExhaustedCandidates = errors.New("activelearn: candidate pool is exhausted")

// Options configures a training session's sampling and search.
type Options struct {
	SampleSize        int     // total candidate pool size
	BlockedProportion float64 // fraction of SampleSize drawn from blocking
	MaxCompoundLength int
	MaxCalls          int
	Seed              int64
}

// DefaultOptions mirrors the spec's implicit defaults.
func DefaultOptions() Options {
	return Options{
		SampleSize:        1000,
		BlockedProportion: 0.5,
		MaxCompoundLength: 2,
		MaxCalls:          2500,
	}
}

// CandidatePool holds the unlabelled pairs a training session is
// choosing among, and their precomputed distance vectors.
type CandidatePool struct {
	pairs   []record.Pair
	vectors [][]float64
}

// BuildDedupePool samples candidate pairs for deduplication training:
// a blocked sample found via a random walk over the learner's
// predicates (pairs sharing any block key), and a random sample of
// uniform pair ids over the population, combined up to SampleSize
// (SPEC_FULL.md §4.7 "Sampling").
func BuildDedupePool(data sample.Set[record.Record], bl *blocklearn.BlockLearner, model *distance.Model, opts Options, rng *rand.Rand) *CandidatePool {
	blockedN := int(float64(opts.SampleSize) * opts.BlockedProportion)
	randomN := opts.SampleSize - blockedN

	pairs := blockedDedupeSample(data, bl, blockedN, rng)
	pairs = append(pairs, randomDedupeSample(data, randomN, rng)...)
	pairs = dedupePairs(pairs)

	return newPool(pairs, model)
}

// BuildRecordLinkPool mirrors BuildDedupePool for two-sided training.
func BuildRecordLinkPool(sideA, sideB sample.Set[record.Record], bl *blocklearn.BlockLearner, model *distance.Model, opts Options, rng *rand.Rand) *CandidatePool {
	blockedN := int(float64(opts.SampleSize) * opts.BlockedProportion)
	randomN := opts.SampleSize - blockedN

	pairs := blockedRecordLinkSample(sideA, sideB, bl, blockedN, rng)
	pairs = append(pairs, randomRecordLinkSample(sideA, sideB, randomN, rng)...)
	pairs = dedupePairs(pairs)

	return newPool(pairs, model)
}

func newPool(pairs []record.Pair, model *distance.Model) *CandidatePool {
	vectors := make([][]float64, len(pairs))
	for i, p := range pairs {
		vectors[i] = model.Compute(p.A, p.B)
	}
	return &CandidatePool{pairs: pairs, vectors: vectors}
}

// Len returns the number of remaining candidates.
func (c *CandidatePool) Len() int { return len(c.pairs) }

// Pair returns the pair at index i.
func (c *CandidatePool) Pair(i int) record.Pair { return c.pairs[i] }

// Vector returns the distance vector at index i.
func (c *CandidatePool) Vector(i int) []float64 { return c.vectors[i] }

// RemoveAt removes the candidate at index i.
func (c *CandidatePool) RemoveAt(i int) {
	c.pairs = append(c.pairs[:i], c.pairs[i+1:]...)
	c.vectors = append(c.vectors[:i], c.vectors[i+1:]...)
}

// Prepend inserts a pair and its distance vector at the front of the
// pool. DisagreementLearner.Seed does not use it: seed pairs go
// straight to the sub-learners as labelled rows.
func (c *CandidatePool) Prepend(pair record.Pair, vec []float64) {
	c.pairs = append([]record.Pair{pair}, c.pairs...)
	c.vectors = append([][]float64{vec}, c.vectors...)
}

func dedupePairs(pairs []record.Pair) []record.Pair {
	out := pairs[:0:0]
	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		key := pairKey(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}

func pairKey(p record.Pair) string {
	return sortedFieldString(p.A) + "\x00" + sortedFieldString(p.B)
}

func sortedFieldString(r record.Record) string {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	out := ""
	for _, f := range fields {
		out += f + "=" + cellString(r[f]) + ";"
	}
	return out
}

func cellString(c record.Cell) string {
	switch c.Kind() {
	case record.Text:
		return c.Text()
	case record.Set:
		s := ""
		for _, v := range c.Set() {
			s += v + ","
		}
		return s
	default:
		return ""
	}
}
