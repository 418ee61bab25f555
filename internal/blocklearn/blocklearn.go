package blocklearn

import (
	"sort"

	"github.com/cognicore/blockrule/internal/cover"
	"github.com/cognicore/blockrule/internal/fingerprint"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/sample"
)

// Strategy distinguishes dedupe (one record set, intra-set pairs) from
// record-link (two record sets, cross-set pairs) sampling — modelled
// as a value the learner holds rather than via inheritance
// (SPEC_FULL.md §9 "Mixin-based samplers").
type Strategy int

const (
	Dedupe Strategy = iota
	RecordLink
)

// BlockLearner builds simple and compound blocking predicates over a
// record sample, estimates their comparison cost, and (via Learn)
// searches for the cheapest tuple meeting a recall target.
type BlockLearner struct {
	opts     Options
	strategy Strategy
	fp       *fingerprint.Fingerprinter

	sideA sample.Set[record.Record]
	sideB sample.Set[record.Record] // RecordLink only

	predsByKey     map[cover.PredKey]*predicate.Predicate
	comparisonCost map[cover.PredKey]int // "comparison_count" of §4.4
}

// NewDedupe builds a learner for single-record-set deduplication.
func NewDedupe(preds []*predicate.Predicate, data sample.Set[record.Record], opts Options) *BlockLearner {
	bl := &BlockLearner{
		opts:       opts,
		strategy:   Dedupe,
		sideA:      data,
		predsByKey: make(map[cover.PredKey]*predicate.Predicate),
	}
	bl.fp = fingerprint.New(preds)
	bl.fp.IndexAll(data.Items)
	bl.build()
	return bl
}

// NewRecordLink builds a learner for two-record-set linkage.
func NewRecordLink(preds []*predicate.Predicate, sideA, sideB sample.Set[record.Record], opts Options) *BlockLearner {
	bl := &BlockLearner{
		opts:       opts,
		strategy:   RecordLink,
		sideA:      sideA,
		sideB:      sideB,
		predsByKey: make(map[cover.PredKey]*predicate.Predicate),
	}
	bl.fp = fingerprint.New(preds)
	bl.fp.IndexAllRecordLink(sideA.Items, sideB.Items)
	bl.build()
	return bl
}

// Fingerprinter exposes the learner's fingerprinter, e.g. for a
// DistanceModel.Check pre-flight pass run against the same records.
func (bl *BlockLearner) Fingerprinter() *fingerprint.Fingerprinter { return bl.fp }

func (bl *BlockLearner) build() {
	r := bl.scaleFactor()

	simples := make(map[cover.PredKey]cover.Counter)
	blockSize := make(map[cover.PredKey]int) // largest block size seen, per predicate

	enum := cover.NewEnumerator()

	if bl.strategy == Dedupe {
		bl.buildDedupeBlocks(enum, simples, blockSize)
	} else {
		bl.buildRecordLinkBlocks(enum, simples, blockSize)
	}

	n := bl.populationSize()
	for key := range simples {
		if blockSize[key] >= n {
			delete(simples, key)
		}
	}

	compounds := bl.buildCompounds(simples)
	for key, c := range compounds {
		simples[key] = c
	}

	bl.comparisonCost = make(map[cover.PredKey]int, len(simples))
	for key, c := range simples {
		bl.comparisonCost[key] = int(float64(c.Total()) * r)
	}
}

func (bl *BlockLearner) scaleFactor() float64 {
	if bl.strategy == Dedupe {
		return bl.sideA.ScaleFactor()
	}
	return bl.sideA.RatioFactor() * bl.sideB.RatioFactor()
}

func (bl *BlockLearner) populationSize() int {
	if bl.strategy == Dedupe {
		return bl.sideA.Len()
	}
	return bl.sideA.Len() * bl.sideB.Len()
}

// buildDedupeBlocks groups sample record indices by (predicate, key)
// and enumerates intra-block pairs.
func (bl *BlockLearner) buildDedupeBlocks(enum *cover.Enumerator, simples map[cover.PredKey]cover.Counter, blockSize map[cover.PredKey]int) {
	blocks := make(map[cover.PredKey]map[string][]int) // predicate key -> block key -> record ids
	for i, r := range bl.sideA.Items {
		out := bl.fp.Apply(r, false)
		for p, keys := range out {
			pk := cover.PredKey(p.Key())
			bl.predsByKey[pk] = p
			byBlock := blocks[pk]
			if byBlock == nil {
				byBlock = make(map[string][]int)
				blocks[pk] = byBlock
			}
			for _, k := range keys {
				byBlock[k] = append(byBlock[k], i)
			}
		}
	}

	for pk, byBlock := range blocks {
		counter := make(cover.Counter)
		maxBlock := 0
		for _, ids := range byBlock {
			if len(ids) > maxBlock {
				maxBlock = len(ids)
			}
			pairs := cover.EnumerateBlock(enum, ids)
			counter.Add(pairs)
		}
		simples[pk] = counter
		blockSize[pk] = maxBlock
	}
}

// buildRecordLinkBlocks mirrors buildDedupeBlocks for two sides,
// offsetting side B's ids so the shared Enumerator never confuses a
// (sideA=x, sideB=y) pair with a (sideA=y, sideB=x) pair (SPEC_FULL.md
// SUPPLEMENTED feature 4).
func (bl *BlockLearner) buildRecordLinkBlocks(enum *cover.Enumerator, simples map[cover.PredKey]cover.Counter, blockSize map[cover.PredKey]int) {
	offset := bl.sideA.Len()

	type blockPair struct {
		a, b []int
	}
	blocks := make(map[cover.PredKey]map[string]*blockPair)

	for i, r := range bl.sideA.Items {
		out := bl.fp.Apply(r, true)
		for p, keys := range out {
			pk := cover.PredKey(p.Key())
			bl.predsByKey[pk] = p
			byBlock := blocks[pk]
			if byBlock == nil {
				byBlock = make(map[string]*blockPair)
				blocks[pk] = byBlock
			}
			for _, k := range keys {
				bp := byBlock[k]
				if bp == nil {
					bp = &blockPair{}
					byBlock[k] = bp
				}
				bp.a = append(bp.a, i)
			}
		}
	}
	for i, r := range bl.sideB.Items {
		out := bl.fp.Apply(r, false)
		for p, keys := range out {
			pk := cover.PredKey(p.Key())
			bl.predsByKey[pk] = p
			byBlock := blocks[pk]
			if byBlock == nil {
				byBlock = make(map[string]*blockPair)
				blocks[pk] = byBlock
			}
			for _, k := range keys {
				bp := byBlock[k]
				if bp == nil {
					bp = &blockPair{}
					byBlock[k] = bp
				}
				bp.b = append(bp.b, i+offset)
			}
		}
	}

	for pk, byBlock := range blocks {
		counter := make(cover.Counter)
		maxBlock := 0
		for _, bp := range byBlock {
			if len(bp.a) == 0 || len(bp.b) == 0 {
				continue
			}
			if sz := len(bp.a) * len(bp.b); sz > maxBlock {
				maxBlock = sz
			}
			pairs := cover.EnumerateCrossBlock(enum, bp.a, bp.b)
			counter.Add(pairs)
		}
		simples[pk] = counter
		blockSize[pk] = maxBlock
	}
}

// buildCompounds generates compound candidates up to opts.MaxCompoundLength
// (arbitrary length, not just pairs) from the surviving simple
// predicates whose CompoundsWith relation permits pairing, multiplying
// component Counters across the whole combination. Subset enumeration
// is delegated to cover.SubsetsUpTo — the same combinatorial walk
// cover.Cover.Compound uses for Set-based covers — rather than
// reimplementing a k==2 special case here.
func (bl *BlockLearner) buildCompounds(simples map[cover.PredKey]cover.Counter) map[cover.PredKey]cover.Counter {
	maxLen := bl.opts.MaxCompoundLength
	if maxLen < 2 {
		return nil
	}

	var keys []cover.PredKey
	for k := range simples {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make(map[cover.PredKey]cover.Counter)
	for _, combo := range cover.SubsetsUpTo(keys, maxLen, bl.compoundCompatible) {
		counter := simples[combo[0]]
		for _, k := range combo[1:] {
			counter = counter.Multiply(simples[k])
		}
		if counter.Total() == 0 {
			continue
		}
		parts := make([]*predicate.Predicate, len(combo))
		for i, k := range combo {
			parts[i] = bl.predsByKey[k]
		}
		compound := predicate.NewCompound(parts...)
		compoundKey := cover.PredKey(compound.Key())
		bl.predsByKey[compoundKey] = compound
		out[compoundKey] = counter
	}
	return out
}

// compoundCompatible is the cover.Compatible predicate shared by
// buildCompounds and compoundDupeCover: two predicate keys may join a
// compound only if the predicates they name both allow it.
func (bl *BlockLearner) compoundCompatible(a, b cover.PredKey) bool {
	pa, oka := bl.predsByKey[a]
	pb, okb := bl.predsByKey[b]
	if !oka || !okb {
		return false
	}
	return pa.CompoundsWith(pb) && pb.CompoundsWith(pa)
}

// PredicateByKey looks a predicate (simple or compound) up by its
// stable string key, for callers holding a cover.PredKey.
func (bl *BlockLearner) PredicateByKey(key cover.PredKey) (*predicate.Predicate, bool) {
	if p, ok := bl.predsByKey[key]; ok {
		return p, true
	}
	return nil, false
}
