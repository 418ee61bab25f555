package activelearn

import (
	"math/rand"

	"github.com/cognicore/blockrule/internal/blocklearn"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/sample"
)

// blockedDedupeSample implements SPEC_FULL.md §4.7's "random walk over
// predicates to find record pairs that share any block key": pick a
// random predicate and a random record, collect the keys that
// predicate produces for it, then pick a uniformly random other record
// sharing one of those keys.
func blockedDedupeSample(data sample.Set[record.Record], bl *blocklearn.BlockLearner, n int, rng *rand.Rand) []record.Pair {
	items := data.Items
	if len(items) < 2 || n <= 0 {
		return nil
	}
	preds := bl.Fingerprinter().Predicates()
	if len(preds) == 0 {
		return nil
	}

	var out []record.Pair
	for attempts, found := 0, 0; found < n && attempts < n*20; attempts++ {
		p := preds[rng.Intn(len(preds))]
		i := rng.Intn(len(items))
		keys, err := p.Apply(items[i], false)
		if err != nil || len(keys) == 0 {
			continue
		}
		want := keys[rng.Intn(len(keys))]

		j := findSharingRecord(items, p, want, i, rng)
		if j < 0 {
			continue
		}
		out = append(out, record.Pair{A: items[i], B: items[j]})
		found++
	}
	return out
}

func findSharingRecord(items []record.Record, p *predicate.Predicate, want string, exclude int, rng *rand.Rand) int {
	start := rng.Intn(len(items))
	for step := 0; step < len(items); step++ {
		j := (start + step) % len(items)
		if j == exclude {
			continue
		}
		keys, err := p.Apply(items[j], false)
		if err != nil {
			continue
		}
		for _, k := range keys {
			if k == want {
				return j
			}
		}
	}
	return -1
}

// randomDedupeSample draws n uniform random pairs of distinct indices
// from data.Items, the drawn sample; records of the population that
// are not in Items are never drawn, and OriginalLength is not read.
func randomDedupeSample(data sample.Set[record.Record], n int, rng *rand.Rand) []record.Pair {
	items := data.Items
	if len(items) < 2 || n <= 0 {
		return nil
	}
	out := make([]record.Pair, 0, n)
	for k := 0; k < n; k++ {
		i := rng.Intn(len(items))
		j := rng.Intn(len(items))
		for j == i {
			j = rng.Intn(len(items))
		}
		out = append(out, record.Pair{A: items[i], B: items[j]})
	}
	return out
}

func blockedRecordLinkSample(sideA, sideB sample.Set[record.Record], bl *blocklearn.BlockLearner, n int, rng *rand.Rand) []record.Pair {
	itemsA, itemsB := sideA.Items, sideB.Items
	if len(itemsA) == 0 || len(itemsB) == 0 || n <= 0 {
		return nil
	}
	preds := bl.Fingerprinter().Predicates()
	if len(preds) == 0 {
		return nil
	}

	var out []record.Pair
	for attempts, found := 0, 0; found < n && attempts < n*20; attempts++ {
		p := preds[rng.Intn(len(preds))]
		i := rng.Intn(len(itemsA))
		keys, err := p.Apply(itemsA[i], true)
		if err != nil || len(keys) == 0 {
			continue
		}
		want := keys[rng.Intn(len(keys))]

		j := findSharingRecordB(itemsB, p, want, rng)
		if j < 0 {
			continue
		}
		out = append(out, record.Pair{A: itemsA[i], B: itemsB[j]})
		found++
	}
	return out
}

func findSharingRecordB(itemsB []record.Record, p *predicate.Predicate, want string, rng *rand.Rand) int {
	start := rng.Intn(len(itemsB))
	for step := 0; step < len(itemsB); step++ {
		j := (start + step) % len(itemsB)
		keys, err := p.Apply(itemsB[j], false)
		if err != nil {
			continue
		}
		for _, k := range keys {
			if k == want {
				return j
			}
		}
	}
	return -1
}

func randomRecordLinkSample(sideA, sideB sample.Set[record.Record], n int, rng *rand.Rand) []record.Pair {
	itemsA, itemsB := sideA.Items, sideB.Items
	if len(itemsA) == 0 || len(itemsB) == 0 || n <= 0 {
		return nil
	}
	out := make([]record.Pair, 0, n)
	for k := 0; k < n; k++ {
		i := rng.Intn(len(itemsA))
		j := rng.Intn(len(itemsB))
		out = append(out, record.Pair{A: itemsA[i], B: itemsB[j]})
	}
	return out
}
