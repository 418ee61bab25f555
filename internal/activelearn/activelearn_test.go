package activelearn

import (
	"math/rand"
	"testing"

	"github.com/cognicore/blockrule/internal/blocklearn"
	"github.com/cognicore/blockrule/internal/distance"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/sample"
)

func demoData() []record.Record {
	return []record.Record{
		{"name": record.TextCell("Annie's Cafe"), "city": record.TextCell("Springfield")},
		{"name": record.TextCell("Annies Cafe"), "city": record.TextCell("Springfield")},
		{"name": record.TextCell("Bob's Diner"), "city": record.TextCell("Shelbyville")},
		{"name": record.TextCell("Bobs Diner"), "city": record.TextCell("Shelbyville")},
		{"name": record.TextCell("Cedar Grill"), "city": record.TextCell("Capital City")},
		{"name": record.TextCell("Downtown Bakery"), "city": record.TextCell("Springfield")},
	}
}

func demoPreds() []*predicate.Predicate {
	return []*predicate.Predicate{
		predicate.NewString(predicate.FirstToken, "name"),
		predicate.NewSimple(predicate.WholeField, "city"),
	}
}

func buildModel(t *testing.T, data []record.Record) *distance.Model {
	t.Helper()
	m, err := distance.Build([]distance.FieldDef{
		{Field: "name", Type: distance.TypeString},
		{Field: "city", Type: distance.TypeExact},
	}, data)
	if err != nil {
		t.Fatalf("distance.Build failed: %v", err)
	}
	return m
}

func TestCandidatePoolHasNoDuplicatePairs(t *testing.T) {
	data := demoData()
	bl := blocklearn.NewDedupe(demoPreds(), sample.NewSet(data), blocklearn.DefaultOptions())
	model := buildModel(t, data)

	opts := DefaultOptions()
	opts.SampleSize = 20
	rng := rand.New(rand.NewSource(1))
	pool := BuildDedupePool(sample.NewSet(data), bl, model, opts, rng)

	if pool.Len() == 0 {
		t.Fatal("expected a nonempty candidate pool")
	}
	seen := make(map[string]bool)
	for i := 0; i < pool.Len(); i++ {
		key := pairKey(pool.Pair(i))
		if seen[key] {
			t.Errorf("pair at index %d duplicates an earlier candidate", i)
		}
		seen[key] = true
	}
}

func TestDisagreementLearnerSessionProducesRules(t *testing.T) {
	data := demoData()
	bl := blocklearn.NewDedupe(demoPreds(), sample.NewSet(data), blocklearn.DefaultOptions())
	model := buildModel(t, data)

	opts := DefaultOptions()
	opts.SampleSize = 20
	rng := rand.New(rand.NewSource(7))
	pool := BuildDedupePool(sample.NewSet(data), bl, model, opts, rng)

	learner := New(pool, model.Width(), bl, rng)
	selfMatch := record.Pair{A: data[0], B: data[0]}
	learner.Seed(selfMatch, model.Compute(selfMatch.A, selfMatch.B))

	for i := 0; i < 5 && pool.Len() > 0; i++ {
		pair, err := learner.Pop()
		if err != nil {
			break
		}
		label := 0.0
		if pair.A["city"].Text() == pair.B["city"].Text() {
			label = 1.0
		}
		learner.Mark([]record.Pair{pair}, [][]float64{model.Compute(pair.A, pair.B)}, []float64{label})
	}

	rules, _, err := learner.LearnPredicates(1.0, true)
	if err != nil {
		t.Fatalf("LearnPredicates failed: %v", err)
	}
	_ = rules // a labelled session over this data may or may not yield matches; just confirm it runs cleanly
}

func TestDisagreementLearnerPopExhaustsPool(t *testing.T) {
	data := demoData()
	bl := blocklearn.NewDedupe(demoPreds(), sample.NewSet(data), blocklearn.DefaultOptions())
	model := buildModel(t, data)

	opts := DefaultOptions()
	opts.SampleSize = 3
	rng := rand.New(rand.NewSource(3))
	pool := BuildDedupePool(sample.NewSet(data), bl, model, opts, rng)
	learner := New(pool, model.Width(), bl, rng)

	n := pool.Len()
	for i := 0; i < n; i++ {
		if _, err := learner.Pop(); err != nil {
			t.Fatalf("Pop() failed before exhausting the pool (at %d/%d): %v", i, n, err)
		}
	}
	if _, err := learner.Pop(); err != ErrExhaustedCandidates {
		t.Errorf("Pop() on an exhausted pool = %v, want ErrExhaustedCandidates", err)
	}
}
