package main

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/cognicore/blockrule/internal/activelearn"
	"github.com/cognicore/blockrule/internal/blocklearn"
	"github.com/cognicore/blockrule/internal/distance"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/sample"
)

func main() {
	fmt.Println("Building record sample...")
	data := demoRecords()

	fmt.Println("Building predicate set...")
	preds := demoPredicates()

	fmt.Println("Training block learner over the sample...")
	bl := blocklearn.NewDedupe(preds, sample.NewSet(data), blocklearn.DefaultOptions())
	testBlockLearner(bl)

	fmt.Println("\nBuilding distance model...")
	model := buildDistanceModel(data)

	fmt.Println("\nRunning an active learning session...")
	testActiveLearning(bl, model, data)

	fmt.Println("\n✅ All demo stages completed!")
}

func demoRecords() []record.Record {
	names := []struct {
		name, addr, city string
	}{
		{"Annie's Cafe", "123 Main St", "Springfield"},
		{"Annies Cafe", "123 Main Street", "Springfield"},
		{"Bob's Diner", "45 Oak Ave", "Shelbyville"},
		{"Bobs Diner", "45 Oak Avenue", "Shelbyville"},
		{"Cedar Grill", "9 Elm Rd", "Capital City"},
		{"Downtown Bakery", "200 2nd St", "Springfield"},
	}
	out := make([]record.Record, 0, len(names))
	for _, n := range names {
		out = append(out, record.Record{
			"name":    record.TextCell(n.name),
			"address": record.TextCell(n.addr),
			"city":    record.TextCell(n.city),
		})
	}
	return out
}

func demoPredicates() []*predicate.Predicate {
	return []*predicate.Predicate{
		predicate.NewSimple(predicate.WholeField, "name"),
		predicate.NewString(predicate.Token, "name"),
		predicate.NewString(predicate.FirstToken, "name"),
		predicate.NewString(predicate.Fingerprint, "name"),
		predicate.NewString(predicate.SameThreeCharStart, "address"),
		predicate.NewSimple(predicate.WholeField, "city"),
		predicate.NewIndexed(predicate.TfidfCanopy, predicate.SimText, "name", 0.6),
		predicate.NewIndexed(predicate.LevenshteinCanopy, predicate.SimNone, "address", 0.8),
	}
}

func testBlockLearner(bl *blocklearn.BlockLearner) {
	if bl.Fingerprinter() == nil {
		log.Fatal("BlockLearner.Fingerprinter returned nil")
	}
	fmt.Printf("  ✓ fingerprinted %d predicates\n", len(bl.Fingerprinter().Predicates()))
}

func buildDistanceModel(data []record.Record) *distance.Model {
	defs := []distance.FieldDef{
		{Field: "name", Type: distance.TypeString},
		{Field: "address", Type: distance.TypeString},
		{Field: "city", Type: distance.TypeExact},
	}
	model, err := distance.Build(defs, data)
	if err != nil {
		log.Fatalf("distance.Build failed: %v", err)
	}
	fmt.Printf("  ✓ distance model width = %d (%v)\n", model.Width(), model.VariableNames())
	return model
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func testActiveLearning(bl *blocklearn.BlockLearner, model *distance.Model, data []record.Record) {
	rng := rand.New(rand.NewSource(42))
	opts := activelearn.DefaultOptions()
	pool := activelearn.BuildDedupePool(sample.NewSet(data), bl, model, opts, rng)
	fmt.Printf("  ✓ candidate pool built with %d pairs\n", pool.Len())

	selfMatch := record.Pair{A: data[0], B: data[0]}
	learner := activelearn.New(pool, model.Width(), bl, rng)
	learner.Seed(selfMatch, model.Compute(selfMatch.A, selfMatch.B))

	var matches []record.Pair
	for i := 0; i < 10 && pool.Len() > 0; i++ {
		pair, err := learner.Pop()
		if err != nil {
			break
		}
		label := 0.0
		if firstWord(pair.A["name"].Text()) == firstWord(pair.B["name"].Text()) {
			label = 1.0
			matches = append(matches, pair)
		}
		learner.Mark([]record.Pair{pair}, [][]float64{model.Compute(pair.A, pair.B)}, []float64{label})
	}
	fmt.Printf("  ✓ labelled %d matching pairs during the session\n", len(matches))

	rules, warning, err := learner.LearnPredicates(1.0, true)
	if err != nil {
		log.Fatalf("LearnPredicates failed: %v", err)
	}
	if warning != nil {
		fmt.Printf("  (warning: %s)\n", warning.Message)
	}
	fmt.Printf("  ✓ learned %d predicates:\n", len(rules))
	for _, r := range rules {
		fmt.Printf("      %s\n", r.Key())
	}
}
