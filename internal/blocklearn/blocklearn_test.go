package blocklearn

import (
	"testing"

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
	}
}

func demoPreds() []*predicate.Predicate {
	return []*predicate.Predicate{
		predicate.NewString(predicate.FirstToken, "name"),
		predicate.NewSimple(predicate.WholeField, "city"),
	}
}

func TestNewDedupeBuildsComparisonCosts(t *testing.T) {
	bl := NewDedupe(demoPreds(), sample.NewSet(demoData()), DefaultOptions())
	if len(bl.comparisonCost) == 0 {
		t.Fatal("expected at least one predicate to survive with a nonzero comparison cost")
	}
}

func TestLearnFindsRuleCoveringKnownMatches(t *testing.T) {
	data := demoData()
	bl := NewDedupe(demoPreds(), sample.NewSet(data), DefaultOptions())

	matches := []record.Pair{
		{A: data[0], B: data[1]}, // Annie's Cafe / Annies Cafe, same city
		{A: data[2], B: data[3]}, // Bob's Diner / Bobs Diner, same city
	}

	rules, _, err := bl.Learn(matches, 1.0)
	if err != nil {
		t.Fatalf("Learn failed: %v", err)
	}
	if len(rules) == 0 {
		t.Fatal("expected Learn to return at least one rule")
	}

	for _, m := range matches {
		covered := false
		for _, rule := range rules {
			ka, errA := rule.Apply(m.A, false)
			kb, errB := rule.Apply(m.B, true)
			if errA != nil || errB != nil {
				continue
			}
			if sharesAnyKey(ka, kb) {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("expected at least one returned rule to cover match pair %v / %v", m.A, m.B)
		}
	}
}

func TestBuildCompoundsReachesConfiguredArityAboveTwo(t *testing.T) {
	data := []record.Record{
		{"name": record.TextCell("Annie's Cafe"), "city": record.TextCell("Springfield"), "state": record.TextCell("IL")},
		{"name": record.TextCell("Annie's Cafe"), "city": record.TextCell("Springfield"), "state": record.TextCell("IL")},
		{"name": record.TextCell("Cedar Grill"), "city": record.TextCell("Shelbyville"), "state": record.TextCell("TN")},
	}
	preds := []*predicate.Predicate{
		predicate.NewSimple(predicate.WholeField, "name"),
		predicate.NewSimple(predicate.WholeField, "city"),
		predicate.NewSimple(predicate.WholeField, "state"),
	}
	opts := DefaultOptions()
	opts.MaxCompoundLength = 3
	bl := NewDedupe(preds, sample.NewSet(data), opts)

	found3Way := false
	for key, p := range bl.predsByKey {
		if p.IsCompound() && len(p.Components()) == 3 {
			if _, ok := bl.comparisonCost[key]; ok {
				found3Way = true
			}
		}
	}
	if !found3Way {
		t.Fatal("expected a 3-way compound (name, city, state) to survive into comparisonCost when MaxCompoundLength=3")
	}
}

func TestLearnCompoundDupeCoverReachesConfiguredArityAboveTwo(t *testing.T) {
	data := []record.Record{
		{"name": record.TextCell("Annie's Cafe"), "city": record.TextCell("Springfield"), "state": record.TextCell("IL")},
		{"name": record.TextCell("Annie's Cafe"), "city": record.TextCell("Springfield"), "state": record.TextCell("IL")},
		{"name": record.TextCell("Cedar Grill"), "city": record.TextCell("Shelbyville"), "state": record.TextCell("TN")},
	}
	preds := []*predicate.Predicate{
		predicate.NewSimple(predicate.WholeField, "name"),
		predicate.NewSimple(predicate.WholeField, "city"),
		predicate.NewSimple(predicate.WholeField, "state"),
	}
	opts := DefaultOptions()
	opts.MaxCompoundLength = 3
	bl := NewDedupe(preds, sample.NewSet(data), opts)

	matches := []record.Pair{{A: data[0], B: data[1]}}
	dupeCover := bl.buildDupeCover(matches)
	dupeCover = bl.compoundDupeCover(dupeCover, 3)

	found3Way := false
	for _, key := range dupeCover.Keys() {
		if p, ok := bl.predsByKey[key]; ok && p.IsCompound() && len(p.Components()) == 3 {
			found3Way = true
		}
	}
	if !found3Way {
		t.Fatal("expected compoundDupeCover to register and cover a 3-way compound when maxLen=3")
	}
}

func sharesAnyKey(a, b []string) bool {
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
