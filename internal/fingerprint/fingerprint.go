// Package fingerprint applies a predicate set to records and owns the
// per-(field, index kind) indexes those predicates query, per
// SPEC_FULL.md §4.2.
package fingerprint

import (
	"sort"

	"github.com/cognicore/blockrule/internal/index"
	"github.com/cognicore/blockrule/internal/predicate"
	"github.com/cognicore/blockrule/internal/record"
)

type indexKey struct {
	field   string
	simKind predicate.SimKind
	levens  bool
}

// Fingerprinter owns one index per distinct (field, index kind) pair
// referenced by its predicate set, and applies every predicate in the
// set to a record to yield the record's block keys.
type Fingerprinter struct {
	predicates []*predicate.Predicate
	indexes    map[indexKey]predicate.Index
}

// New builds a Fingerprinter over preds without indexing anything yet.
func New(preds []*predicate.Predicate) *Fingerprinter {
	return &Fingerprinter{
		predicates: preds,
		indexes:    make(map[indexKey]predicate.Index),
	}
}

// Predicates returns the underlying predicate set.
func (f *Fingerprinter) Predicates() []*predicate.Predicate { return f.predicates }

func keyOf(p *predicate.Predicate) indexKey {
	levens := p.Kind() == predicate.LevenshteinCanopy || p.Kind() == predicate.LevenshteinSearch
	return indexKey{field: p.Field(), simKind: simKindOf(p), levens: levens}
}

func simKindOf(p *predicate.Predicate) predicate.SimKind {
	if p.Kind() == predicate.LevenshteinCanopy || p.Kind() == predicate.LevenshteinSearch {
		return predicate.SimNone
	}
	return p.SimKind()
}

// IndexAll collects, per (field, index kind), the distinct preprocessed
// values needed by that index's predicates, builds or extends the
// index, assigns it to every predicate sharing the key, and for canopy
// predicates freezes their per-record cache against data.
func (f *Fingerprinter) IndexAll(data []record.Record) {
	f.indexField(data)
}

// IndexAllRecordLink mirrors IndexAll for record-link training, where
// canopy predicates are never used (only Search, per §4.2) but the
// two sides must share one index and one doc-id space.
func (f *Fingerprinter) IndexAllRecordLink(sideA, sideB []record.Record) {
	values := make(map[indexKey]map[string]bool)
	for _, p := range f.predicates {
		if !p.IsIndexed() {
			continue
		}
		k := keyOf(p)
		set := values[k]
		if set == nil {
			set = make(map[string]bool)
			values[k] = set
		}
		for _, r := range sideA {
			collectDocKey(p, r, set)
		}
		for _, r := range sideB {
			collectDocKey(p, r, set)
		}
	}
	f.buildIndexes(values)

	for _, p := range f.predicates {
		if p.IsIndexed() && (p.Kind() == predicate.TfidfSearch || p.Kind() == predicate.LevenshteinSearch) {
			p.FreezeSearch(sideA, sideB)
		}
	}
}

func (f *Fingerprinter) indexField(data []record.Record) {
	values := make(map[indexKey]map[string]bool)
	for _, p := range f.predicates {
		if !p.IsIndexed() {
			continue
		}
		k := keyOf(p)
		set := values[k]
		if set == nil {
			set = make(map[string]bool)
			values[k] = set
		}
		for _, r := range data {
			collectDocKey(p, r, set)
		}
	}
	f.buildIndexes(values)

	for _, p := range f.predicates {
		if p.IsIndexed() && (p.Kind() == predicate.TfidfCanopy || p.Kind() == predicate.LevenshteinCanopy) {
			p.Freeze(data)
		}
	}
}

func collectDocKey(p *predicate.Predicate, r record.Record, set map[string]bool) {
	cell := r.Get(p.Field())
	if !cell.Truthy() {
		return
	}
	doc := p.DocKey(cell)
	if doc != "" {
		set[doc] = true
	}
}

func (f *Fingerprinter) buildIndexes(values map[indexKey]map[string]bool) {
	for k, set := range values {
		docs := make([]string, 0, len(set))
		for v := range set {
			docs = append(docs, v)
		}
		sort.Strings(docs)

		idx := f.indexes[k]
		if idx == nil {
			if k.levens {
				idx = index.NewLevenshteinIndex()
			} else {
				idx = index.NewTfidfIndex()
			}
			f.indexes[k] = idx
		}
		switch v := idx.(type) {
		case *index.LevenshteinIndex:
			v.Index(docs)
		case *index.TfidfIndex:
			v.Index(docs)
		}

		for _, p := range f.predicates {
			if p.IsIndexed() && keyOf(p) == k {
				p.SetIndex(idx)
			}
		}
	}
}

// Apply runs every predicate in the set against r, for the given side
// of a pair (target: true means "the indexed side" for Search
// predicates; ignored otherwise), and returns, per predicate, the keys
// it produced (nil if the predicate did not fire).
func (f *Fingerprinter) Apply(r record.Record, target bool) map[*predicate.Predicate][]string {
	out := make(map[*predicate.Predicate][]string, len(f.predicates))
	for _, p := range f.predicates {
		keys, err := p.Apply(r, target)
		if err != nil {
			continue
		}
		if len(keys) > 0 {
			out[p] = keys
		}
	}
	return out
}
