// Package predicate implements the blocking-predicate algebra: simple
// field transforms, index-backed similarity predicates, and compound
// (conjunctive) predicates, all sharing one Predicate value with
// identity/equality/hashing defined by a stable string representation.
package predicate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/textnorm"
)

// ErrNotIndexed is raised when an index predicate is invoked against a
// value not present in its index and with no cached result.
var ErrNotIndexed = errors.New("predicate: attempting to block with an index predicate without indexing records")

// Index is the interface an index-backed predicate queries. Concrete
// implementations (TF-IDF, Levenshtein) live in package index; keeping
// the interface here avoids a dependency cycle (a Predicate must hold
// a reference to its Index, but package index never needs to import
// package predicate).
type Index interface {
	// DocToID returns the stable id assigned to doc, if it has been
	// indexed.
	DocToID(doc string) (int, bool)
	// Search returns the ids of every indexed doc similar to doc at
	// threshold or above.
	Search(doc string, threshold float64) []int
}

// family distinguishes which wrapper class (§4.1) a non-compound,
// non-index Predicate behaves as — it changes preprocessing and the
// type tag in the string representation, mirroring the original's
// SimplePredicate vs StringPredicate vs ExistsPredicate classes.
type family string

const (
	familySimple family = "SimplePredicate"
	familyString family = "StringPredicate"
	familyExists family = "ExistsPredicate"
	familyIndex  family = "IndexPredicate"
	familyCompound family = "CompoundPredicate"
)

// Predicate is a value with the attributes of SPEC_FULL.md §3: it maps
// a record (and, for index predicates, a target side) to a set of
// block keys, and its identity is its string representation.
type Predicate struct {
	family family
	kind   Kind
	field  string

	// Indexed predicates only.
	simKind   SimKind
	threshold float64
	idx       Index

	compoundsWithSameField bool

	components []*Predicate // Compound only

	// Canopy stickiness: doc_id -> center doc id, -1 meaning "no
	// center" (queried, found no neighbours). Presence in the map is
	// "this doc has been assigned", independent of value.
	canopy map[int]int

	// Freeze caches. cache is keyed by the raw (unpreprocessed) field
	// value for canopy predicates; searchCache is keyed by (raw field
	// value, target) for search predicates.
	frozen      bool
	cache       map[string][]string
	searchCache map[searchKey][]string
}

type searchKey struct {
	value  string
	target bool
}

// NewSimple constructs a SimplePredicate of kind over field.
func NewSimple(kind Kind, field string) *Predicate {
	return &Predicate{family: familySimple, kind: kind, field: field,
		compoundsWithSameField: kind != WholeField && kind != WholeSet}
}

// NewString constructs a StringPredicate of kind over field — the
// same function as NewSimple, applied to punctuation-stripped,
// whitespace-collapsed input.
func NewString(kind Kind, field string) *Predicate {
	return &Predicate{family: familyString, kind: kind, field: field,
		compoundsWithSameField: true}
}

// NewExists constructs an ExistsPredicate over field; it never
// compounds with another predicate on the same field.
func NewExists(field string) *Predicate {
	return &Predicate{family: familyExists, kind: Exists, field: field}
}

// NewIndexed constructs an index-backed predicate. kind must be one of
// TfidfCanopy, TfidfSearch, LevenshteinCanopy, LevenshteinSearch.
// simKind is ignored for Levenshtein kinds.
func NewIndexed(kind Kind, simKind SimKind, field string, threshold float64) *Predicate {
	p := &Predicate{
		family: familyIndex, kind: kind, field: field,
		simKind: simKind, threshold: threshold,
	}
	if kind == TfidfCanopy || kind == LevenshteinCanopy {
		p.canopy = make(map[int]int)
	}
	return p
}

// NewCompound constructs the logical AND of parts. Its cover is the
// intersection of component covers (computed elsewhere, in package
// cover); Apply takes the cross product of component block keys.
func NewCompound(parts ...*Predicate) *Predicate {
	sorted := append([]*Predicate(nil), parts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })
	return &Predicate{family: familyCompound, kind: Compound, components: sorted}
}

// Field returns the field name a non-compound predicate reads.
func (p *Predicate) Field() string { return p.field }

// Kind returns the predicate's kind tag.
func (p *Predicate) Kind() Kind { return p.kind }

// SimKind returns the TF-IDF preprocessing family of an index
// predicate (SimNone for Levenshtein predicates and non-index kinds).
func (p *Predicate) SimKind() SimKind { return p.simKind }

// Threshold returns the similarity threshold of an index predicate.
func (p *Predicate) Threshold() float64 { return p.threshold }

// IsIndexed reports whether p is a TF-IDF or Levenshtein predicate.
func (p *Predicate) IsIndexed() bool { return p.family == familyIndex }

// IsCompound reports whether p is a conjunction of other predicates.
func (p *Predicate) IsCompound() bool { return p.family == familyCompound }

// Components returns the conjuncts of a compound predicate.
func (p *Predicate) Components() []*Predicate { return p.components }

// SetIndex attaches the backing Index to an index predicate; called by
// Fingerprinter.IndexAll once the index has been built.
func (p *Predicate) SetIndex(idx Index) { p.idx = idx }

// Key returns the stable string representation that defines identity,
// equality, and hashing for this predicate — two predicates are equal
// iff Key() matches.
func (p *Predicate) Key() string {
	switch p.family {
	case familyCompound:
		parts := make([]string, len(p.components))
		for i, c := range p.components {
			parts[i] = c.Key()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case familyExists:
		return fmt.Sprintf("ExistsPredicate: (Exists, %s)", p.field)
	case familyIndex:
		return fmt.Sprintf("%s: (%s, %s)", p.indexedTypeName(), formatThreshold(p.threshold), p.field)
	default:
		tag := familySimple
		if p.family == familyString {
			tag = familyString
		}
		return fmt.Sprintf("%s: (%s, %s)", tag, p.kind, p.field)
	}
}

func formatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}

func (p *Predicate) indexedTypeName() string {
	var sim string
	switch p.simKind {
	case SimText:
		sim = "TfidfText"
	case SimSet:
		sim = "TfidfSet"
	case SimNGram:
		sim = "TfidfNGram"
	default:
		sim = "Levenshtein"
	}
	switch p.kind {
	case TfidfCanopy, LevenshteinCanopy:
		return sim + "CanopyPredicate"
	default:
		return sim + "SearchPredicate"
	}
}

func (p *Predicate) String() string { return p.Key() }

// CompoundsWith reports whether p may be conjoined with other,
// applying the rules of SPEC_FULL.md §4.1: Exists and index predicates
// never compound with another predicate on the same field; two index
// predicates of identical concrete kind on the same field never
// compound; a StringPredicate respects its callee's
// compounds_with_same_field flag.
func (p *Predicate) CompoundsWith(other *Predicate) bool {
	switch p.family {
	case familyExists:
		return p.field != other.field
	case familyIndex:
		return p.field != other.field
	case familyString:
		if other.field == p.field && !p.compoundsWithSameField {
			return false
		}
		return true
	default:
		return true
	}
}

// Freeze precomputes outputs for every record supplied and discards
// the canopy/index state afterwards, matching CanopyPredicate.freeze —
// a frozen predicate answers from cache alone and is safe to call
// without its backing index attached.
func (p *Predicate) Freeze(records []record.Record) {
	if p.family != familyIndex || p.kind != TfidfCanopy && p.kind != LevenshteinCanopy {
		return
	}
	p.cache = make(map[string][]string, len(records))
	for _, r := range records {
		v := r.Get(p.field)
		key := cellRawKey(v)
		keys, _ := p.Apply(r, false)
		p.cache[key] = keys
	}
	p.canopy = nil
	p.idx = nil
	p.frozen = true
}

// FreezeSearch is Freeze's record-link analogue: it precomputes
// outputs for both sides, keyed by (value, target).
func (p *Predicate) FreezeSearch(recordsA, recordsB []record.Record) {
	if p.family != familyIndex || (p.kind != TfidfSearch && p.kind != LevenshteinSearch) {
		return
	}
	p.searchCache = make(map[searchKey][]string, len(recordsA)+len(recordsB))
	for _, r := range recordsA {
		v := r.Get(p.field)
		key := searchKey{cellRawKey(v), false}
		keys, _ := p.Apply(r, false)
		p.searchCache[key] = keys
	}
	for _, r := range recordsB {
		v := r.Get(p.field)
		key := searchKey{cellRawKey(v), true}
		keys, _ := p.Apply(r, true)
		p.searchCache[key] = keys
	}
	p.idx = nil
	p.frozen = true
}

func cellRawKey(c record.Cell) string {
	switch c.Kind() {
	case record.Text:
		return c.Text()
	case record.Set:
		return strings.Join(c.Set(), "\x1f")
	case record.Number:
		return strconv.FormatFloat(c.Number(), 'g', -1, 64)
	case record.LatLong:
		lat, lon := c.LatLong()
		return fmt.Sprintf("%v,%v", lat, lon)
	default:
		return ""
	}
}

// Apply maps a record to its block keys. target distinguishes the
// query side (false) from the index side (true) for record-link
// search predicates; it is ignored by every other kind.
func (p *Predicate) Apply(r record.Record, target bool) ([]string, error) {
	if p.family == familyCompound {
		return p.applyCompound(r, target)
	}

	cell := r.Get(p.field)

	if p.family == familyExists {
		if cell.Truthy() {
			return []string{"1"}, nil
		}
		return []string{"0"}, nil
	}

	if !cell.Truthy() {
		return nil, nil
	}

	if p.family == familyIndex {
		return p.applyIndexed(cell, target)
	}

	if p.family == familyString {
		cell = record.TextCell(textnorm.CollapseWhitespace(cell.Text()))
		if !cell.Truthy() {
			return nil, nil
		}
	}

	return applyLibFunc(p.kind, cell), nil
}

func (p *Predicate) applyCompound(r record.Record, target bool) ([]string, error) {
	perComponent := make([][]string, len(p.components))
	for i, c := range p.components {
		keys, err := c.Apply(r, target)
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return nil, nil
		}
		perComponent[i] = keys
	}
	return crossProductJoin(perComponent), nil
}

func crossProductJoin(parts [][]string) []string {
	out := []string{""}
	for _, p := range parts {
		next := make([]string, 0, len(out)*len(p))
		for _, prefix := range out {
			for _, k := range p {
				if prefix == "" {
					next = append(next, k)
				} else {
					next = append(next, prefix+":"+k)
				}
			}
		}
		out = next
	}
	return out
}

// preprocess turns a cell into the canonical doc string an Index
// indexes/searches over, per SPEC_FULL.md's unification of the three
// TF-IDF preprocessing shapes and the Levenshtein shape into one
// string-valued doc key (terms joined on a private separator for
// TF-IDF; the normalised string itself for Levenshtein).
func preprocess(kind Kind, simKind SimKind, cell record.Cell) string {
	if kind == LevenshteinCanopy || kind == LevenshteinSearch {
		return textnorm.CollapseWhitespace(cell.Text())
	}
	switch simKind {
	case SimText:
		return strings.Join(textnorm.Words(cell.Text()), "\x1f")
	case SimSet:
		vals := append([]string(nil), cell.Set()...)
		sort.Strings(vals)
		return strings.Join(vals, "\x1f")
	case SimNGram:
		collapsed := textnorm.CollapseWhitespace(cell.Text())
		grams := textnorm.NGrams(strings.ReplaceAll(collapsed, " ", ""), 2)
		sort.Strings(grams)
		return strings.Join(grams, "\x1f")
	}
	return ""
}

func (p *Predicate) applyIndexed(cell record.Cell, target bool) ([]string, error) {
	if p.frozen {
		if p.kind == TfidfCanopy || p.kind == LevenshteinCanopy {
			return p.cache[cellRawKey(cell)], nil
		}
		return p.searchCache[searchKey{cellRawKey(cell), target}], nil
	}

	switch p.kind {
	case TfidfCanopy, LevenshteinCanopy:
		return p.applyCanopy(cell)
	default:
		return p.applySearch(cell, target)
	}
}

// applyCanopy implements SPEC_FULL.md/§4.2's canopy call semantics.
func (p *Predicate) applyCanopy(cell record.Cell) ([]string, error) {
	if p.idx == nil {
		return nil, ErrNotIndexed
	}
	doc := preprocess(p.kind, p.simKind, cell)
	docID, ok := p.idx.DocToID(doc)
	if !ok {
		return nil, ErrNotIndexed
	}

	if p.canopy == nil {
		p.canopy = make(map[int]int)
	}
	if center, assigned := p.canopy[docID]; assigned {
		if center < 0 {
			return nil, nil
		}
		return []string{strconv.Itoa(center)}, nil
	}

	members := p.idx.Search(doc, p.threshold)
	for _, member := range members {
		if _, assigned := p.canopy[member]; !assigned {
			p.canopy[member] = docID
		}
	}

	if len(members) > 0 {
		p.canopy[docID] = docID
		return []string{strconv.Itoa(docID)}, nil
	}
	p.canopy[docID] = -1
	return nil, nil
}

// applySearch implements SPEC_FULL.md/§4.2's record-link search
// semantics: target=true (index side) returns the doc's own id;
// target=false (query side) returns every neighbour above threshold.
func (p *Predicate) applySearch(cell record.Cell, target bool) ([]string, error) {
	if p.idx == nil {
		return nil, ErrNotIndexed
	}
	doc := preprocess(p.kind, p.simKind, cell)

	if target {
		id, ok := p.idx.DocToID(doc)
		if !ok {
			return nil, ErrNotIndexed
		}
		return []string{strconv.Itoa(id)}, nil
	}

	ids := p.idx.Search(doc, p.threshold)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(id)
	}
	return out, nil
}

// DocKey exposes the preprocessed, index-ready string for a record's
// field value — Fingerprinter.IndexAll uses this to collect the
// distinct values a field's index predicates need indexed.
func (p *Predicate) DocKey(cell record.Cell) string {
	return preprocess(p.kind, p.simKind, cell)
}

