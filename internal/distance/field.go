// Package distance implements the DistanceModel of SPEC_FULL.md §4.6:
// a catalog of field types, expansion into comparison variables,
// Interaction cross-products, missing-data indicators, and the
// record-pair -> distance-vector computation the active learner's
// RegressionLearner trains on.
package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/textnorm"
)

// ErrInvalidFieldSpec is returned when a field definition lacks a type
// or names one not in the catalog.
var ErrInvalidFieldSpec = errors.New("distance: field definition lacks a valid type")

// ErrRecordFieldMissing is returned by Check when a record lacks a
// field the model expects.
var ErrRecordFieldMissing = errors.New("distance: record is missing a field the model expects")

// TypeName is the string tag selecting a FieldType from the catalog.
type TypeName string

const (
	TypeString         TypeName = "String"
	TypeText           TypeName = "Text"
	TypeExact          TypeName = "Exact"
	TypeExists         TypeName = "Exists"
	TypeCategorical    TypeName = "Categorical"
	TypeFuzzyCategory  TypeName = "FuzzyCategorical"
	TypeSet            TypeName = "Set"
	TypePrice          TypeName = "Price"
	TypeLatLong        TypeName = "LatLong"
	TypeInteraction    TypeName = "Interaction"
)

// FieldDef is one field definition from the external field-spec
// (SPEC_FULL.md §6 Field definition).
type FieldDef struct {
	Field               string
	Variable            string // optional; defaults to Field
	Type                TypeName
	Weight              float64 // default 1.0
	HasMissing          bool
	OtherFields         []string // FuzzyCategorical
	InteractionVars     []string // Interaction
}

// compare is a field comparator: compare(ra, rb) -> distance in [0,1],
// or NaN if it cannot judge (missing-unaware comparators never see a
// missing cell; Model.Compute already filtered those). It
// receives the full record pair, not just the primary field's cells,
// so FuzzyCategorical can additionally read otherFields off the same
// pair it is scoring.
type compareFunc func(ra, rb record.Record) float64

// fieldType is an instantiated, non-Interaction field: the field it
// reads, its weight, whether it tracks a missing-indicator, and the
// comparator(s) it expands into. Most types expand to exactly one
// variable; FuzzyCategorical and Categorical expand to one per
// distinct observed category (higher_vars), handled by the model at
// Build time rather than here.
type fieldType struct {
	def       FieldDef
	variables []string      // one or more expanded variable names
	compares  []compareFunc // one comparator per variable, same order
}

func buildFieldType(def FieldDef, data []record.Record) (*fieldType, error) {
	if def.Type == "" {
		return nil, fmt.Errorf("field %q: %w", def.Field, ErrInvalidFieldSpec)
	}
	varName := def.Variable
	if varName == "" {
		varName = def.Field
	}

	field := def.Field
	switch def.Type {
	case TypeString, TypeText:
		cmp := func(ra, rb record.Record) float64 { return stringDistance(ra.Get(field), rb.Get(field)) }
		return &fieldType{def: def, variables: []string{varName}, compares: []compareFunc{cmp}}, nil
	case TypeExact:
		cmp := func(ra, rb record.Record) float64 { return exactDistance(ra.Get(field), rb.Get(field)) }
		return &fieldType{def: def, variables: []string{varName}, compares: []compareFunc{cmp}}, nil
	case TypeExists:
		cmp := func(ra, rb record.Record) float64 { return existsDistance(ra.Get(field), rb.Get(field)) }
		return &fieldType{def: def, variables: []string{varName}, compares: []compareFunc{cmp}}, nil
	case TypePrice:
		cmp := func(ra, rb record.Record) float64 { return priceDistance(ra.Get(field), rb.Get(field)) }
		return &fieldType{def: def, variables: []string{varName}, compares: []compareFunc{cmp}}, nil
	case TypeLatLong:
		cmp := func(ra, rb record.Record) float64 { return latLongDistance(ra.Get(field), rb.Get(field)) }
		return &fieldType{def: def, variables: []string{varName}, compares: []compareFunc{cmp}}, nil
	case TypeSet:
		cmp := func(ra, rb record.Record) float64 { return setDistance(ra.Get(field), rb.Get(field)) }
		return &fieldType{def: def, variables: []string{varName}, compares: []compareFunc{cmp}}, nil
	case TypeCategorical:
		return buildCategorical(def, varName, data, nil)
	case TypeFuzzyCategory:
		return buildCategorical(def, varName, data, def.OtherFields)
	default:
		return nil, fmt.Errorf("field %q: type %q: %w", def.Field, def.Type, ErrInvalidFieldSpec)
	}
}

// buildCategorical expands a categorical field into one boolean
// variable per distinct value observed in data, each comparing "both
// records hold this exact category" (1 match / 0 no match).
// FuzzyCategorical (non-empty otherFields) blends that exact-category
// match with the average string similarity across otherFields, so two
// records in different categories can still score partial agreement
// when their other fields line up (and an exact category match is
// pulled down when the other fields disagree), per spec.md:199's "other
// fields" extra.
func buildCategorical(def FieldDef, varName string, data []record.Record, otherFields []string) (*fieldType, error) {
	seen := map[string]bool{}
	var cats []string
	for _, r := range data {
		c := r.Get(def.Field)
		if !c.Truthy() {
			continue
		}
		v := c.Text()
		if !seen[v] {
			seen[v] = true
			cats = append(cats, v)
		}
	}

	ft := &fieldType{def: def}
	for _, cat := range cats {
		cat := cat
		ft.variables = append(ft.variables, fmt.Sprintf("%s=%s", varName, cat))
		ft.compares = append(ft.compares, func(ra, rb record.Record) float64 {
			a, b := ra.Get(def.Field), rb.Get(def.Field)
			match := 0.0
			if a.Text() == cat && b.Text() == cat {
				match = 1.0
			}
			if len(otherFields) == 0 {
				return match
			}
			return 0.5*match + 0.5*otherFieldsSimilarity(ra, rb, otherFields)
		})
	}
	return ft, nil
}

// otherFieldsSimilarity averages 1-stringDistance across otherFields,
// folding the category's surrounding context into the FuzzyCategorical
// score instead of judging the category in isolation.
func otherFieldsSimilarity(ra, rb record.Record, otherFields []string) float64 {
	total := 0.0
	for _, f := range otherFields {
		total += 1 - stringDistance(ra.Get(f), rb.Get(f))
	}
	return total / float64(len(otherFields))
}

func stringDistance(a, b record.Cell) float64 {
	ta := textnorm.CollapseWhitespace(strings.ToLower(a.Text()))
	tb := textnorm.CollapseWhitespace(strings.ToLower(b.Text()))
	if ta == tb {
		return 0
	}
	at, bt := textnorm.Words(ta), textnorm.Words(tb)
	inter := 0
	seen := map[string]bool{}
	for _, t := range at {
		seen[t] = true
	}
	for _, t := range bt {
		if seen[t] {
			inter++
		}
	}
	union := len(at) + len(bt) - inter
	if union == 0 {
		return 0
	}
	return 1 - float64(inter)/float64(union)
}

func exactDistance(a, b record.Cell) float64 {
	if a.Text() == b.Text() {
		return 0
	}
	return 1
}

func existsDistance(a, b record.Cell) float64 {
	if a.Truthy() == b.Truthy() {
		return 0
	}
	return 1
}

func priceDistance(a, b record.Cell) float64 {
	pa, pb := a.Number(), b.Number()
	if pa == 0 && pb == 0 {
		return 0
	}
	return math.Abs(pa-pb) / math.Max(pa, pb)
}

func latLongDistance(a, b record.Cell) float64 {
	la, loa := a.LatLong()
	lb, lob := b.LatLong()
	dLat := la - lb
	dLon := loa - lob
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

func setDistance(a, b record.Cell) float64 {
	sa, sb := a.Set(), b.Set()
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	seen := map[string]bool{}
	for _, v := range sa {
		seen[v] = true
	}
	inter := 0
	for _, v := range sb {
		if seen[v] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return 1 - float64(inter)/float64(union)
}
