package distance

import (
	"fmt"
	"math"

	"github.com/cognicore/blockrule/internal/record"
)

type interactionSpec struct {
	variable string
	refs     []string // primary variable names whose columns multiply together
	weight   float64
}

// Model is the built DistanceModel: an ordered list of primary
// variables (one or more per field definition), followed by
// Interaction columns, followed by MissingIndicator columns — exactly
// the column order SPEC_FULL.md §4.6 steps 2-5 build.
type Model struct {
	fields           []FieldDef
	types            []*fieldType // one per FieldDef, in order
	primaryVars      []string     // flattened variable names, in column order
	primaryCompare   []compareFunc
	primaryWeight    []float64
	primaryHasMissing []bool
	derivedStart     int

	interactions []interactionSpec

	missingFor []int // indices (in primaryVars) of variables with has_missing
}

// Build instantiates a Model from field definitions, expanding
// FuzzyCategorical/Categorical variables against the sample data.
func Build(defs []FieldDef, data []record.Record) (*Model, error) {
	m := &Model{}
	for _, def := range defs {
		if def.Type == TypeInteraction {
			m.interactions = append(m.interactions, interactionSpec{
				variable: def.Variable,
				refs:     def.InteractionVars,
				weight:   weightOrDefault(def.Weight),
			})
			continue
		}
		if def.Type == TypeFuzzyCategory && len(def.OtherFields) == 0 {
			def.OtherFields = otherFieldNames(defs, def.Field)
		}
		ft, err := buildFieldType(def, data)
		if err != nil {
			return nil, err
		}
		m.fields = append(m.fields, def)
		m.types = append(m.types, ft)

		w := weightOrDefault(def.Weight)
		for i, v := range ft.variables {
			m.primaryVars = append(m.primaryVars, v)
			m.primaryCompare = append(m.primaryCompare, ft.compares[i])
			m.primaryWeight = append(m.primaryWeight, w)
			m.primaryHasMissing = append(m.primaryHasMissing, def.HasMissing)
		}
	}
	m.derivedStart = len(m.primaryVars)

	for i, hasMissing := range m.primaryHasMissing {
		if hasMissing {
			m.missingFor = append(m.missingFor, i)
		}
	}
	return m, nil
}

// otherFieldNames defaults a FuzzyCategorical field's otherFields to
// every other non-Interaction field in the model, mirroring the
// original's "other fields" auto-population when the caller leaves it
// unset.
func otherFieldNames(defs []FieldDef, skip string) []string {
	var names []string
	for _, d := range defs {
		if d.Type == TypeInteraction || d.Field == skip || d.Field == "" {
			continue
		}
		names = append(names, d.Field)
	}
	return names
}

func weightOrDefault(w float64) float64 {
	if w == 0 {
		return 1.0
	}
	return w
}

// Width returns the total number of columns the distance vector for a
// pair holds: primary + interaction + missing-indicator columns.
func (m *Model) Width() int {
	return m.derivedStart + len(m.interactions) + len(m.missingFor)
}

// VariableNames returns the column names in order, for diagnostics.
func (m *Model) VariableNames() []string {
	names := append([]string(nil), m.primaryVars...)
	for _, it := range m.interactions {
		names = append(names, it.variable)
	}
	for _, idx := range m.missingFor {
		names = append(names, "missing("+m.primaryVars[idx]+")")
	}
	return names
}

// Check validates that every field the model reads is present (truthy
// or not — merely present as a key) in r, raising ErrRecordFieldMissing
// otherwise (SPEC_FULL.md SUPPLEMENTED feature 5).
func (m *Model) Check(r record.Record) error {
	for _, def := range m.fields {
		if _, ok := r[def.Field]; !ok {
			return fmt.Errorf("field %q: %w", def.Field, ErrRecordFieldMissing)
		}
	}
	return nil
}

// Compute returns the distance vector for a record pair, per
// SPEC_FULL.md §4.6: primary columns, then interaction columns as the
// row-wise product of referenced primary columns times the
// interaction's weight, then missing-indicator columns; NaNs in
// primary+interaction columns are replaced with 0.5, and
// missing-indicator columns hold `1 - is_missing(referenced primary)`.
func (m *Model) Compute(a, b record.Record) []float64 {
	vec := make([]float64, m.Width())

	col := 0
	isMissing := make([]bool, m.derivedStart)
	for _, ft := range m.types {
		def := ft.def
		for range ft.variables {
			ca, cb := a.Get(def.Field), b.Get(def.Field)
			present := ca.Truthy() && cb.Truthy()
			isMissing[col] = !present

			if present {
				vec[col] = m.primaryCompare[col](a, b) * m.primaryWeight[col]
			} else {
				vec[col] = math.NaN()
			}
			col++
		}
	}

	for _, it := range m.interactions {
		product := 1.0
		any := false
		for _, ref := range it.refs {
			idx := m.indexOf(ref)
			if idx < 0 {
				continue
			}
			v := vec[idx]
			if math.IsNaN(v) {
				v = 0.5
			}
			product *= v
			any = true
		}
		if !any {
			product = math.NaN()
		}
		vec[col] = product * it.weight
		col++
	}

	for i := 0; i < m.derivedStart+len(m.interactions); i++ {
		if math.IsNaN(vec[i]) {
			vec[i] = 0.5
		}
	}

	for _, idx := range m.missingFor {
		missing := 0.0
		if isMissing[idx] {
			missing = 1.0
		}
		vec[col] = 1 - missing
		col++
	}

	return vec
}

func (m *Model) indexOf(variable string) int {
	for i, v := range m.primaryVars {
		if v == variable {
			return i
		}
	}
	return -1
}
