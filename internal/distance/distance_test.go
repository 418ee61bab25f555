package distance

import (
	"math"
	"testing"

	"github.com/cognicore/blockrule/internal/record"
)

func sampleData() []record.Record {
	return []record.Record{
		{"name": record.TextCell("Annie's Cafe"), "price": record.NumberCell(10)},
		{"name": record.TextCell("Bob's Diner"), "price": record.NumberCell(20)},
	}
}

func TestBuildWidthAndVariableNames(t *testing.T) {
	defs := []FieldDef{
		{Field: "name", Type: TypeString},
		{Field: "price", Type: TypePrice, HasMissing: true},
	}
	m, err := Build(defs, sampleData())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.Width() != 3 {
		t.Fatalf("Width() = %d, want 3 (name, price, missing(price))", m.Width())
	}
	names := m.VariableNames()
	if names[0] != "name" || names[1] != "price" || names[2] != "missing(price)" {
		t.Errorf("VariableNames() = %v", names)
	}
}

func TestBuildRejectsMissingType(t *testing.T) {
	_, err := Build([]FieldDef{{Field: "name"}}, nil)
	if err == nil {
		t.Fatal("expected Build to reject a field definition with no Type")
	}
}

func TestComputeExactFieldIdenticalIsZero(t *testing.T) {
	defs := []FieldDef{{Field: "name", Type: TypeExact}}
	m, err := Build(defs, sampleData())
	if err != nil {
		t.Fatal(err)
	}
	a := record.Record{"name": record.TextCell("Annie's Cafe")}
	vec := m.Compute(a, a)
	if vec[0] != 0 {
		t.Errorf("Compute(a,a) for TypeExact = %v, want 0", vec[0])
	}
}

func TestComputeMissingFillsNaNWithHalf(t *testing.T) {
	defs := []FieldDef{{Field: "price", Type: TypePrice, HasMissing: true}}
	m, err := Build(defs, sampleData())
	if err != nil {
		t.Fatal(err)
	}
	withPrice := record.Record{"price": record.NumberCell(10)}
	noPrice := record.Record{}
	vec := m.Compute(withPrice, noPrice)
	if vec[0] != 0.5 {
		t.Errorf("Compute with one side missing: primary column = %v, want 0.5", vec[0])
	}
	if vec[1] != 0 {
		t.Errorf("missing-indicator column = %v, want 0 (1 - is_missing, and the field is missing)", vec[1])
	}
}

func TestComputeInteractionMultipliesReferencedColumns(t *testing.T) {
	defs := []FieldDef{
		{Field: "name", Type: TypeExact, Variable: "nameVar"},
		{Field: "price", Type: TypeExact, Variable: "priceVar"},
		{Variable: "interact", Type: TypeInteraction, InteractionVars: []string{"nameVar", "priceVar"}},
	}
	m, err := Build(defs, sampleData())
	if err != nil {
		t.Fatal(err)
	}
	a := record.Record{"name": record.TextCell("x"), "price": record.NumberCell(1)}
	b := record.Record{"name": record.TextCell("y"), "price": record.NumberCell(1)}
	vec := m.Compute(a, b)
	// nameVar distance = 1 (mismatch), priceVar distance = 0 (match) -> interaction = 0
	want := vec[0] * vec[1]
	if math.Abs(vec[2]-want) > 1e-9 {
		t.Errorf("interaction column = %v, want %v (product of %v and %v)", vec[2], want, vec[0], vec[1])
	}
}

func TestFuzzyCategoricalBlendsOtherFields(t *testing.T) {
	data := []record.Record{
		{"category": record.TextCell("cafe"), "city": record.TextCell("Springfield")},
		{"category": record.TextCell("diner"), "city": record.TextCell("Springfield")},
	}
	defs := []FieldDef{
		{Field: "category", Type: TypeFuzzyCategory, OtherFields: []string{"city"}},
	}
	m, err := Build(defs, data)
	if err != nil {
		t.Fatal(err)
	}

	sameCatSameCity := m.Compute(
		record.Record{"category": record.TextCell("cafe"), "city": record.TextCell("Springfield")},
		record.Record{"category": record.TextCell("cafe"), "city": record.TextCell("Springfield")},
	)
	sameCatDiffCity := m.Compute(
		record.Record{"category": record.TextCell("cafe"), "city": record.TextCell("Springfield")},
		record.Record{"category": record.TextCell("cafe"), "city": record.TextCell("Shelbyville")},
	)
	diffCatSameCity := m.Compute(
		record.Record{"category": record.TextCell("cafe"), "city": record.TextCell("Springfield")},
		record.Record{"category": record.TextCell("diner"), "city": record.TextCell("Springfield")},
	)

	catIdx := -1
	for i, name := range m.VariableNames() {
		if name == "category=cafe" {
			catIdx = i
		}
	}
	if catIdx < 0 {
		t.Fatalf("expected a category=cafe column, got %v", m.VariableNames())
	}

	if sameCatSameCity[catIdx] <= sameCatDiffCity[catIdx] {
		t.Errorf("matching category+city score %v should exceed matching category with differing city %v",
			sameCatSameCity[catIdx], sameCatDiffCity[catIdx])
	}
	if sameCatDiffCity[catIdx] == 0 {
		t.Errorf("a category match with a mismatched other field should still score above 0, got %v", sameCatDiffCity[catIdx])
	}
	if diffCatSameCity[catIdx] == 0 {
		t.Errorf("a category mismatch with matching other fields should score above 0 from the otherFields blend, got %v", diffCatSameCity[catIdx])
	}
	if diffCatSameCity[catIdx] >= sameCatSameCity[catIdx] {
		t.Errorf("category+city mismatch-then-match %v should score below a full category+city match %v", diffCatSameCity[catIdx], sameCatSameCity[catIdx])
	}
}

func TestCheckDetectsMissingField(t *testing.T) {
	defs := []FieldDef{{Field: "name", Type: TypeExact}}
	m, err := Build(defs, sampleData())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Check(record.Record{}); err == nil {
		t.Error("expected Check to fail on a record missing the modeled field")
	}
	if err := m.Check(record.Record{"name": record.TextCell("x")}); err != nil {
		t.Errorf("Check on a complete record failed: %v", err)
	}
}
