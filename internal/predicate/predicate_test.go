package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/blockrule/internal/record"
)

func TestSimplePredicateWholeField(t *testing.T) {
	p := NewSimple(WholeField, "name")
	r := record.Record{"name": record.TextCell("Annie's Cafe")}

	keys, err := p.Apply(r, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Annie's Cafe"}, keys)
}

func TestSimplePredicateFalsyFieldYieldsNoKeys(t *testing.T) {
	p := NewSimple(WholeField, "name")
	r := record.Record{"name": record.TextCell("")}

	keys, err := p.Apply(r, false)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStringPredicateCollapsesPunctuation(t *testing.T) {
	p := NewString(Token, "name")
	r := record.Record{"name": record.TextCell("Annie's, Cafe.")}

	keys, err := p.Apply(r, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Annie's", "Cafe"}, keys)
}

func TestExistsPredicate(t *testing.T) {
	p := NewExists("phone")

	present, err := p.Apply(record.Record{"phone": record.TextCell("555-1234")}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, present)

	absent, err := p.Apply(record.Record{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, absent)
}

func TestKeyIsStableIdentity(t *testing.T) {
	a := NewSimple(WholeField, "name")
	b := NewSimple(WholeField, "name")
	c := NewSimple(WholeField, "address")

	assert.Equal(t, a.Key(), b.Key(), "two predicates of identical kind+field must share a Key()")
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestCompoundPredicateAppliesCrossProduct(t *testing.T) {
	p1 := NewSimple(WholeField, "name")
	p2 := NewSimple(WholeField, "city")
	compound := NewCompound(p1, p2)

	r := record.Record{"name": record.TextCell("Annie"), "city": record.TextCell("Springfield")}
	keys, err := compound.Apply(r, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Annie:Springfield"}, keys)
}

func TestCompoundPredicateFailsClosedIfAnyComponentEmpty(t *testing.T) {
	p1 := NewSimple(WholeField, "name")
	p2 := NewSimple(WholeField, "city")
	compound := NewCompound(p1, p2)

	r := record.Record{"name": record.TextCell("Annie")}
	keys, err := compound.Apply(r, false)
	require.NoError(t, err)
	assert.Empty(t, keys, "compound predicate must yield no keys when a component is absent")
}

func TestCompoundKeyOrdersComponentsByKey(t *testing.T) {
	p1 := NewSimple(WholeField, "zzz")
	p2 := NewSimple(WholeField, "aaa")

	c1 := NewCompound(p1, p2)
	c2 := NewCompound(p2, p1)
	assert.Equal(t, c1.Key(), c2.Key(), "compound predicate identity must not depend on construction order")
}

func TestCompoundsWithRejectsSameFieldIndexPredicates(t *testing.T) {
	a := NewIndexed(TfidfCanopy, SimText, "name", 0.8)
	b := NewIndexed(TfidfCanopy, SimText, "name", 0.5)
	assert.False(t, a.CompoundsWith(b))

	c := NewIndexed(TfidfCanopy, SimText, "address", 0.8)
	assert.True(t, a.CompoundsWith(c))
}

func TestCompoundsWithRejectsSameFieldExists(t *testing.T) {
	a := NewExists("phone")
	b := NewSimple(WholeField, "phone")
	assert.False(t, a.CompoundsWith(b))

	c := NewExists("address")
	assert.True(t, a.CompoundsWith(c))
}

func TestCanopyPredicateIsStickyAcrossQueries(t *testing.T) {
	idx := &fakeIndex{
		docToID: map[string]int{"a": 0, "b": 1, "c": 2},
		neighbours: map[string][]int{
			"a": {0, 1},
		},
	}
	p := NewIndexed(TfidfCanopy, SimText, "name", 0.5)
	p.SetIndex(idx)

	first, err := p.Apply(record.Record{"name": record.SetCell(nil)}, false)
	require.NoError(t, err)
	assert.Empty(t, first, "falsy cell should never reach the index")

	ra := record.Record{"name": record.TextCell("a")}
	rb := record.Record{"name": record.TextCell("b")}

	keysA, err := p.Apply(ra, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, keysA, "a becomes its own canopy center")

	keysB, err := p.Apply(rb, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, keysB, "b was assigned to a's canopy on the first search and must stick")
}

func TestNotIndexedWithoutIndex(t *testing.T) {
	p := NewIndexed(TfidfCanopy, SimText, "name", 0.5)
	_, err := p.Apply(record.Record{"name": record.TextCell("a")}, false)
	assert.ErrorIs(t, err, ErrNotIndexed)
}

// fakeIndex is a minimal Index double: DocToID assigns ids from a
// fixed map, Search returns a fixed neighbour set for a given doc
// (independent of threshold, since these tests only exercise
// predicate-level canopy bookkeeping, not real similarity scoring).
type fakeIndex struct {
	docToID    map[string]int
	neighbours map[string][]int
}

func (f *fakeIndex) DocToID(doc string) (int, bool) {
	id, ok := f.docToID[doc]
	return id, ok
}

func (f *fakeIndex) Search(doc string, threshold float64) []int {
	return f.neighbours[doc]
}
