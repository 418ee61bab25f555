package cover

import "testing"

func TestEnumeratorPairIDIsOrderIndependent(t *testing.T) {
	e1 := NewEnumerator()
	id1 := e1.PairID(3, 7)

	e2 := NewEnumerator()
	id2 := e2.PairID(7, 3)

	if id1 != id2 {
		t.Errorf("PairID(3,7) = %d, PairID(7,3) = %d, want equal", id1, id2)
	}
}

func TestEnumerateBlockIsOrderIndependent(t *testing.T) {
	e1 := NewEnumerator()
	out1 := EnumerateBlock(e1, []int{1, 2, 3})

	e2 := NewEnumerator()
	out2 := EnumerateBlock(e2, []int{3, 1, 2})

	if len(out1) != 3 || len(out2) != 3 {
		t.Fatalf("expected 3 pairs from a 3-element block, got %d and %d", len(out1), len(out2))
	}
	if !sameIntSet(out1, out2) {
		t.Errorf("EnumerateBlock should be independent of input order: %v vs %v", out1, out2)
	}
}

func TestEnumerateCrossBlock(t *testing.T) {
	e := NewEnumerator()
	out := EnumerateCrossBlock(e, []int{1, 2}, []int{10, 20})
	if len(out) != 4 {
		t.Fatalf("expected 4 cross pairs, got %d", len(out))
	}
}

func TestCounterMultiply(t *testing.T) {
	a := NewCounter([]int{1, 1, 2, 3})
	b := NewCounter([]int{1, 2, 2, 4})

	got := a.Multiply(b)
	want := Counter{1: 2, 2: 2}
	if len(got) != len(want) {
		t.Fatalf("Multiply() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Multiply()[%d] = %d, want %d", k, got[k], v)
		}
	}
}

func TestCounterMultiplyCommutative(t *testing.T) {
	a := NewCounter([]int{1, 1, 2})
	b := NewCounter([]int{1, 2, 2, 2})

	ab := a.Multiply(b)
	ba := b.Multiply(a)
	if len(ab) != len(ba) {
		t.Fatalf("Multiply not commutative in length: %v vs %v", ab, ba)
	}
	for k, v := range ab {
		if ba[k] != v {
			t.Errorf("Multiply not commutative at key %d: %d vs %d", k, v, ba[k])
		}
	}
}

func TestCoverCompound(t *testing.T) {
	c := New()
	c.Set("p1", NewSet([]int{1, 2, 3}))
	c.Set("p2", NewSet([]int{2, 3, 4}))

	compound := c.Compound(2, nil)
	set, ok := compound.Get(compoundKey([]PredKey{"p1", "p2"}))
	if !ok {
		t.Fatal("expected compound(p1,p2) to be present")
	}
	if !sameSet(set, NewSet([]int{2, 3})) {
		t.Errorf("compound(p1,p2) cover = %v, want {2,3}", set)
	}
}

func TestCoverCompoundReachesArbitraryK(t *testing.T) {
	c := New()
	c.Set("p1", NewSet([]int{1, 2, 3}))
	c.Set("p2", NewSet([]int{2, 3, 4}))
	c.Set("p3", NewSet([]int{2, 3, 5}))

	compound := c.Compound(3, nil)
	set, ok := compound.Get(compoundKey([]PredKey{"p1", "p2", "p3"}))
	if !ok {
		t.Fatal("expected a 3-way compound(p1,p2,p3) to be present when k=3")
	}
	if !sameSet(set, NewSet([]int{2, 3})) {
		t.Errorf("compound(p1,p2,p3) cover = %v, want {2,3}", set)
	}
}

func TestCoverCompoundRespectsCompatibility(t *testing.T) {
	c := New()
	c.Set("p1", NewSet([]int{1, 2}))
	c.Set("p2", NewSet([]int{1, 2}))

	incompatible := func(a, b PredKey) bool { return false }
	compound := c.Compound(2, incompatible)
	if _, ok := compound.Get(compoundKey([]PredKey{"p1", "p2"})); ok {
		t.Error("expected an incompatible pair to be excluded from Compound's output")
	}
}

func TestCoverDominatorsDropsDominatedCandidate(t *testing.T) {
	c := New()
	c.Set("cheap-big", NewSet([]int{1, 2, 3, 4}))
	c.Set("expensive-small", NewSet([]int{1, 2}))

	cost := map[PredKey]int{"cheap-big": 10, "expensive-small": 50}
	out := c.Dominators(cost)

	for _, k := range out {
		if k == "expensive-small" {
			t.Errorf("expected expensive-small to be dominated by cheap-big, got %v", out)
		}
	}
}

func TestCoverIntersectionUpdate(t *testing.T) {
	c := New()
	c.Set("p1", NewSet([]int{1}))
	c.Set("p2", NewSet([]int{2}))
	c.IntersectionUpdate(map[PredKey]bool{"p1": true})

	if c.Len() != 1 {
		t.Fatalf("expected 1 key after intersection update, got %d", c.Len())
	}
	if _, ok := c.Get("p2"); ok {
		t.Error("expected p2 to be dropped by IntersectionUpdate")
	}
}

func sameIntSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

func sameSet(a, b Set) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
