package cover

import (
	"sort"
)

// PredKey is a stable string identity for a predicate (its Key()
// representation) — cover.Cover is keyed by this rather than by a
// predicate pointer, so that compound keys (built by joining simple
// keys) can be looked up without holding live *predicate.Predicate
// values, keeping this package free of a dependency on package
// predicate.
type PredKey string

// Set is a set of pair ids.
type Set map[int]bool

// NewSet builds a Set from a slice of ids.
func NewSet(ids []int) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Intersect returns a new Set holding ids present in both s and other.
func (s Set) Intersect(other Set) Set {
	small, big := s, other
	if len(other) < len(s) {
		small, big = other, s
	}
	out := make(Set)
	for id := range small {
		if big[id] {
			out[id] = true
		}
	}
	return out
}

// Union returns a new Set holding every id present in s or other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for id := range s {
		out[id] = true
	}
	for id := range other {
		out[id] = true
	}
	return out
}

// Cover maps a predicate's stable key to the set of pair ids it
// blocks together (SPEC_FULL.md §4.3). Predicates with an empty cover
// are never stored.
type Cover struct {
	keys  []PredKey // insertion order, for deterministic iteration
	cover map[PredKey]Set
}

// New returns an empty Cover.
func New() *Cover {
	return &Cover{cover: make(map[PredKey]Set)}
}

// Set assigns the cover for key, skipping empty covers.
func (c *Cover) Set(key PredKey, ids Set) {
	if len(ids) == 0 {
		return
	}
	if _, exists := c.cover[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.cover[key] = ids
}

// Get returns the cover for key and whether it is present.
func (c *Cover) Get(key PredKey) (Set, bool) {
	s, ok := c.cover[key]
	return s, ok
}

// Len returns the number of predicates with a nonempty cover.
func (c *Cover) Len() int { return len(c.keys) }

// Keys returns predicate keys, sorted by string representation — the
// tie-break SPEC_FULL.md §4.5 "Determinism" mandates throughout.
func (c *Cover) Keys() []PredKey {
	out := append([]PredKey(nil), c.keys...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Union returns the union of every predicate's cover.
func (c *Cover) Union() Set {
	out := make(Set)
	for _, s := range c.cover {
		for id := range s {
			out[id] = true
		}
	}
	return out
}

// compoundKey joins component keys the same way predicate.Predicate's
// Key() joins a CompoundPredicate's parts, so a Cover-level compound
// key matches the key the predicate package would produce for the
// same component set (components must be pre-sorted by key, as
// predicate.NewCompound does).
func compoundKey(parts []PredKey) PredKey {
	out := "("
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += string(p)
	}
	return PredKey(out + ")")
}

// Compatible reports whether two predicate keys may appear together in
// the same compound. Callers pass a function backed by
// predicate.Predicate.CompoundsWith (package cover has no dependency
// on package predicate, per PredKey's doc comment); a nil compatible
// permits every pairing.
type Compatible func(a, b PredKey) bool

// Compound enumerates every subset of the cover's predicates of size
// 2..k (inclusive) whose members are pairwise compatible, sorted by
// representation before combining so the enumeration order — and
// therefore which subsets get generated first — is deterministic, and
// sets the compound's cover to the intersection of its components'
// covers, keeping only nonempty results (SPEC_FULL.md §4.3
// `compound(k)`). This is the one place arbitrary-length compound
// enumeration lives; callers needing Counter-based (rather than Set-
// based) compounding reuse SubsetsUpTo directly instead of
// re-deriving their own pairs-only loop.
func (c *Cover) Compound(k int, compatible Compatible) *Cover {
	out := New()
	for key, set := range c.cover {
		out.Set(key, set)
	}

	keys := c.Keys()
	combos := SubsetsUpTo(keys, k, compatible)
	for _, combo := range combos {
		inter := c.cover[combo[0]]
		for _, key := range combo[1:] {
			inter = inter.Intersect(c.cover[key])
			if len(inter) == 0 {
				break
			}
		}
		out.Set(compoundKey(combo), inter)
	}
	return out
}

// SubsetsUpTo returns every subset of keys with size 2..k (each subset
// itself sorted, since keys is already sorted on entry) whose members
// are pairwise compatible according to compatible (nil permits every
// pairing). Exported so callers building a compound candidate over a
// non-Set structure (e.g. blocklearn's Counter-keyed comparison-cost
// estimate) can drive the same combinatorial enumeration Cover.Compound
// uses, instead of reimplementing a pairs-only (k==2) special case.
func SubsetsUpTo(keys []PredKey, k int, compatible Compatible) [][]PredKey {
	var out [][]PredKey
	var rec func(start int, cur []PredKey)
	rec = func(start int, cur []PredKey) {
		if len(cur) >= 2 {
			out = append(out, append([]PredKey(nil), cur...))
		}
		if len(cur) == k {
			return
		}
		for i := start; i < len(keys); i++ {
			candidate := keys[i]
			if compatible != nil {
				ok := true
				for _, c := range cur {
					if !compatible(c, candidate) || !compatible(candidate, c) {
						ok = false
						break
					}
				}
				if !ok {
					continue
				}
			}
			rec(i+1, append(cur, candidate))
		}
	}
	rec(0, nil)
	return out
}

// Dominators implements SPEC_FULL.md §4.3 `dominators(cost)`: sort
// keys by (-cost[p], |cover[p]|) ascending (i.e. highest cost first,
// then smallest cover first among ties), then for each candidate in
// that order, drop it if a LATER predicate in the order has a cover
// that is a superset of the candidate's and a cost no higher.
func (c *Cover) Dominators(cost map[PredKey]int) []PredKey {
	order := c.Keys()
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := cost[order[i]], cost[order[j]]
		if ci != cj {
			return ci > cj
		}
		if len(c.cover[order[i]]) != len(c.cover[order[j]]) {
			return len(c.cover[order[i]]) < len(c.cover[order[j]])
		}
		return order[i] < order[j]
	})

	dropped := make(map[PredKey]bool)
	for i, candidate := range order {
		candidateCover := c.cover[candidate]
		candidateCost := cost[candidate]
		for j := i + 1; j < len(order); j++ {
			later := order[j]
			if dropped[later] {
				continue
			}
			if candidateCost >= cost[later] && supersetOf(c.cover[later], candidateCover) {
				dropped[candidate] = true
				break
			}
		}
	}

	out := make([]PredKey, 0, len(order))
	for _, key := range order {
		if !dropped[key] {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func supersetOf(s, sub Set) bool {
	if len(s) < len(sub) {
		return false
	}
	for id := range sub {
		if !s[id] {
			return false
		}
	}
	return true
}

// IntersectionUpdate restricts c's keys to those also present in
// other, in place, returning c for chaining.
func (c *Cover) IntersectionUpdate(other map[PredKey]bool) *Cover {
	kept := c.keys[:0]
	for _, key := range c.keys {
		if other[key] {
			kept = append(kept, key)
		} else {
			delete(c.cover, key)
		}
	}
	c.keys = kept
	return c
}
