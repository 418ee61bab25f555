package cover

// Counter is a multiset of pair ids, used to count how many
// same-block-key groups a pair co-occurs in (for comparison-cost
// estimation) and how many times a compound's component Counters
// agree on a pair.
type Counter map[int]int

// NewCounter builds a Counter from a slice of ids, counting
// repetitions.
func NewCounter(ids []int) Counter {
	c := make(Counter, len(ids))
	for _, id := range ids {
		c[id]++
	}
	return c
}

// Add increments the count for a block of ids (every pair id in the
// same block co-occurs once per block it shares).
func (c Counter) Add(ids []int) {
	for _, id := range ids {
		c[id]++
	}
}

// Total sums every count in the Counter.
func (c Counter) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Multiply implements SPEC_FULL.md §4.3's commutative Counter
// multiplication: (A*B)[k] = A[k]*B[k] for k in keys(A) ∩ keys(B).
// Iterates the smaller side's keys, per the spec's performance note.
func (c Counter) Multiply(other Counter) Counter {
	smaller, larger := c, other
	if len(other) < len(c) {
		smaller, larger = other, c
	}
	out := make(Counter)
	for k, n := range smaller {
		if m, ok := larger[k]; ok {
			out[k] = n * m
		}
	}
	return out
}

// Len is a size proxy used in place of Counter.__le__'s (keys ⊆ keys
// AND total ≤ total) relation (SPEC_FULL.md §9 Open Question: any
// equivalent heuristic is acceptable since the relation only chooses
// multiplication iteration order).
func (c Counter) Len() int { return len(c) }
