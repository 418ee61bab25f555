// Package record defines the value type the blocking-rule learner
// operates over: a field-name keyed map of tagged cells.
package record

// Kind tags the concrete shape stored in a Cell.
type Kind uint8

const (
	// Null marks an absent value, distinct from an empty string or zero.
	Null Kind = iota
	Text
	Number
	Set
	LatLong
)

// Cell is one field's value. Exactly one of the typed accessors is
// meaningful, selected by Kind.
type Cell struct {
	kind    Kind
	text    string
	number  float64
	set     []string
	lat     float64
	lon     float64
}

// NullCell is the absent-value sentinel.
var NullCell = Cell{kind: Null}

func TextCell(s string) Cell { return Cell{kind: Text, text: s} }

func NumberCell(n float64) Cell { return Cell{kind: Number, number: n} }

func SetCell(vals []string) Cell { return Cell{kind: Set, set: vals} }

func LatLongCell(lat, lon float64) Cell { return Cell{kind: LatLong, lat: lat, lon: lon} }

func (c Cell) Kind() Kind { return c.kind }

// Present reports whether the cell carries a real value.
func (c Cell) Present() bool { return c.kind != Null }

// Text returns the string value; callers must check Kind first.
func (c Cell) Text() string { return c.text }

func (c Cell) Number() float64 { return c.number }

func (c Cell) Set() []string { return c.set }

func (c Cell) LatLong() (float64, float64) { return c.lat, c.lon }

// Truthy mirrors the falsy/truthy test predicates.go applies before
// calling into a predicate's func: an absent cell, an empty string, an
// empty set, or a numeric zero are all falsy.
func (c Cell) Truthy() bool {
	switch c.kind {
	case Null:
		return false
	case Text:
		return c.text != ""
	case Set:
		return len(c.set) > 0
	case Number:
		return c.number != 0
	case LatLong:
		return c.lat != 0 || c.lon != 0
	default:
		return false
	}
}

// Record maps field name to cell. A field absent from the map is
// equivalent to holding NullCell.
type Record map[string]Cell

// Get returns the cell for field, or NullCell if the field is absent.
func (r Record) Get(field string) Cell {
	if c, ok := r[field]; ok {
		return c
	}
	return NullCell
}

// Pair is an ordered pair of records, the unit the learner labels and
// blocks on.
type Pair struct {
	A, B Record
}
