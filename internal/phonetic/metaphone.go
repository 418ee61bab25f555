// Package phonetic implements a primary-key-only rendition of the
// Double Metaphone algorithm (Philips, 2000). No phonetic-encoding
// library turned up anywhere in the retrieval pack, so this is a
// from-scratch stdlib implementation grounded on the published
// algorithm description rather than on any example repo; see
// DESIGN.md for the justification.
package phonetic

import "strings"

// DoubleMetaphone returns the primary phonetic code for s. Only the
// first ("primary") branch of the original dual-code algorithm is
// computed — deterministic single-code output is enough for a block
// key, and the predicate library treats the result as one key among
// a set, not a (primary, secondary) pair.
func DoubleMetaphone(s string) string {
	w := prepare(s)
	if w == "" {
		return ""
	}

	var out strings.Builder
	n := len(w)
	i := 0

	isVowel := func(b byte) bool {
		switch b {
		case 'A', 'E', 'I', 'O', 'U', 'Y':
			return true
		}
		return false
	}
	at := func(idx int) byte {
		if idx < 0 || idx >= n {
			return 0
		}
		return w[idx]
	}

	// Skip certain silent letter combinations at the start.
	switch {
	case strings.HasPrefix(w, "GN"), strings.HasPrefix(w, "KN"),
		strings.HasPrefix(w, "PN"), strings.HasPrefix(w, "WR"),
		strings.HasPrefix(w, "PS"):
		i = 1
	case strings.HasPrefix(w, "X"):
		out.WriteByte('S')
		i = 1
	case strings.HasPrefix(w, "WH"):
		out.WriteByte('W')
		i = 2
	}

	for i < n && out.Len() < 10 {
		c := w[i]
		if isVowel(c) {
			if i == 0 {
				out.WriteByte('A')
			}
			i++
			continue
		}

		switch c {
		case 'B':
			out.WriteByte('P')
			i++
			if at(i) == 'B' {
				i++
			}
		case 'C':
			switch {
			case at(i+1) == 'H':
				out.WriteByte('X')
				i += 2
			case at(i+1) == 'I' && at(i+2) == 'A':
				out.WriteByte('X')
				i += 3
			case isFrontVowel(at(i + 1)):
				out.WriteByte('S')
				i += 2
			default:
				out.WriteByte('K')
				i++
				if at(i) == 'C' {
					i++
				}
			}
		case 'D':
			if at(i+1) == 'G' && isFrontVowel(at(i+2)) {
				out.WriteByte('J')
				i += 3
			} else {
				out.WriteByte('T')
				i++
				if at(i) == 'D' {
					i++
				}
			}
		case 'F':
			out.WriteByte('F')
			i++
			if at(i) == 'F' {
				i++
			}
		case 'G':
			switch {
			case at(i+1) == 'H' && !isVowel(at(i+2)) && i+2 < n:
				i += 2
			case at(i+1) == 'N':
				i += 2
			case isFrontVowel(at(i + 1)):
				out.WriteByte('J')
				i += 2
			default:
				out.WriteByte('K')
				i++
				if at(i) == 'G' {
					i++
				}
			}
		case 'H':
			if isVowel(at(i+1)) && (i == 0 || isVowel(at(i-1))) {
				out.WriteByte('H')
			}
			i++
		case 'J':
			out.WriteByte('J')
			i++
			if at(i) == 'J' {
				i++
			}
		case 'K':
			out.WriteByte('K')
			i++
			if at(i) == 'K' {
				i++
			}
		case 'L':
			out.WriteByte('L')
			i++
			if at(i) == 'L' {
				i++
			}
		case 'M':
			out.WriteByte('M')
			i++
			if at(i) == 'M' {
				i++
			}
		case 'N':
			out.WriteByte('N')
			i++
			if at(i) == 'N' {
				i++
			}
		case 'P':
			if at(i+1) == 'H' {
				out.WriteByte('F')
				i += 2
			} else {
				out.WriteByte('P')
				i++
				if at(i) == 'P' {
					i++
				}
			}
		case 'Q':
			out.WriteByte('K')
			i++
		case 'R':
			out.WriteByte('R')
			i++
			if at(i) == 'R' {
				i++
			}
		case 'S':
			switch {
			case at(i+1) == 'H':
				out.WriteByte('X')
				i += 2
			case at(i+1) == 'I' && (at(i+2) == 'O' || at(i+2) == 'A'):
				out.WriteByte('X')
				i += 3
			default:
				out.WriteByte('S')
				i++
				if at(i) == 'S' {
					i++
				}
			}
		case 'T':
			switch {
			case at(i+1) == 'H':
				out.WriteByte('0')
				i += 2
			case at(i+1) == 'I' && (at(i+2) == 'O' || at(i+2) == 'A'):
				out.WriteByte('X')
				i += 3
			default:
				out.WriteByte('T')
				i++
				if at(i) == 'T' {
					i++
				}
			}
		case 'V':
			out.WriteByte('F')
			i++
			if at(i) == 'V' {
				i++
			}
		case 'W':
			if isVowel(at(i + 1)) {
				out.WriteByte('W')
			}
			i++
		case 'X':
			out.WriteByte('K')
			out.WriteByte('S')
			i++
		case 'Z':
			out.WriteByte('S')
			i++
			if at(i) == 'Z' {
				i++
			}
		default:
			i++
		}
	}

	return out.String()
}

func isFrontVowel(b byte) bool {
	switch b {
	case 'E', 'I', 'Y':
		return true
	}
	return false
}

func prepare(s string) string {
	upper := strings.ToUpper(s)
	var out strings.Builder
	out.Grow(len(upper))
	for _, r := range upper {
		if r >= 'A' && r <= 'Z' {
			out.WriteRune(r)
		}
	}
	return out.String()
}
