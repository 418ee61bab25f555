package predicate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/blockrule/internal/phonetic"
	"github.com/cognicore/blockrule/internal/record"
	"github.com/cognicore/blockrule/internal/textnorm"
)

// applyLibFunc dispatches a non-indexed, non-Exists, non-compound
// predicate's kind to its field function, on an already-truthy,
// already-preprocessed (for String family) cell.
func applyLibFunc(kind Kind, cell record.Cell) []string {
	switch kind {
	case WholeField:
		return []string{stringifyCell(cell)}
	case Token:
		return dedupeStrings(textnorm.Words(cell.Text()))
	case FirstToken:
		return nonEmpty(textnorm.FirstWord(cell.Text()))
	case CommonInteger:
		return commonIntegers(cell.Text())
	case AlphaNumeric:
		return dedupeStrings(textnorm.AlphaNumericTokens(cell.Text()))
	case NearInteger:
		return nearIntegers(cell.Text())
	case HundredInteger:
		return hundredIntegers(cell.Text())
	case HundredIntegerOdd:
		return hundredIntegersOdd(cell.Text())
	case FirstInteger:
		return nonEmpty(textnorm.FirstInteger(cell.Text()))
	case TwoTokens:
		return ngramsOfTokens(strings.Fields(cell.Text()), 2)
	case ThreeTokens:
		return ngramsOfTokens(strings.Fields(cell.Text()), 3)
	case Fingerprint:
		return []string{fingerprintOf(cell.Text())}
	case OneGramFingerprint:
		return []string{oneGramFingerprint(cell.Text())}
	case TwoGramFingerprint:
		return twoGramFingerprint(cell.Text())
	case FourGram:
		return dedupeStrings(textnorm.NGrams(strings.ReplaceAll(cell.Text(), " ", ""), 4))
	case SixGram:
		return dedupeStrings(textnorm.NGrams(strings.ReplaceAll(cell.Text(), " ", ""), 6))
	case SameThreeCharStart:
		return sameCharStart(cell.Text(), 3)
	case SameFiveCharStart:
		return sameCharStart(cell.Text(), 5)
	case SameSevenCharStart:
		return sameCharStart(cell.Text(), 7)
	case SuffixArray:
		return suffixArray(cell.Text())
	case SortedAcronym:
		return []string{sortedAcronym(cell.Text())}
	case DoubleMetaphone:
		return doubleMetaphoneCodes(cell.Text())
	case MetaphoneToken:
		return metaphoneTokenCodes(cell.Text())
	case LatLongGrid:
		return latLongGrid(cell)
	case OrderOfMagnitude:
		return orderOfMagnitude(cell.Number())
	case RoundTo1:
		return []string{roundTo1(cell.Number())}
	case WholeSet:
		return []string{fmt.Sprintf("%v", cell.Set())}
	case FirstSetElement:
		return []string{minString(cell.Set())}
	case LastSetElement:
		return []string{maxString(cell.Set())}
	case MagnitudeOfCardinality:
		return orderOfMagnitude(float64(len(cell.Set())))
	case CommonSetElement:
		return append([]string(nil), cell.Set()...)
	case CommonTwoElements:
		return ngramsOfTokens(sortedCopy(cell.Set()), 2)
	case CommonThreeElements:
		return ngramsOfTokens(sortedCopy(cell.Set()), 3)
	default:
		return nil
	}
}

func stringifyCell(c record.Cell) string {
	switch c.Kind() {
	case record.Text:
		return c.Text()
	case record.Number:
		return strconv.FormatFloat(c.Number(), 'g', -1, 64)
	case record.Set:
		return fmt.Sprintf("%v", c.Set())
	case record.LatLong:
		lat, lon := c.LatLong()
		return fmt.Sprintf("[%v %v]", lat, lon)
	default:
		return ""
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func commonIntegers(s string) []string {
	out := make([]string, 0)
	for _, i := range textnorm.Integers(s) {
		out = append(out, normalizeIntString(i))
	}
	return dedupeStrings(out)
}

func normalizeIntString(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return strconv.Itoa(n)
}

func nearIntegers(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, i := range textnorm.Integers(s) {
		n, err := strconv.Atoi(i)
		if err != nil {
			continue
		}
		for _, v := range []int{n - 1, n, n + 1} {
			str := strconv.Itoa(v)
			if !seen[str] {
				seen[str] = true
				out = append(out, str)
			}
		}
	}
	return out
}

func hundredIntegers(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, i := range textnorm.Integers(s) {
		n, err := strconv.Atoi(i)
		if err != nil {
			continue
		}
		str := strconv.Itoa(n)
		var key string
		if len(str) > 2 {
			key = str[:len(str)-2] + "00"
		} else {
			key = "00"
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

// hundredIntegersOdd reproduces the original's odd formula verbatim
// (SPEC_FULL.md §9): the trailing digit is always 0 or 1, encoding
// the integer's parity rather than its true last digit.
func hundredIntegersOdd(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, i := range textnorm.Integers(s) {
		n, err := strconv.Atoi(i)
		if err != nil {
			continue
		}
		str := strconv.Itoa(n)
		var prefix string
		if len(str) > 2 {
			prefix = str[:len(str)-2]
		}
		parity := n % 2
		if parity < 0 {
			parity = -parity
		}
		key := prefix + "0" + strconv.Itoa(parity)
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

// ngramsOfTokens returns every contiguous window of exactly n tokens.
// commonTwoTokens/commonThreeElements etc. on a field with fewer than
// n tokens yield no windows at all (the original's nested-range
// bookkeeping only ever emits full-length windows).
func ngramsOfTokens(tokens []string, n int) []string {
	var out []string
	seen := map[string]bool{}
	nt := len(tokens)
	for i := 0; i+n <= nt; i++ {
		window := strings.Join(tokens[i:i+n], " ")
		if !seen[window] {
			seen[window] = true
			out = append(out, window)
		}
	}
	return out
}

func fingerprintOf(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.TrimSpace(strings.Join(fields, ""))
}

func oneGramFingerprint(s string) string {
	grams := textnorm.NGrams(strings.ReplaceAll(s, " ", ""), 1)
	uniq := dedupeStrings(grams)
	sort.Strings(uniq)
	return strings.TrimSpace(strings.Join(uniq, ""))
}

func twoGramFingerprint(s string) []string {
	if len([]rune(s)) <= 1 {
		return nil
	}
	grams := textnorm.NGrams(strings.ReplaceAll(s, " ", ""), 2)
	uniq := dedupeStrings(grams)
	trimmed := make([]string, len(uniq))
	for i, g := range uniq {
		trimmed[i] = strings.TrimSpace(g)
	}
	sort.Strings(trimmed)
	return []string{strings.Join(trimmed, "")}
}

func sameCharStart(s string, n int) []string {
	stripped := strings.ReplaceAll(s, " ", "")
	r := []rune(stripped)
	if len(r) < n {
		return nil
	}
	return []string{string(r[:n])}
}

// suffixArray yields every suffix of the space-stripped string except
// the last 4 (SPEC_FULL.md §9 preserves this verbatim).
func suffixArray(s string) []string {
	stripped := strings.ReplaceAll(s, " ", "")
	r := []rune(stripped)
	n := len(r) - 4
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, string(r[i:]))
	}
	return out
}

func sortedAcronym(s string) string {
	fields := strings.Fields(s)
	initials := make([]string, 0, len(fields))
	for _, f := range fields {
		r := []rune(f)
		if len(r) > 0 {
			initials = append(initials, string(r[0]))
		}
	}
	sort.Strings(initials)
	return strings.Join(initials, "")
}

func doubleMetaphoneCodes(s string) []string {
	code := phonetic.DoubleMetaphone(s)
	if code == "" {
		return nil
	}
	return []string{code}
}

func metaphoneTokenCodes(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tok := range dedupeStrings(strings.Fields(s)) {
		code := phonetic.DoubleMetaphone(tok)
		if code != "" && !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}

func latLongGrid(c record.Cell) []string {
	lat, lon := c.LatLong()
	if lat == 0 && lon == 0 {
		return nil
	}
	return []string{fmt.Sprintf("[%v %v]", roundDigits(lat, 1), roundDigits(lon, 1))}
}

func roundDigits(v float64, digits int) float64 {
	mult := math.Pow(10, float64(digits))
	return math.Round(v*mult) / mult
}

func orderOfMagnitude(v float64) []string {
	if v <= 0 {
		return nil
	}
	return []string{strconv.Itoa(int(math.Round(math.Log10(v))))}
}

func roundTo1(v float64) string {
	if v == 0 {
		return "0"
	}
	absV := math.Abs(v)
	order := int(math.Floor(math.Log10(absV)))
	rounded := roundDigits(absV, -order)
	signed := math.Copysign(rounded, v)
	return strconv.Itoa(int(signed))
}

func minString(set []string) string {
	if len(set) == 0 {
		return ""
	}
	m := set[0]
	for _, s := range set[1:] {
		if s < m {
			m = s
		}
	}
	return m
}

func maxString(set []string) string {
	if len(set) == 0 {
		return ""
	}
	m := set[0]
	for _, s := range set[1:] {
		if s > m {
			m = s
		}
	}
	return m
}

func sortedCopy(set []string) []string {
	out := append([]string(nil), set...)
	sort.Strings(out)
	return out
}
