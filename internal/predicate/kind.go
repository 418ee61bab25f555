package predicate

// Kind tags the concrete predicate function a non-compound, non-index
// Predicate wraps. Names match the §4.1 table of SPEC_FULL.md.
type Kind string

const (
	WholeField           Kind = "wholeField"
	Token                 Kind = "token"
	FirstToken            Kind = "firstToken"
	CommonInteger         Kind = "commonInteger"
	AlphaNumeric          Kind = "alphaNumeric"
	NearInteger           Kind = "nearInteger"
	HundredInteger        Kind = "hundredInteger"
	HundredIntegerOdd     Kind = "hundredIntegerOdd"
	FirstInteger          Kind = "firstInteger"
	TwoTokens             Kind = "twoTokens"
	ThreeTokens           Kind = "threeTokens"
	Fingerprint           Kind = "fingerprint"
	OneGramFingerprint    Kind = "oneGramFingerprint"
	TwoGramFingerprint    Kind = "twoGramFingerprint"
	FourGram              Kind = "fourGram"
	SixGram               Kind = "sixGram"
	SameThreeCharStart    Kind = "sameThreeCharStart"
	SameFiveCharStart     Kind = "sameFiveCharStart"
	SameSevenCharStart    Kind = "sameSevenCharStart"
	SuffixArray           Kind = "suffixArray"
	SortedAcronym         Kind = "sortedAcronym"
	DoubleMetaphone       Kind = "doubleMetaphone"
	MetaphoneToken        Kind = "metaphoneToken"
	LatLongGrid           Kind = "latLongGrid"
	OrderOfMagnitude      Kind = "orderOfMagnitude"
	RoundTo1              Kind = "roundTo1"
	WholeSet              Kind = "wholeSet"
	FirstSetElement       Kind = "firstSetElement"
	LastSetElement        Kind = "lastSetElement"
	MagnitudeOfCardinality Kind = "magnitudeOfCardinality"
	CommonSetElement      Kind = "commonSetElement"
	CommonTwoElements     Kind = "commonTwoElements"
	CommonThreeElements   Kind = "commonThreeElements"
	Exists                Kind = "Exists"

	// Indexed kinds: similarity-kind x role is carried on separate
	// fields (SimKind, Role) rather than folded into Kind, but the
	// kind tag distinguishes the family for dispatch and repr.
	TfidfCanopy       Kind = "TfidfCanopy"
	TfidfSearch       Kind = "TfidfSearch"
	LevenshteinCanopy Kind = "LevenshteinCanopy"
	LevenshteinSearch Kind = "LevenshteinSearch"

	Compound Kind = "Compound"
)

// SimKind distinguishes the TF-IDF preprocessing family for indexed
// TF-IDF predicates ("what the index vectorizes"); empty for
// Levenshtein predicates.
type SimKind string

const (
	SimNone SimKind = ""
	SimText SimKind = "Text"
	SimSet  SimKind = "Set"
	SimNGram SimKind = "NGram"
)

// kindsWithStringVariant lists the Kinds for which a StringPredicate
// wrapper (punctuation-stripped, whitespace-collapsed input) makes
// sense alongside the plain SimplePredicate wrapper, mirroring the
// original's pairing of the same func under both wrapper classes.
var kindsWithStringVariant = map[Kind]bool{
	Token: true, FirstToken: true, CommonInteger: true, AlphaNumeric: true,
	NearInteger: true, HundredInteger: true, HundredIntegerOdd: true,
	FirstInteger: true, TwoTokens: true, ThreeTokens: true, Fingerprint: true,
	OneGramFingerprint: true, TwoGramFingerprint: true, FourGram: true,
	SixGram: true, SameThreeCharStart: true, SameFiveCharStart: true,
	SameSevenCharStart: true, SuffixArray: true, SortedAcronym: true,
	DoubleMetaphone: true, MetaphoneToken: true,
}

// HasStringVariant reports whether kind may be wrapped as a
// StringPredicate (preprocessed input) in addition to a
// SimplePredicate (raw input).
func HasStringVariant(k Kind) bool { return kindsWithStringVariant[k] }
