package textnorm

import "testing"

func TestStripPunctuation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"commas and periods", "Annie's Cafe, Inc.", "Annie's Cafe Inc"},
		{"keeps apostrophe", "O'Brien's", "O'Brien's"},
		{"symbols", "100% sure #1", "100 sure 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripPunctuation(tt.in); got != tt.want {
				t.Errorf("StripPunctuation(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  Annie's   Cafe,  Inc.  ")
	want := "Annie's Cafe Inc"
	if got != want {
		t.Errorf("CollapseWhitespace = %q, want %q", got, want)
	}
}

func TestWords(t *testing.T) {
	got := Words("123 Main St., Apt #4")
	want := []string{"123", "Main", "St", "Apt", "4"}
	if !equalSlices(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
}

func TestFirstWord(t *testing.T) {
	if got := FirstWord("  Main St"); got != "Main" {
		t.Errorf("FirstWord = %q, want %q", got, "Main")
	}
	if got := FirstWord("###"); got != "" {
		t.Errorf("FirstWord on no-word input = %q, want empty", got)
	}
}

func TestIntegersAndFirstInteger(t *testing.T) {
	ints := Integers("Unit 12B, Floor 300")
	if !equalSlices(ints, []string{"12", "300"}) {
		t.Errorf("Integers = %v", ints)
	}
	if got := FirstInteger("Unit 12B"); got != "12" {
		t.Errorf("FirstInteger = %q, want 12", got)
	}
	if got := FirstInteger("no digits"); got != "" {
		t.Errorf("FirstInteger on no-digit input = %q, want empty", got)
	}
}

func TestAlphaNumericTokens(t *testing.T) {
	got := AlphaNumericTokens("Suite 4B near Main and 2nd")
	want := []string{"4B", "2nd"}
	if !equalSlices(got, want) {
		t.Errorf("AlphaNumericTokens = %v, want %v", got, want)
	}
}

func TestNGrams(t *testing.T) {
	got := NGrams("abcd", 2)
	want := []string{"ab", "bc", "cd"}
	if !equalSlices(got, want) {
		t.Errorf("NGrams = %v, want %v", got, want)
	}
	if got := NGrams("a", 2); got != nil {
		t.Errorf("NGrams on too-short input = %v, want nil", got)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
