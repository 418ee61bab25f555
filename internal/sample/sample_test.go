package sample

import "testing"

func TestScaleFactor(t *testing.T) {
	s := NewSet([]int{1, 2, 3}).WithOriginalLength(100)
	got := s.ScaleFactor()
	want := (100.0 * 99.0) / (3.0 * 2.0)
	if got != want {
		t.Errorf("ScaleFactor() = %v, want %v", got, want)
	}
}

func TestScaleFactorSingleItemIsOne(t *testing.T) {
	s := NewSet([]int{1}).WithOriginalLength(50)
	if got := s.ScaleFactor(); got != 1 {
		t.Errorf("ScaleFactor() on a single-item sample = %v, want 1", got)
	}
}

func TestRatioFactor(t *testing.T) {
	s := NewSet([]int{1, 2}).WithOriginalLength(20)
	if got := s.RatioFactor(); got != 10 {
		t.Errorf("RatioFactor() = %v, want 10", got)
	}
}

func TestOffsetIDs(t *testing.T) {
	got := OffsetIDs([]int{0, 1, 2}, 10)
	want := []int{10, 11, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OffsetIDs()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNewSetDefaultsOriginalLengthToOwnLength(t *testing.T) {
	s := NewSet([]int{1, 2, 3})
	if s.OriginalLength() != 3 {
		t.Errorf("OriginalLength() = %d, want 3", s.OriginalLength())
	}
}
