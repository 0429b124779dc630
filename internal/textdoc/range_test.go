package textdoc

import "testing"

func TestRangeBasics(t *testing.T) {
	r := NewRange(2, 6)

	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
	if r.IsEmpty() {
		t.Error("IsEmpty() = true for a 4-byte range")
	}
	if !r.IsValid() {
		t.Error("IsValid() = false for a forward range")
	}
	if (Range{Start: 6, End: 2}).IsValid() {
		t.Error("IsValid() = true for an inverted range")
	}
	if r.String() != "[2:6)" {
		t.Errorf("String() = %q, want %q", r.String(), "[2:6)")
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(2, 6)

	tests := []struct {
		off  Offset
		want bool
	}{
		{1, false},
		{2, true},
		{5, true},
		{6, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.off); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}
}

func TestRangeOverlapsAndIntersect(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Range
		overlaps bool
		want     Range
	}{
		{"disjoint", NewRange(0, 2), NewRange(4, 6), false, NewRange(4, 4)},
		{"touching is not overlap", NewRange(0, 3), NewRange(3, 6), false, NewRange(3, 3)},
		{"partial", NewRange(0, 4), NewRange(2, 6), true, NewRange(2, 4)},
		{"contained", NewRange(0, 10), NewRange(3, 5), true, NewRange(3, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps = %v, want %v", got, tt.overlaps)
			}
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect = %v, want %v", got, tt.want)
			}
		})
	}
}
