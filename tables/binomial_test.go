package tables

import "testing"

func TestBinomialMatchesSlow(t *testing.T) {
	for l := 0; l <= 12; l++ {
		for m := 0; m <= l; m++ {
			got := C(l, m)
			want := SlowBinomial(l, m)
			if got != want {
				t.Fatalf("C(%d,%d) = %v, want %v", l, m, got, want)
			}
		}
	}
}

func TestBinomialOutOfRangeIsZero(t *testing.T) {
	if v := C(3, 5); v != 0 {
		t.Fatalf("C(3,5) = %v, want 0", v)
	}
	if v := C(3, -1); v != 0 {
		t.Fatalf("C(3,-1) = %v, want 0", v)
	}
}

func TestBinomialGrowsBeyondInitialCapacity(t *testing.T) {
	// Binomial starts with an lmax of 8; requesting well beyond that must
	// trigger growth without corrupting previously-cached rows.
	before := C(5, 2)
	got := C(40, 17)
	want := SlowBinomial(40, 17)
	if got != want {
		t.Fatalf("C(40,17) = %v, want %v", got, want)
	}
	if after := C(5, 2); after != before {
		t.Fatalf("C(5,2) changed after growth: %v -> %v", before, after)
	}
}
