package tables

import (
	"math"
	"testing"
)

func TestLegendreBaseCases(t *testing.T) {
	x := 0.3
	lg := NewLegendre(4, x, math.Sqrt(1-x*x))
	if got := lg.At(0, 0); got != 1 {
		t.Fatalf("P_0^0(%v) = %v, want 1", x, got)
	}
	if got := lg.At(1, 0); math.Abs(got-x) > 1e-12 {
		t.Fatalf("P_1^0(%v) = %v, want %v", x, got, x)
	}
	wantP11 := -math.Sqrt(1 - x*x)
	if got := lg.At(1, 1); math.Abs(got-wantP11) > 1e-12 {
		t.Fatalf("P_1^1(%v) = %v, want %v", x, got, wantP11)
	}
}

func TestLegendreKnownP2(t *testing.T) {
	// P_2^0(x) = (3x^2-1)/2, standard (unnormalized) Legendre polynomial.
	x := 0.6
	lg := NewLegendre(2, x, math.Sqrt(1-x*x))
	want := (3*x*x - 1) / 2
	if got := lg.At(2, 0); math.Abs(got-want) > 1e-10 {
		t.Fatalf("P_2^0(%v) = %v, want %v", x, got, want)
	}
}

func TestEvalLegendreMatchesTable(t *testing.T) {
	x := -0.4
	lg := NewLegendre(6, x, math.Sqrt(1-x*x))
	for l := 0; l <= 6; l++ {
		for m := 0; m <= l; m++ {
			got := EvalLegendre(l, m, x)
			want := lg.At(l, m)
			if math.Abs(got-want) > 1e-10 {
				t.Fatalf("EvalLegendre(%d,%d,%v) = %v, want %v", l, m, x, got, want)
			}
		}
	}
}
