package tables

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestHarmonicHermitianSymmetry(t *testing.T) {
	theta, phi := 1.1, 0.7
	for l := 0; l <= 5; l++ {
		for m := 0; m <= l; m++ {
			pos := EvaluateHarmonic(l, m, theta, phi)
			neg := EvaluateHarmonic(l, -m, theta, phi)
			want := SphSym(pos, m)
			if cmplx.Abs(neg-want) > 1e-9 {
				t.Fatalf("Y_%d^%d symmetry: got %v, want %v", l, -m, neg, want)
			}
		}
	}
}

func TestHarmonicZerothDegree(t *testing.T) {
	want := complex(1/math.Sqrt(4*math.Pi), 0)
	got := EvaluateHarmonic(0, 0, 0.3, 0.9)
	if cmplx.Abs(got-want) > 1e-9 {
		t.Fatalf("Y_0^0 = %v, want %v", got, want)
	}
}
