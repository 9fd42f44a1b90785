package tables

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestWignerIdentityAtZeroAngles(t *testing.T) {
	w := NewWigner(0, 0, 0, 4)
	for l := 0; l <= 4; l++ {
		for mp := 0; mp <= l; mp++ {
			for m := -l; m <= l; m++ {
				got := w.Term(l, mp, m)
				want := complex(0, 0)
				if m == mp {
					want = 1
				}
				if cmplx.Abs(got-want) > 1e-9 {
					t.Fatalf("D^%d_{%d,%d}(0,0,0) = %v, want %v", l, mp, m, got, want)
				}
			}
		}
	}
}

func TestWignerDegreeOneAtNinetyDegrees(t *testing.T) {
	w := NewWigner(0, math.Pi/2, 0, 1)
	// d^1_{1,1}(pi/2) = cos^2(pi/4) = 1/2.
	got := w.Term(1, 1, 1)
	want := complex(0.5, 0)
	if cmplx.Abs(got-want) > 1e-9 {
		t.Fatalf("d^1_{1,1}(pi/2) = %v, want %v", got, want)
	}
	// d^1_{1,-1}(pi/2) = sin^2(pi/4) = 1/2.
	got = w.Term(1, 1, -1)
	if cmplx.Abs(got-want) > 1e-9 {
		t.Fatalf("d^1_{1,-1}(pi/2) = %v, want %v", got, want)
	}
}

func TestWignerRowNormalizedUpToDegreeThree(t *testing.T) {
	// Each row of a Wigner-d matrix is a rotation matrix row: sum of
	// squares over m must equal 1 for every (l, m').
	w := NewWigner(0.3, 0.8, -0.4, 3)
	for l := 0; l <= 3; l++ {
		for mp := 0; mp <= l; mp++ {
			sum := 0.0
			for m := -l; m <= l; m++ {
				a := cmplx.Abs(w.Term(l, mp, m))
				sum += a * a
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Fatalf("row l=%d m'=%d sum|D|^2 = %v, want 1", l, mp, sum)
			}
		}
	}
}

func TestWignerRepositoryCachesByExactKey(t *testing.T) {
	repo := NewWignerRepository()
	a := repo.Lookup(0.1, 0.2, 0.3, 2)
	b := repo.Lookup(0.1, 0.2, 0.3, 2)
	if a != b {
		t.Fatalf("expected identical cached Wigner table for identical key")
	}
	c := repo.Lookup(0.1, 0.2, 0.30000001, 2)
	if a == c {
		t.Fatalf("expected distinct Wigner table for distinct key (exact keying, no tolerance)")
	}
}

func TestWignerRepositoryExtendsInPlace(t *testing.T) {
	repo := NewWignerRepository()
	w := repo.Lookup(0.5, 0.5, 0.5, 1)
	if w.Lmax != 1 {
		t.Fatalf("Lmax = %d, want 1", w.Lmax)
	}
	w2 := repo.Lookup(0.5, 0.5, 0.5, 3)
	if w2.Lmax != 3 {
		t.Fatalf("Lmax after extend = %d, want 3", w2.Lmax)
	}
	if w != w2 {
		t.Fatalf("expected the same table instance to be extended in place")
	}
}
