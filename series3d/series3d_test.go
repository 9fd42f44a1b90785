package series3d

import (
	"math"
	"testing"

	"aranfmm/tables"
)

func TestEvaluateMonopole(t *testing.T) {
	q := 2.5
	s := New(0, 1)
	s.SetNegTerm(0, 0, complex(q*tables.B(0), 0))

	r := 3.0
	got := real(s.Evaluate(r, 1, 0, 1, 0))
	want := q / r
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("monopole evaluate = %v, want %v", got, want)
	}
}

func TestEvaluateConstantLocal(t *testing.T) {
	// A pure l=0 local term is a constant field independent of r.
	c := 4.0
	s := New(0, 0)
	s.SetPosTerm(0, 0, complex(c*tables.B(0), 0))
	got := real(s.Evaluate(1.5, 0.3, 0.95, 0.6, 0.8))
	want := c
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("constant local evaluate = %v, want %v", got, want)
	}
	got2 := real(s.Evaluate(7.2, -0.1, 0.99, 0.1, 0.99))
	if math.Abs(got2-want) > 1e-9 {
		t.Fatalf("constant local evaluate at second point = %v, want %v", got2, want)
	}
}

func TestTranslateVerticalMonopoleRoundTrip(t *testing.T) {
	// Converting a monopole into a local expansion about a center r
	// further along +z, then evaluating that expansion a short way further
	// along +z, must reproduce the monopole's field there (within the
	// expansion's truncation order): the probe lies r+probeR from the
	// source.
	q := 1.0
	src := New(0, 1)
	src.SetNegTerm(0, 0, complex(q*tables.B(0), 0))

	dst := New(12, 0)
	r := 4.0
	MultipoleToLocalVertical(src, dst, r, 1)

	probeR := 0.2 // close to dst's center so the truncated series converges tightly
	got := real(dst.Evaluate(probeR, 1, 0, 1, 0))
	want := q / (r + probeR)
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("M2L vertical evaluate = %v, want %v", got, want)
	}
}

func TestMultipoleToLocalRotatedMatchesVertical(t *testing.T) {
	// Translating along +z through the generic rotate-based path must
	// agree with the direct vertical formula.
	q := 1.0
	src := New(0, 1)
	src.SetNegTerm(0, 0, complex(q*tables.B(0), 0))

	dstVertical := New(8, 0)
	MultipoleToLocalVertical(src, dstVertical, 3.0, 1)

	dstRotated := New(8, 0)
	MultipoleToLocal(Rotate, src, 0, 0, 3.0, dstRotated)

	for l := 0; l <= 8; l++ {
		for m := 0; m <= l; m++ {
			a := dstVertical.PosTerm(l, m)
			b := dstRotated.PosTerm(l, m)
			if math.Abs(real(a)-real(b)) > 1e-6 || math.Abs(imag(a)-imag(b)) > 1e-6 {
				t.Fatalf("term (%d,%d): vertical=%v rotated=%v", l, m, a, b)
			}
		}
	}
}

func TestMultipoleToLocalOffAxisMatchesDirectKernel(t *testing.T) {
	q := 1.0
	src := New(0, 1)
	src.SetNegTerm(0, 0, complex(q*tables.B(0), 0))

	// source at origin, destination center offset (3,4,0) away (r=5).
	dst := New(14, 0)
	MultipoleToLocal(Rotate, src, 3, 4, 0, dst)

	// probe close to the destination center.
	px, py, pz := 0.05, -0.03, 0.02
	got := real(dst.EvaluateCartesian(px, py, pz))

	// absolute probe position = dst center + probe offset.
	ax, ay, az := 3+px, 4+py, 0+pz
	want := q / math.Sqrt(ax*ax+ay*ay+az*az)

	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("off-axis M2L evaluate = %v, want %v", got, want)
	}
}
