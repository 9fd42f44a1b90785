package kernel_test

import (
	"math/cmplx"
	"testing"

	"aranfmm/fmm"
	"aranfmm/kernel"
)

func TestNewtonOperators2DP2PMatchesDirectPotential(t *testing.T) {
	a := &kernel.Charge2D{X: 0, Y: 0, Q: 2}
	b := &kernel.Charge2D{X: 1, Y: 0, Q: 3}

	ops := kernel.NewtonOperators2D()
	ops.P2P(a, b)

	want := complex(3, 0) / (complex(0, 0) - complex(1, 0))
	if d := cmplx.Abs(a.Field - want); d > 1e-12 {
		t.Errorf("a.Field = %v, want %v", a.Field, want)
	}
	wantB := complex(2, 0) / (complex(1, 0) - complex(0, 0))
	if d := cmplx.Abs(b.Field - wantB); d > 1e-12 {
		t.Errorf("b.Field = %v, want %v", b.Field, wantB)
	}
}

func TestNewtonOperators2DP2PSkipsCoincidentPoints(t *testing.T) {
	a := &kernel.Charge2D{X: 1, Y: 1, Q: 1}
	b := &kernel.Charge2D{X: 1, Y: 1, Q: 1}

	ops := kernel.NewtonOperators2D()
	ops.P2P(a, b)

	if a.Field != 0 || b.Field != 0 {
		t.Fatalf("expected no field contribution for coincident points, got a=%v b=%v", a.Field, b.Field)
	}
}

// TestNewtonOperators2DP2MThenEvaluateMatchesDirect checks that routing a
// single charge through P2M (into a multipole about some center) and
// evaluating it at a distant point with Evaluate reproduces the direct
// 1/(z-z0) potential, confirming the hand-derived multipole coefficient
// formula.
func TestNewtonOperators2DP2MThenEvaluateMatchesDirect(t *testing.T) {
	ops := kernel.NewtonOperators2D()
	src := &kernel.Charge2D{X: -1, Y: 0.5, Q: 2}
	center := [2]float64{-2, 0}

	nd := fmm.NewNodeData2D(1, 16)
	ops.P2M([]*kernel.Charge2D{src}, center, &nd)

	evalAt := complex(5, 1)
	got := nd.Multipole.Evaluate(evalAt)

	z0 := complex(center[0], center[1])
	srcZ := complex(src.X, src.Y)
	want := complex(src.Q, 0) / ((z0 + evalAt) - srcZ)

	if d := cmplx.Abs(got - want); d > 1e-6 {
		t.Errorf("multipole-evaluated potential = %v, want %v (diff %g)", got, want, d)
	}
}
