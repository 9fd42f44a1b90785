package kernel_test

import (
	"math"
	"testing"

	"aranfmm/kernel"
	"aranfmm/series3d"
)

func TestNewtonOperators3DP2PMatchesDirectPotential(t *testing.T) {
	a := &kernel.Charge3D{X: 0, Y: 0, Z: 0, Q: 2}
	b := &kernel.Charge3D{X: 3, Y: 4, Z: 0, Q: 5} // |a-b| = 5

	ops := kernel.NewtonOperators3D(series3d.Direct)
	ops.P2P(a, b)

	if d := math.Abs(a.Field - 1.0); d > 1e-12 { // 5/5
		t.Errorf("a.Field = %v, want 1", a.Field)
	}
	if d := math.Abs(b.Field - 0.4); d > 1e-12 { // 2/5
		t.Errorf("b.Field = %v, want 0.4", b.Field)
	}
}

func TestNewtonOperators3DP2PSkipsCoincidentPoints(t *testing.T) {
	a := &kernel.Charge3D{X: 1, Y: 1, Z: 1, Q: 1}
	b := &kernel.Charge3D{X: 1, Y: 1, Z: 1, Q: 1}

	ops := kernel.NewtonOperators3D(series3d.Direct)
	ops.P2P(a, b)

	if a.Field != 0 || b.Field != 0 {
		t.Fatalf("expected no field contribution for coincident points, got a=%v b=%v", a.Field, b.Field)
	}
}
