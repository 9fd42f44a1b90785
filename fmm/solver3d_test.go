package fmm_test

import (
	"math"
	"testing"

	"aranfmm/fmm"
	"aranfmm/kernel"
	"aranfmm/series3d"
	"aranfmm/tree"
)

func buildSphereCharges(n int, radius float64) []*kernel.Charge3D {
	out := make([]*kernel.Charge3D, n)
	for i := 0; i < n; i++ {
		theta := math.Pi * (float64(i) + 0.5) / float64(n)
		phi := 2.399963 * float64(i)
		out[i] = &kernel.Charge3D{
			X: radius * math.Sin(theta) * math.Cos(phi),
			Y: radius * math.Sin(theta) * math.Sin(phi),
			Z: radius * math.Cos(theta),
			Q: 1,
		}
	}
	return out
}

func directSum3D(charges []*kernel.Charge3D) []float64 {
	out := make([]float64, len(charges))
	for i, dst := range charges {
		var sum float64
		for j, src := range charges {
			if i == j {
				continue
			}
			dx, dy, dz := dst.X-src.X, dst.Y-src.Y, dst.Z-src.Z
			sum += src.Q / math.Sqrt(dx*dx+dy*dy+dz*dz)
		}
		out[i] = sum
	}
	return out
}

// TestSolver3DOneSphereMatchesDirectSum checks twelve unit charges
// spread over a sphere (the 3D analogue of the "one-circle" seed
// scenario) against the brute-force O(N^2) sum.
func TestSolver3DOneSphereMatchesDirectSum(t *testing.T) {
	charges := buildSphereCharges(12, 1.0)
	want := directSum3D(charges)

	bound := tree.Bound3D{Min: [3]float64{-2, -2, -2}, Max: [3]float64{2, 2, 2}}
	ot := tree.NewOctTree[*kernel.Charge3D, fmm.NodeData3D](bound, 2, 16)
	for _, c := range charges {
		ot.Insert(c)
	}

	const posdeg, negdeg = 10, 10
	ot.Traverse(tree.PreOrder, func(n tree.NodeInfo3D[*kernel.Charge3D, fmm.NodeData3D]) {
		*n.Data = fmm.NewNodeData3D(posdeg, negdeg)
	})

	cfg, err := fmm.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	solver := fmm.NewSolver3D[*kernel.Charge3D, fmm.NodeData3D](ot, kernel.NewtonOperators3D(series3d.Direct), cfg)
	if err := solver.Solve(posdeg); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for i, c := range charges {
		if d := math.Abs(c.Field - want[i]); d > 1e-4 {
			t.Errorf("charge %d: field %v, want %v (diff %g)", i, c.Field, want[i], d)
		}
	}
}
