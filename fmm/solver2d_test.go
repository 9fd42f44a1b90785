package fmm_test

import (
	"math"
	"math/cmplx"
	"testing"

	"aranfmm/fmm"
	"aranfmm/kernel"
	"aranfmm/tree"
)

func buildCircleCharges(n int, radius float64) []*kernel.Charge2D {
	out := make([]*kernel.Charge2D, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out[i] = &kernel.Charge2D{X: radius * math.Cos(theta), Y: radius * math.Sin(theta), Q: 1}
	}
	return out
}

func directSum2D(charges []*kernel.Charge2D) []complex128 {
	out := make([]complex128, len(charges))
	for i, dst := range charges {
		var sum complex128
		for j, src := range charges {
			if i == j {
				continue
			}
			sum += complex(src.Q, 0) / (complex(dst.X, dst.Y) - complex(src.X, src.Y))
		}
		out[i] = sum
	}
	return out
}

// TestSolver2DOneCircleMatchesDirectSum is the "One-circle 2D" seed
// scenario: twelve unit charges equispaced on a circle, checked against
// the brute-force O(N^2) sum.
func TestSolver2DOneCircleMatchesDirectSum(t *testing.T) {
	charges := buildCircleCharges(12, 1.0)
	want := directSum2D(charges)

	bound := tree.Bound2D{Min: [2]float64{-2, -2}, Max: [2]float64{2, 2}}
	qt := tree.NewQuadTree[*kernel.Charge2D, fmm.NodeData2D](bound, 2, 16)
	for _, c := range charges {
		qt.Insert(c)
	}

	const posdeg, negdeg = 12, 12
	qt.Traverse(tree.PreOrder, func(n tree.NodeInfo2D[*kernel.Charge2D, fmm.NodeData2D]) {
		*n.Data = fmm.NewNodeData2D(posdeg, negdeg)
	})

	cfg, err := fmm.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	solver := fmm.NewSolver2D[*kernel.Charge2D, fmm.NodeData2D](qt, kernel.NewtonOperators2D(), cfg)
	if err := solver.Solve(posdeg); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for i, c := range charges {
		if d := cmplx.Abs(c.Field - want[i]); d > 1e-6 {
			t.Errorf("charge %d: field %v, want %v (diff %g)", i, c.Field, want[i], d)
		}
	}
}

// twoCorneredClusters builds two tight, widely-separated point clusters
// so the dual traversal's bounding-box separation test is guaranteed to
// classify the clusters as a far pair once the tree has drilled down to
// their occupied leaves.
func twoCorneredClusters() []*kernel.Charge2D {
	var out []*kernel.Charge2D
	for i := 0; i < 4; i++ {
		d := float64(i) * 0.01
		out = append(out,
			&kernel.Charge2D{X: -9 + d, Y: -9 + d, Q: 1 + float64(i)},
			&kernel.Charge2D{X: 9 - d, Y: 9 - d, Q: 2 + float64(i)},
		)
	}
	return out
}

func newClusterTree(charges []*kernel.Charge2D, posdeg, negdeg int) *tree.QuadTree[*kernel.Charge2D, fmm.NodeData2D] {
	bound := tree.Bound2D{Min: [2]float64{-10, -10}, Max: [2]float64{10, 10}}
	qt := tree.NewQuadTree[*kernel.Charge2D, fmm.NodeData2D](bound, 1, 24)
	for _, c := range charges {
		qt.Insert(c)
	}
	qt.Traverse(tree.PreOrder, func(n tree.NodeInfo2D[*kernel.Charge2D, fmm.NodeData2D]) {
		*n.Data = fmm.NewNodeData2D(posdeg, negdeg)
	})
	return qt
}

// TestSolver2DVetoFallsBackToP2P exercises S4's veto contract directly:
// an operator set whose MultipoleToLocal always returns false must
// still produce the exact direct-sum result via the P2P fallback, even
// though the two clusters below are genuinely far apart (so the
// unmodified operator set would otherwise use M2L for them).
func TestSolver2DVetoFallsBackToP2P(t *testing.T) {
	charges := twoCorneredClusters()
	want := directSum2D(charges)
	qt := newClusterTree(charges, 10, 10)

	ops := kernel.NewtonOperators2D()
	vetoed := false
	ops.MultipoleToLocal = func(srcCenter [2]float64, src *fmm.NodeData2D, dstCenter [2]float64, dst *fmm.NodeData2D) bool {
		vetoed = true
		return false
	}

	cfg, _ := fmm.NewConfig()
	solver := fmm.NewSolver2D[*kernel.Charge2D, fmm.NodeData2D](qt, ops, cfg)
	if err := solver.Solve(10); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !vetoed {
		t.Fatal("expected the dual traversal to reach at least one far pair and invoke MultipoleToLocal")
	}
	for i, c := range charges {
		if d := cmplx.Abs(c.Field - want[i]); d > 1e-9 {
			t.Errorf("charge %d: field %v, want %v", i, c.Field, want[i])
		}
	}
}

// TestSolver2DAsymmetricVetoIsContractViolation checks spec.md's
// invariant that M2L's veto must agree for both directions of a node
// pair: an operator set that vetoes only one direction must fail the
// solve with a ContractViolation.
func TestSolver2DAsymmetricVetoIsContractViolation(t *testing.T) {
	charges := twoCorneredClusters()
	qt := newClusterTree(charges, 10, 10)

	ops := kernel.NewtonOperators2D()
	calls := 0
	ops.MultipoleToLocal = func(srcCenter [2]float64, src *fmm.NodeData2D, dstCenter [2]float64, dst *fmm.NodeData2D) bool {
		calls++
		return calls%2 == 0
	}

	cfg, _ := fmm.NewConfig()
	solver := fmm.NewSolver2D[*kernel.Charge2D, fmm.NodeData2D](qt, ops, cfg)
	err := solver.Solve(10)
	if err == nil {
		t.Fatal("expected a ContractViolation, got nil")
	}
	if _, ok := err.(*fmm.ContractViolation); !ok {
		t.Fatalf("expected *fmm.ContractViolation, got %T: %v", err, err)
	}
}
