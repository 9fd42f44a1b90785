package fmm_test

import (
	"errors"
	"testing"

	"aranfmm/fmm"
	"aranfmm/kernel"
	"aranfmm/tree"
)

// TestSolver2DStrictPrecisionReportsTruncation exercises Config.StrictPrecision
// (spec.md §7(b)/§9(c)): giving leaves a higher multipole degree than
// their ancestors forces M2M to truncate degrees it can't hold, which
// series2d counts as a precision warning. With StrictPrecision off this
// is silent (as spec.md's non-fatal baseline requires); with it on,
// Solve must surface a *fmm.PrecisionError instead of returning nil.
func TestSolver2DStrictPrecisionReportsTruncation(t *testing.T) {
	build := func(strict bool) error {
		charges := buildCircleCharges(12, 1.0)
		bound := tree.Bound2D{Min: [2]float64{-2, -2}, Max: [2]float64{2, 2}}
		qt := tree.NewQuadTree[*kernel.Charge2D, fmm.NodeData2D](bound, 2, 16)
		for _, c := range charges {
			qt.Insert(c)
		}

		const leafDeg, interiorDeg = 8, 2
		qt.Traverse(tree.PreOrder, func(n tree.NodeInfo2D[*kernel.Charge2D, fmm.NodeData2D]) {
			if len(n.Points) > 0 {
				*n.Data = fmm.NewNodeData2D(leafDeg, leafDeg)
			} else {
				*n.Data = fmm.NewNodeData2D(interiorDeg, interiorDeg)
			}
		})

		cfg, err := fmm.NewConfig()
		if err != nil {
			t.Fatalf("NewConfig: %v", err)
		}
		cfg, err = cfg.WithStrictPrecision(strict)
		if err != nil {
			t.Fatalf("WithStrictPrecision: %v", err)
		}
		solver := fmm.NewSolver2D[*kernel.Charge2D, fmm.NodeData2D](qt, kernel.NewtonOperators2D(), cfg)
		return solver.Solve(interiorDeg)
	}

	if err := build(false); err != nil {
		t.Fatalf("non-strict solve: unexpected error: %v", err)
	}

	err := build(true)
	if err == nil {
		t.Fatal("strict solve: expected a *fmm.PrecisionError, got nil")
	}
	var precErr *fmm.PrecisionError
	if !errors.As(err, &precErr) {
		t.Fatalf("strict solve: expected *fmm.PrecisionError, got %T: %v", err, err)
	}
}
