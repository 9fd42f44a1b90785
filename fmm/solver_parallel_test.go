package fmm_test

import (
	"fmt"
	"math/cmplx"
	"sync"
	"testing"

	"aranfmm/fmm"
	"aranfmm/kernel"
	"aranfmm/parallel"
	"aranfmm/tree"
)

func cloneCharges2D(in []*kernel.Charge2D) []*kernel.Charge2D {
	out := make([]*kernel.Charge2D, len(in))
	for i, c := range in {
		out[i] = &kernel.Charge2D{X: c.X, Y: c.Y, Q: c.Q}
	}
	return out
}

// TestSolver2DParallelConsistencyAcrossRanks is the "parallel
// consistency" seed scenario (spec.md §8 I7/E6): the same twelve-charge
// circle, solved once per rank count (1, 2, 4) with the particle set
// partitioned round-robin across rank-local Solver2D instances
// exchanging through parallel.LocalCommunicator, must reproduce the
// direct O(n^2) sum within a tight per-particle relative tolerance
// regardless of how many ranks did the work.
func TestSolver2DParallelConsistencyAcrossRanks(t *testing.T) {
	base := buildCircleCharges(12, 1.0)
	want := directSum2D(base)

	const posdeg, negdeg = 12, 12
	bound := tree.Bound2D{Min: [2]float64{-2, -2}, Max: [2]float64{2, 2}}

	for _, ranks := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("ranks=%d", ranks), func(t *testing.T) {
			comms := parallel.NewLocalCommunicatorGroup(ranks)
			vt := fmm.VTable2D(posdeg, negdeg)

			perRank := make([][]*kernel.Charge2D, ranks)
			solvers := make([]*fmm.Solver2D[*kernel.Charge2D, fmm.NodeData2D], ranks)

			for r := 0; r < ranks; r++ {
				charges := cloneCharges2D(base)
				perRank[r] = charges

				qt := tree.NewQuadTree[*kernel.Charge2D, fmm.NodeData2D](bound, 2, 16)
				for _, c := range charges {
					qt.Insert(c)
				}
				qt.Traverse(tree.PreOrder, func(n tree.NodeInfo2D[*kernel.Charge2D, fmm.NodeData2D]) {
					*n.Data = fmm.NewNodeData2D(posdeg, negdeg)
				})

				cfg, err := fmm.NewConfig()
				if err != nil {
					t.Fatalf("NewConfig: %v", err)
				}
				solver := fmm.NewSolver2D[*kernel.Charge2D, fmm.NodeData2D](qt, kernel.NewtonOperators2D(), cfg)
				solver.Parallel = &fmm.ParallelConfig2D[fmm.NodeData2D]{Comm: comms[r], VTable: vt}

				// owner is the SAME global round-robin assignment on every
				// rank's call: charge i belongs to rank i%ranks. Each rank
				// builds its own tree from a clone, so the owner closure maps
				// this rank's clone pointers back to each charge's index in
				// base, giving every rank the same index-based assignment.
				idxOf := make(map[*kernel.Charge2D]int, len(charges))
				for i, c := range charges {
					idxOf[c] = i
				}
				owner := func(c *kernel.Charge2D) int { return idxOf[c] % ranks }
				solver.Partition(r, owner)

				solvers[r] = solver
			}

			errs := make([]error, ranks)
			var wg sync.WaitGroup
			for r := 0; r < ranks; r++ {
				wg.Add(1)
				go func(r int) {
					defer wg.Done()
					errs[r] = solvers[r].Solve(posdeg)
				}(r)
			}
			wg.Wait()
			for r, err := range errs {
				if err != nil {
					t.Fatalf("rank %d Solve: %v", r, err)
				}
			}

			for i := range base {
				owner := i % ranks
				got := perRank[owner][i].Field
				d := cmplx.Abs(got - want[i])
				rel := d
				if m := cmplx.Abs(want[i]); m > 1e-12 {
					rel = d / m
				}
				if rel > 1e-9 {
					t.Errorf("charge %d (owned by rank %d): field %v, want %v (rel diff %g)", i, owner, got, want[i], rel)
				}
			}
		})
	}
}

// TestSolver2DForwardAndBackwardExchangeReduceAcrossRanks exercises S3
// and S6 directly (spec.md §4.5): every rank posts a distinct value
// into the same shared node-data slot family, and both exchanges must
// leave every rank holding the sum across all ranks.
func TestSolver2DForwardAndBackwardExchangeReduceAcrossRanks(t *testing.T) {
	const ranks = 3
	comms := parallel.NewLocalCommunicatorGroup(ranks)
	vt := fmm.VTable2D(4, 4)

	data := make([]fmm.NodeData2D, ranks)
	solvers := make([]*fmm.Solver2D[*kernel.Charge2D, fmm.NodeData2D], ranks)
	for r := 0; r < ranks; r++ {
		data[r] = fmm.NewNodeData2D(4, 4)
		data[r].Multipole.SetTerm(-1, complex(float64(r+1), 0))
		data[r].Local.SetTerm(0, complex(float64(r+1)*2, 0))
		solvers[r] = &fmm.Solver2D[*kernel.Charge2D, fmm.NodeData2D]{
			Parallel: &fmm.ParallelConfig2D[fmm.NodeData2D]{Comm: comms[r], VTable: vt},
		}
	}

	var wg sync.WaitGroup
	for r := 0; r < ranks; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			solvers[r].ForwardExchange([]*fmm.NodeData2D{&data[r]})
		}(r)
	}
	wg.Wait()

	var wantMultipole complex128
	for r := 0; r < ranks; r++ {
		wantMultipole += complex(float64(r+1), 0)
	}
	for r := 0; r < ranks; r++ {
		if got := data[r].Multipole.Term(-1); cmplx.Abs(got-wantMultipole) > 1e-12 {
			t.Errorf("rank %d post-forward multipole term = %v, want %v", r, got, wantMultipole)
		}
	}

	var wg2 sync.WaitGroup
	for r := 0; r < ranks; r++ {
		wg2.Add(1)
		go func(r int) {
			defer wg2.Done()
			solvers[r].BackwardExchange([]*fmm.NodeData2D{&data[r]})
		}(r)
	}
	wg2.Wait()

	var wantLocal complex128
	for r := 0; r < ranks; r++ {
		wantLocal += complex(float64(r+1)*2, 0)
	}
	for r := 0; r < ranks; r++ {
		if got := data[r].Local.Term(0); cmplx.Abs(got-wantLocal) > 1e-12 {
			t.Errorf("rank %d post-backward local term = %v, want %v", r, got, wantLocal)
		}
	}
}
