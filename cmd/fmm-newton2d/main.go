// Command fmm-newton2d is an illustrative front-end over the 2D Newton
// kernel (spec.md §6): it builds np particles in the requested fill
// pattern, solves with the FMM driver at order pr and leaf capacity s,
// prints the worst relative error against a brute-force direct sum, and
// exits with status 1 when that error exceeds err.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"aranfmm/fmm"
	"aranfmm/kernel"
	"aranfmm/measureutil"
	"aranfmm/tree"
)

func main() {
	np := flag.Int("np", 500, "number of particles")
	order := flag.Int("pr", 12, "expansion order (truncation degree)")
	leafCap := flag.Int("s", 8, "tree leaf capacity")
	tol := flag.Float64("err", 1e-3, "relative error threshold to report as a failure")
	dist := flag.String("dist", "circle", "particle fill pattern: circle, uniform, cluster")
	flag.String("translation", "normal", "ignored in 2D (no translation variant); kept for CLI parity with fmm-newton3d")
	flag.Parse()

	charges := buildDistribution(*dist, *np)

	bound := tree.Bound2D{Min: [2]float64{-12, -12}, Max: [2]float64{12, 12}}
	qt := tree.NewQuadTree[*kernel.Charge2D, fmm.NodeData2D](bound, *leafCap, 40)
	for _, c := range charges {
		qt.Insert(c)
	}
	qt.Traverse(tree.PreOrder, func(n tree.NodeInfo2D[*kernel.Charge2D, fmm.NodeData2D]) {
		*n.Data = fmm.NewNodeData2D(*order, *order)
	})

	cfg, err := fmm.NewConfig()
	if err != nil {
		fatal(err)
	}
	if cfg, err = cfg.WithLeafCapacity(*leafCap); err != nil {
		fatal(err)
	}
	solver := fmm.NewSolver2D[*kernel.Charge2D, fmm.NodeData2D](qt, kernel.NewtonOperators2D(), cfg)
	if err := solver.Solve(*order); err != nil {
		fatal(err)
	}

	worst := 0.0
	sampleExact := directSample2D(charges)
	for i, c := range charges {
		if i >= len(sampleExact) {
			break
		}
		want := sampleExact[i]
		got := c.Field
		denom := math.Max(1e-12, cmplxAbs(want))
		relErr := cmplxAbs(got-want) / denom
		if relErr > worst {
			worst = relErr
		}
	}

	fmt.Printf("particles=%d order=%d leaf_capacity=%d dist=%s\n", *np, *order, *leafCap, *dist)
	fmt.Printf("sampled worst-case relative error: %.3e (threshold %.3e)\n", worst, *tol)
	for name, count := range measureutil.Snapshot() {
		fmt.Printf("  %-6s %d\n", name, count)
	}
	if worst > *tol {
		fmt.Fprintf(os.Stderr, "error threshold exceeded\n")
		os.Exit(1)
	}
}

func buildDistribution(name string, n int) []*kernel.Charge2D {
	out := make([]*kernel.Charge2D, n)
	rng := rand.New(rand.NewSource(1))
	switch name {
	case "uniform":
		for i := range out {
			out[i] = &kernel.Charge2D{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10, Q: 1}
		}
	case "cluster":
		centers := [][2]float64{{-6, -6}, {6, 6}, {6, -6}}
		for i := range out {
			c := centers[i%len(centers)]
			out[i] = &kernel.Charge2D{X: c[0] + rng.NormFloat64()*0.3, Y: c[1] + rng.NormFloat64()*0.3, Q: 1}
		}
	default: // circle
		for i := range out {
			theta := 2 * math.Pi * float64(i) / float64(n)
			out[i] = &kernel.Charge2D{X: 8 * math.Cos(theta), Y: 8 * math.Sin(theta), Q: 1}
		}
	}
	return out
}

// directSample2D computes the exact field for a bounded prefix of the
// particle set (brute-force O(N^2) is too slow to run over all of np
// for large sweeps; this is illustrative error reporting, not a
// correctness proof).
func directSample2D(charges []*kernel.Charge2D) []complex128 {
	limit := len(charges)
	if limit > 200 {
		limit = 200
	}
	out := make([]complex128, limit)
	for i := 0; i < limit; i++ {
		var sum complex128
		for j, src := range charges {
			if i == j {
				continue
			}
			d := complex(charges[i].X-src.X, charges[i].Y-src.Y)
			sum += complex(src.Q, 0) / d
		}
		out[i] = sum
	}
	return out
}

func cmplxAbs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
