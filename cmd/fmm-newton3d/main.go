// Command fmm-newton3d is fmm-newton2d's 3D counterpart (spec.md §6):
// same flag surface, plus -translation selecting among the three
// mathematically-equivalent 3D translation variants.
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
	"aranfmm/series3d"
	"aranfmm/tree"
)

func main() {
	np := flag.Int("np", 500, "number of particles")
	order := flag.Int("pr", 10, "expansion order (truncation degree)")
	leafCap := flag.Int("s", 8, "tree leaf capacity")
	tol := flag.Float64("err", 1e-3, "relative error threshold to report as a failure")
	dist := flag.String("dist", "sphere", "particle fill pattern: sphere, uniform, cluster")
	translation := flag.String("translation", "normal", "translation variant: normal, kkylin, rotate")
	flag.Parse()

	variant, err := parseVariant(*translation)
	if err != nil {
		fatal(err)
	}

	charges := buildDistribution3D(*dist, *np)

	bound := tree.Bound3D{Min: [3]float64{-12, -12, -12}, Max: [3]float64{12, 12, 12}}
	ot := tree.NewOctTree[*kernel.Charge3D, fmm.NodeData3D](bound, *leafCap, 40)
	for _, c := range charges {
		ot.Insert(c)
	}
	ot.Traverse(tree.PreOrder, func(n tree.NodeInfo3D[*kernel.Charge3D, fmm.NodeData3D]) {
		*n.Data = fmm.NewNodeData3D(*order, *order)
	})

	cfg, err := fmm.NewConfig()
	if err != nil {
		fatal(err)
	}
	if cfg, err = cfg.WithLeafCapacity(*leafCap); err != nil {
		fatal(err)
	}
	solver := fmm.NewSolver3D[*kernel.Charge3D, fmm.NodeData3D](ot, kernel.NewtonOperators3D(variant), cfg)
	if err := solver.Solve(*order); err != nil {
		fatal(err)
	}

	worst := 0.0
	want := directSample3D(charges)
	for i, c := range charges {
		if i >= len(want) {
			break
		}
		denom := math.Max(1e-12, want[i])
		relErr := math.Abs(c.Field-want[i]) / denom
		if relErr > worst {
			worst = relErr
		}
	}

	fmt.Printf("particles=%d order=%d leaf_capacity=%d dist=%s translation=%s\n", *np, *order, *leafCap, *dist, *translation)
	fmt.Printf("sampled worst-case relative error: %.3e (threshold %.3e)\n", worst, *tol)
	for name, count := range measureutil.Snapshot() {
		fmt.Printf("  %-6s %d\n", name, count)
	}
	if worst > *tol {
		fmt.Fprintf(os.Stderr, "error threshold exceeded\n")
		os.Exit(1)
	}
}

func parseVariant(name string) (series3d.TranslationVariant, error) {
	switch name {
	case "normal", "direct", "":
		return series3d.Direct, nil
	case "kkylin":
		return series3d.Kkylin, nil
	case "rotate":
		return series3d.Rotate, nil
	default:
		return 0, fmt.Errorf("unknown translation variant %q", name)
	}
}

func buildDistribution3D(name string, n int) []*kernel.Charge3D {
	out := make([]*kernel.Charge3D, n)
	rng := rand.New(rand.NewSource(1))
	switch name {
	case "uniform":
		for i := range out {
			out[i] = &kernel.Charge3D{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10, Z: rng.Float64()*20 - 10, Q: 1}
		}
	case "cluster":
		centers := [][3]float64{{-6, -6, -6}, {6, 6, 6}, {6, -6, 6}}
		for i := range out {
			c := centers[i%len(centers)]
			out[i] = &kernel.Charge3D{
				X: c[0] + rng.NormFloat64()*0.3,
				Y: c[1] + rng.NormFloat64()*0.3,
				Z: c[2] + rng.NormFloat64()*0.3,
				Q: 1,
			}
		}
	default: // sphere
		for i := range out {
			theta := math.Pi * (float64(i) + 0.5) / float64(n)
			phi := 2.399963 * float64(i)
			out[i] = &kernel.Charge3D{
				X: 8 * math.Sin(theta) * math.Cos(phi),
				Y: 8 * math.Sin(theta) * math.Sin(phi),
				Z: 8 * math.Cos(theta),
				Q: 1,
			}
		}
	}
	return out
}

func directSample3D(charges []*kernel.Charge3D) []float64 {
	limit := len(charges)
	if limit > 200 {
		limit = 200
	}
	out := make([]float64, limit)
	for i := 0; i < limit; i++ {
		var sum float64
		for j, src := range charges {
			if i == j {
				continue
			}
			dx, dy, dz := src.X-charges[i].X, src.Y-charges[i].Y, src.Z-charges[i].Z
			sum += src.Q / math.Sqrt(dx*dx+dy*dy+dz*dz)
		}
		out[i] = sum
	}
	return out
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
