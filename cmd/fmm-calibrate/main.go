// Command fmm-calibrate is supplemented from aranprofile-main.c (the
// original implementation's standalone profiling driver, dropped by
// the distillation): it times the P2P and M2L operators over a sweep
// of expansion orders, fits a polynomial cost model with
// gonum.org/v1/gonum/mat (the role aranprofile-main.c's fit against
// aranfit.c played), writes the fitted coefficients through
// profiledb.DB.Save, and renders an HTML scatter chart of the measured
// samples plus fitted curve via go-echarts (the teacher's own
// Additionnals/plot_pacs_sweep.go uses exactly this library for
// exactly this kind of sweep plot).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"

	"aranfmm/fmm"
	"aranfmm/kernel"
	"aranfmm/prof"
	"aranfmm/profiledb"
)

func main() {
	minOrder := flag.Int("min-order", 2, "lowest expansion order to sample")
	maxOrder := flag.Int("max-order", 24, "highest expansion order to sample")
	degree := flag.Int("fit-degree", 2, "polynomial degree fitted to the timing samples")
	group := flag.String("group", profiledb.DefaultGroup(), "profile database group to write")
	dbPath := flag.String("db", "fmm-profile.ini", "profile database file to write")
	chartPath := flag.String("chart", "fmm-profile.html", "HTML chart output path")
	reps := flag.Int("reps", 20, "repetitions per sampled order")
	flag.Parse()

	if *minOrder < 1 || *maxOrder < *minOrder {
		fatal(fmt.Errorf("invalid order range [%d,%d]", *minOrder, *maxOrder))
	}

	orders := make([]int, 0, *maxOrder-*minOrder+1)
	for o := *minOrder; o <= *maxOrder; o++ {
		orders = append(orders, o)
	}

	p2pSamples := sampleP2P(orders, *reps)
	m2lSamples := sampleM2L(orders, *reps)

	p2pCoeffs := fitPolynomial(orders, p2pSamples, *degree)
	m2lCoeffs := fitPolynomial(orders, m2lSamples, *degree)

	db := profiledb.New()
	db.Set(*group, "p2p", p2pCoeffs)
	db.Set(*group, "m2l", m2lCoeffs)
	if err := db.Save(*dbPath); err != nil {
		fatal(fmt.Errorf("save profile database: %w", err))
	}
	fmt.Printf("wrote %s (group %q)\n", *dbPath, *group)

	if err := renderChart(*chartPath, orders, p2pSamples, m2lSamples, p2pCoeffs, m2lCoeffs); err != nil {
		fatal(fmt.Errorf("render chart: %w", err))
	}
	fmt.Printf("wrote %s\n", *chartPath)
}

// sampleP2P times one P2P call between the same two fixed particles at
// each order, reading back the wall-clock Track entries. The call does
// not depend on order, so every sample measures the same per-call
// kernel cost.
func sampleP2P(orders []int, reps int) []float64 {
	ops := kernel.NewtonOperators2D()
	a := &kernel.Charge2D{X: 0, Y: 0, Q: 1}
	b := &kernel.Charge2D{X: 1, Y: 0, Q: 1}
	return sampleOperator(orders, reps, "p2p", func(order int) {
		ops.P2P(a, b)
	})
}

func sampleM2L(orders []int, reps int) []float64 {
	ops := kernel.NewtonOperators2D()
	return sampleOperator(orders, reps, "m2l", func(order int) {
		src := fmm.NewNodeData2D(order, order)
		dst := fmm.NewNodeData2D(order, order)
		srcPt := &kernel.Charge2D{X: -1, Y: 0, Q: 1}
		ops.P2M([]*kernel.Charge2D{srcPt}, [2]float64{-3, 0}, &src)
		ops.MultipoleToLocal([2]float64{-3, 0}, &src, [2]float64{3, 0}, &dst)
	})
}

func sampleOperator(orders []int, reps int, label string, call func(order int)) []float64 {
	out := make([]float64, len(orders))
	for i, order := range orders {
		prof.SnapshotAndReset()
		for r := 0; r < reps; r++ {
			start := time.Now()
			call(order)
			prof.Track(start, label)
		}
		mean := prof.MeanByLabel(prof.SnapshotAndReset())
		out[i] = mean[label]
	}
	return out
}

// fitPolynomial least-squares fits f(order) = sum_k a_k*order^k of the
// requested degree via a Vandermonde design matrix and gonum's QR
// solver.
func fitPolynomial(orders []int, ys []float64, degree int) []float64 {
	n := len(orders)
	design := mat.NewDense(n, degree+1, nil)
	for i, order := range orders {
		x := 1.0
		for k := 0; k <= degree; k++ {
			design.Set(i, k, x)
			x *= float64(order)
		}
	}
	target := mat.NewVecDense(n, ys)

	var qr mat.QR
	qr.Factorize(design)
	var coeffs mat.VecDense
	if err := qr.SolveVecTo(&coeffs, false, target); err != nil {
		coeffs = *mat.NewVecDense(degree+1, make([]float64, degree+1))
	}
	out := make([]float64, degree+1)
	for k := range out {
		out[k] = coeffs.AtVec(k)
	}
	return out
}

func evalPolynomial(coeffs []float64, order int) float64 {
	x := 1.0
	var sum float64
	for _, c := range coeffs {
		sum += c * x
		x *= float64(order)
	}
	return sum
}

func renderChart(path string, orders []int, p2p, m2l []float64, p2pCoeffs, m2lCoeffs []float64) error {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "FMM operator cost sweep", Subtitle: "measured P2P/M2L timing vs fitted polynomial"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "order"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "seconds"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	p2pItems := make([]opts.ScatterData, len(orders))
	m2lItems := make([]opts.ScatterData, len(orders))
	p2pFit := make([]opts.ScatterData, len(orders))
	m2lFit := make([]opts.ScatterData, len(orders))
	for i, order := range orders {
		p2pItems[i] = opts.ScatterData{Value: []interface{}{order, p2p[i]}}
		m2lItems[i] = opts.ScatterData{Value: []interface{}{order, m2l[i]}}
		p2pFit[i] = opts.ScatterData{Value: []interface{}{order, evalPolynomial(p2pCoeffs, order)}}
		m2lFit[i] = opts.ScatterData{Value: []interface{}{order, evalPolynomial(m2lCoeffs, order)}}
	}

	sc.AddSeries("P2P measured", p2pItems).
		AddSeries("M2L measured", m2lItems).
		AddSeries("P2P fit", p2pFit).
		AddSeries("M2L fit", m2lFit)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return sc.Render(f)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
