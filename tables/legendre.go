package tables

import "math"

// Legendre holds the associated Legendre values P_l^m(x) for 0<=m<=l<=Lmax
// at one evaluation point x, using the Condon-Shortley phase convention
// (ported from aran_legendre_associated_evaluate_multiple_internal).
type Legendre struct {
	Lmax int
	p    []float64 // triangular, row offset l*(l+1)/2 + m
}

// NewLegendre computes P_l^m(x) for all 0<=m<=l<=lmax at a single point.
// sqrt1mx2 must equal sqrt(1-x^2); callers that already have sin(theta)
// pass it directly to avoid recomputing it from cos(theta).
func NewLegendre(lmax int, x, sqrt1mx2 float64) *Legendre {
	size := (lmax + 1) * (lmax + 2) / 2
	lg := &Legendre{Lmax: lmax, p: make([]float64, size)}
	lg.set(0, 0, 1)
	if lmax == 0 {
		return lg
	}
	lg.set(1, 0, x)
	lg.set(1, 1, -sqrt1mx2)
	for l := 2; l <= lmax; l++ {
		for m := 0; m <= l-2; m++ {
			v := (float64(2*l-1)*x*lg.at(l-1, m) - float64(l+m-1)*lg.at(l-2, m)) / float64(l-m)
			lg.set(l, m, v)
		}
		lg.set(l, l-1, float64(2*l-1)*x*lg.at(l-1, l-1))
		lg.set(l, l, -float64(2*l-1)*sqrt1mx2*lg.at(l-1, l-1))
	}
	return lg
}

func (lg *Legendre) idx(l, m int) int { return l*(l+1)/2 + m }
func (lg *Legendre) at(l, m int) float64 {
	return lg.p[lg.idx(l, m)]
}
func (lg *Legendre) set(l, m int, v float64) { lg.p[lg.idx(l, m)] = v }

// At returns P_l^m(x) for 0<=m<=l<=Lmax.
func (lg *Legendre) At(l, m int) float64 {
	return lg.at(l, m)
}

// EvalLegendre computes a single P_l^m(x) without retaining the full
// triangular table.
func EvalLegendre(l, m int, x float64) float64 {
	return NewLegendre(l, x, math.Sqrt(1-x*x)).At(l, m)
}
