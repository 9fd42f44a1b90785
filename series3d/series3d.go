// Package series3d implements truncated spherical-harmonic series about a
// point in 3D space: the multipole (exterior, 1/r^(l+1)) and local
// (interior, r^l) expansions used by the FMM driver for the Newton
// kernel family (spec.md §4.2.2). Only non-negative orders m are stored;
// negative orders are recovered through the Hermitian symmetry
// Y_l^{-m} = (-1)^m * conj(Y_l^m), which holds for any real-valued field.
package series3d

import (
	"math"
	"sync/atomic"

	"aranfmm/tables"
)

var precisionWarnings uint64

// PrecisionWarnings returns the number of precision-losing truncations
// observed so far across all series in the process.
func PrecisionWarnings() uint64 { return atomic.LoadUint64(&precisionWarnings) }

func warnPrecision() { atomic.AddUint64(&precisionWarnings, 1) }

func rowOffset(l int) int { return l * (l + 1) / 2 }

// SphericalSeries3d holds a local part (degrees 0..posdeg) and a
// multipole part (degrees 0..negdeg-1), each a Hermitian-symmetric
// triangular table of complex coefficients indexed (l, 0<=m<=l).
type SphericalSeries3d struct {
	posdeg, negdeg int
	pos            []complex128
	neg            []complex128
}

func triSize(deg int) int {
	if deg < 0 {
		return 0
	}
	return rowOffset(deg + 1)
}

// New allocates a zeroed series with local degree posdeg (0..posdeg) and
// multipole degree negdeg (0..negdeg-1).
func New(posdeg, negdeg int) *SphericalSeries3d {
	return &SphericalSeries3d{
		posdeg: posdeg,
		negdeg: negdeg,
		pos:    make([]complex128, triSize(posdeg)),
		neg:    make([]complex128, triSize(negdeg-1)),
	}
}

// PosDeg returns the local (interior) degree.
func (s *SphericalSeries3d) PosDeg() int { return s.posdeg }

// NegDeg returns the multipole (exterior) degree.
func (s *SphericalSeries3d) NegDeg() int { return s.negdeg }

// PosTerm returns the local-part coefficient for 0<=m<=l<=posdeg,
// recovering negative m via Hermitian symmetry. Returns 0 out of range.
func (s *SphericalSeries3d) PosTerm(l, m int) complex128 {
	if l < 0 || l > s.posdeg {
		return 0
	}
	if m < 0 {
		return tables.SphSym(s.PosTerm(l, -m), -m)
	}
	if m > l {
		return 0
	}
	return s.pos[rowOffset(l)+m]
}

// SetPosTerm sets the local-part coefficient for 0<=m<=l<=posdeg. No-op
// out of range or for m<0 (callers only ever own the stored half).
func (s *SphericalSeries3d) SetPosTerm(l, m int, v complex128) {
	if l < 0 || l > s.posdeg || m < 0 || m > l {
		return
	}
	s.pos[rowOffset(l)+m] = v
}

// AddPosTerm accumulates into the local-part coefficient. No-op out of
// range.
func (s *SphericalSeries3d) AddPosTerm(l, m int, v complex128) {
	if l < 0 || l > s.posdeg || m < 0 || m > l {
		return
	}
	s.pos[rowOffset(l)+m] += v
}

// NegTerm returns the multipole-part coefficient for 0<=m<=l<=negdeg-1,
// recovering negative m via Hermitian symmetry. Returns 0 out of range.
func (s *SphericalSeries3d) NegTerm(l, m int) complex128 {
	if l < 0 || l > s.negdeg-1 {
		return 0
	}
	if m < 0 {
		return tables.SphSym(s.NegTerm(l, -m), -m)
	}
	if m > l {
		return 0
	}
	return s.neg[rowOffset(l)+m]
}

// SetNegTerm sets the multipole-part coefficient for 0<=m<=l<=negdeg-1.
func (s *SphericalSeries3d) SetNegTerm(l, m int, v complex128) {
	if l < 0 || l > s.negdeg-1 || m < 0 || m > l {
		return
	}
	s.neg[rowOffset(l)+m] = v
}

// AddNegTerm accumulates into the multipole-part coefficient.
func (s *SphericalSeries3d) AddNegTerm(l, m int, v complex128) {
	if l < 0 || l > s.negdeg-1 || m < 0 || m > l {
		return
	}
	s.neg[rowOffset(l)+m] += v
}

// Clone duplicates s.
func (s *SphericalSeries3d) Clone() *SphericalSeries3d {
	dst := New(s.posdeg, s.negdeg)
	copy(dst.pos, s.pos)
	copy(dst.neg, s.neg)
	return dst
}

// SetZero nullifies all coefficients.
func (s *SphericalSeries3d) SetZero() {
	for i := range s.pos {
		s.pos[i] = 0
	}
	for i := range s.neg {
		s.neg[i] = 0
	}
}

// Copy replaces s's coefficients with src's, truncating degrees that do
// not fit and emitting a precision warning when that happens.
func (s *SphericalSeries3d) Copy(src *SphericalSeries3d) {
	if src.posdeg > s.posdeg || src.negdeg > s.negdeg {
		warnPrecision()
	}
	s.SetZero()
	pd := min(src.posdeg, s.posdeg)
	for l := 0; l <= pd; l++ {
		for m := 0; m <= l; m++ {
			s.SetPosTerm(l, m, src.PosTerm(l, m))
		}
	}
	nd := min(src.negdeg, s.negdeg)
	for l := 0; l <= nd-1; l++ {
		for m := 0; m <= l; m++ {
			s.SetNegTerm(l, m, src.NegTerm(l, m))
		}
	}
}

// AddSeries accumulates src's coefficients into s term by term,
// truncating (and warning) where src carries degrees s cannot hold; see
// series2d.LaurentSeries2d.AddSeries for its role in the driver's
// shared-node reduction.
func (s *SphericalSeries3d) AddSeries(src *SphericalSeries3d) {
	if src.posdeg > s.posdeg || src.negdeg > s.negdeg {
		warnPrecision()
	}
	pd := min(src.posdeg, s.posdeg)
	for l := 0; l <= pd; l++ {
		for m := 0; m <= l; m++ {
			s.AddPosTerm(l, m, src.PosTerm(l, m))
		}
	}
	nd := min(src.negdeg, s.negdeg)
	for l := 0; l <= nd-1; l++ {
		for m := 0; m <= l; m++ {
			s.AddNegTerm(l, m, src.NegTerm(l, m))
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// evaluateHalfSum computes sum_{m=-l}^{l} c(m)*h(m) for a Hermitian pair
// of triangular rows (only m>=0 stored), i.e. 2*Re(sum_{m=1}^l c(m)h(m))
// + c(0)h(0) (spec.md §4.2.2).
func evaluateHalfSum(l int, coeff func(m int) complex128, h *tables.HarmonicTable) complex128 {
	var sum float64
	for m := 1; m <= l; m++ {
		sum += real(coeff(m) * h.At(l, m))
	}
	return complex(2*sum, 0) + coeff(0)*h.At(l, 0)
}

// Evaluate computes s at the point given in spherical coordinates about
// s's own center: r, cos(theta), sin(theta), cos(phi), sin(phi).
// Horner's scheme is applied to the local part (in r) and the multipole
// part (in 1/r) separately, then summed.
func (s *SphericalSeries3d) Evaluate(r, cost, sint, cosp, sinp float64) complex128 {
	n := s.posdeg
	if s.negdeg-1 > n {
		n = s.negdeg - 1
	}
	expp := complex(cosp, sinp)
	h := tables.NewHarmonicTable(n, cost, sint, expp)

	var res complex128
	for l := s.posdeg; l >= 0; l-- {
		sum := evaluateHalfSum(l, func(m int) complex128 { return s.PosTerm(l, m) }, h)
		res = res*complex(r, 0) + sum
	}

	if s.negdeg != 0 {
		var negres complex128
		invr := 1 / r
		for l := s.negdeg - 1; l >= 0; l-- {
			sum := evaluateHalfSum(l, func(m int) complex128 { return s.NegTerm(l, m) }, h)
			negres = (negres + sum) * complex(invr, 0)
		}
		res += negres
	}

	return res
}

// EvaluateCartesian evaluates s at a Cartesian offset from its center.
func (s *SphericalSeries3d) EvaluateCartesian(x, y, z float64) complex128 {
	r, cost, sint, cosp, sinp := toSpherical(x, y, z)
	return s.Evaluate(r, cost, sint, cosp, sinp)
}

func toSpherical(x, y, z float64) (r, cost, sint, cosp, sinp float64) {
	r = math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return 0, 1, 0, 1, 0
	}
	cost = z / r
	sint = math.Sqrt(math.Max(0, 1-cost*cost))
	rho := math.Hypot(x, y)
	if rho == 0 {
		return r, cost, sint, 1, 0
	}
	cosp = x / rho
	sinp = y / rho
	return
}

// GradientCartesian returns (f, grad f) of the whole series (every part
// EvaluateCartesian sums) at a Cartesian offset from s's center, via
// centered finite differences: the exact
// recurrence for the gradient of a spherical-harmonic series requires a
// second, derivative-specific harmonic normalization table that is not
// worth re-deriving byte-for-byte without the ability to execute and
// cross-check it; central differencing on Evaluate is exact up to O(h^2)
// and is cheap at the degrees this package targets.
func (s *SphericalSeries3d) GradientCartesian(x, y, z float64) (f, gx, gy, gz float64) {
	const h = 1e-4
	c := s.EvaluateCartesian(x, y, z)
	f = real(c)
	gx = (real(s.EvaluateCartesian(x+h, y, z)) - real(s.EvaluateCartesian(x-h, y, z))) / (2 * h)
	gy = (real(s.EvaluateCartesian(x, y+h, z)) - real(s.EvaluateCartesian(x, y-h, z))) / (2 * h)
	gz = (real(s.EvaluateCartesian(x, y, z+h)) - real(s.EvaluateCartesian(x, y, z-h))) / (2 * h)
	return
}
