// Package series2d implements truncated Laurent/Taylor series about a
// complex center, the 2D analytic expansion used by the FMM driver for
// the logarithmic-kernel family (spec.md §4.2.1).
package series2d

import (
	"sync/atomic"

	"aranfmm/tables"
)

// precisionWarnings counts truncations that drop source coefficients
// beyond a destination series' degree, mirroring the original library's
// g_warning("could loose precision...") calls but as a cheap counter
// instead of a log line (spec.md §7).
var precisionWarnings uint64

// PrecisionWarnings returns the number of precision-losing truncations
// observed so far across all series in the process.
func PrecisionWarnings() uint64 {
	return atomic.LoadUint64(&precisionWarnings)
}

func warnPrecision() {
	atomic.AddUint64(&precisionWarnings, 1)
}

// LaurentSeries2d is a truncated two-sided power series in a complex
// variable: positive-degree terms z^0..z^posdeg (the Taylor/local part)
// and negative-degree terms z^-1..z^-negdeg (the Laurent/multipole
// part), about an implicit center supplied by the caller at Translate
// time.
type LaurentSeries2d struct {
	posdeg, negdeg int
	// terms[posdeg-i] holds the coefficient of z^i, for -negdeg<=i<=posdeg.
	terms []complex128
}

// New allocates a zeroed series with the given positive and negative
// degrees.
func New(posdeg, negdeg int) *LaurentSeries2d {
	return &LaurentSeries2d{
		posdeg: posdeg,
		negdeg: negdeg,
		terms:  make([]complex128, posdeg+negdeg+1),
	}
}

// PosDeg returns the series' positive (Taylor) degree.
func (s *LaurentSeries2d) PosDeg() int { return s.posdeg }

// NegDeg returns the series' negative (Laurent) degree.
func (s *LaurentSeries2d) NegDeg() int { return s.negdeg }

func (s *LaurentSeries2d) index(i int) (int, bool) {
	if i < -s.negdeg || i > s.posdeg {
		return 0, false
	}
	return s.posdeg - i, true
}

// Term returns the coefficient of z^i, or 0 if i is out of range.
func (s *LaurentSeries2d) Term(i int) complex128 {
	idx, ok := s.index(i)
	if !ok {
		return 0
	}
	return s.terms[idx]
}

// SetTerm sets the coefficient of z^i. No-op if i is out of range.
func (s *LaurentSeries2d) SetTerm(i int, v complex128) {
	idx, ok := s.index(i)
	if !ok {
		return
	}
	s.terms[idx] = v
}

// AddTerm accumulates v into the coefficient of z^i. No-op if i is out
// of range.
func (s *LaurentSeries2d) AddTerm(i int, v complex128) {
	idx, ok := s.index(i)
	if !ok {
		return
	}
	s.terms[idx] += v
}

// Clone duplicates s.
func (s *LaurentSeries2d) Clone() *LaurentSeries2d {
	dst := New(s.posdeg, s.negdeg)
	dst.Copy(s)
	return dst
}

// SetZero nullifies all coefficients.
func (s *LaurentSeries2d) SetZero() {
	for i := range s.terms {
		s.terms[i] = 0
	}
}

// Copy replaces s's coefficients with src's, truncating or
// zero-extending degrees that do not match. Emits a precision warning
// when src carries degrees s cannot hold.
func (s *LaurentSeries2d) Copy(src *LaurentSeries2d) {
	if src.posdeg > s.posdeg || src.negdeg > s.negdeg {
		warnPrecision()
	}
	s.SetZero()
	posdeg := min(src.posdeg, s.posdeg)
	negdeg := min(src.negdeg, s.negdeg)
	for i := -negdeg; i <= posdeg; i++ {
		s.SetTerm(i, src.Term(i))
	}
}

// AddSeries accumulates src's coefficients into s term by term,
// truncating (and warning) where src carries degrees s cannot hold. Used
// by the FMM driver's shared-node reduction (spec.md §4.5/§4.3 S3/S6),
// where contributions from several sources must be summed into one
// node's accumulator.
func (s *LaurentSeries2d) AddSeries(src *LaurentSeries2d) {
	if src.posdeg > s.posdeg || src.negdeg > s.negdeg {
		warnPrecision()
	}
	posdeg := min(src.posdeg, s.posdeg)
	negdeg := min(src.negdeg, s.negdeg)
	for i := -negdeg; i <= posdeg; i++ {
		s.AddTerm(i, src.Term(i))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Evaluate computes s(z) via Horner's scheme applied separately to the
// positive-degree part (in z) and the negative-degree part (in 1/z),
// then summed.
func (s *LaurentSeries2d) Evaluate(z complex128) complex128 {
	pos := s.Term(s.posdeg)
	for i := s.posdeg - 1; i >= 0; i-- {
		pos = pos*z + s.Term(i)
	}

	var neg complex128
	if s.negdeg != 0 {
		invz := 1 / z
		neg = s.Term(-s.negdeg)
		for i := s.negdeg - 1; i > 0; i-- {
			neg = neg*invz + s.Term(-i)
		}
		neg *= invz
	}

	return pos + neg
}

// taylorTranslate accumulates the positive-degree (Taylor) part of the
// translation of src by zdMzs into dst's positive-degree part:
//
//	B_i += sum_{j>=i} C(j,i) * A_j * delta^(j-i)
func taylorTranslate(src, dst *LaurentSeries2d, zdMzs complex128) {
	if src.posdeg > dst.posdeg {
		warnPrecision()
	}
	for i := dst.posdeg; i >= 0; i-- {
		var sum complex128
		for j := src.posdeg; j >= i; j-- {
			sum = sum*zdMzs + complex(tables.C(j, i), 0)*src.Term(j)
		}
		dst.AddTerm(i, sum)
	}
}

// Translate accumulates the translation of src (centered at zsrc) by
// delta = zdst-zsrc into dst (centered at zdst): same-type translation,
// Taylor-to-Taylor and Laurent-to-Laurent.
func Translate(src *LaurentSeries2d, zsrc complex128, dst *LaurentSeries2d, zdst complex128) {
	zdMzs := zdst - zsrc

	taylorTranslate(src, dst, zdMzs)

	if src.negdeg <= 0 {
		return
	}
	if src.negdeg > dst.negdeg {
		warnPrecision()
	}

	zsMzd := -zdMzs
	for i := 1; i <= dst.negdeg; i++ {
		var sum complex128
		upper := i
		if src.negdeg < upper {
			upper = src.negdeg
		}
		for j := 1; j < upper; j++ {
			sum = (sum + complex(tables.C(i-1, j-1), 0)*src.Term(-j)) * zsMzd
		}
		dst.AddTerm(-i, sum+src.Term(-upper))
	}
}

// MultipoleToLocal converts the negative-degree (multipole) part of src
// (centered at zsrc) into the positive-degree (local) part of dst
// (centered at zdst), accumulating the result. This is the 2D "M2L"
// operator: it also forwards any positive-degree part of src through a
// plain Translate, so a src carrying both parts behaves consistently.
// Uses the kernel identity
//
//	1/(z-zsrc) = sum_{i>=0} (-1)^i/(zdst-zsrc)^(i+1) * (z-zdst)^i
//
// extended to higher Laurent terms via binomial folding:
//
//	b_i += a_{-k} * C(i+k-1,k-1) * (-1)^i / (zdst-zsrc)^(k+i)
//
// summed over every source pole order k = 1..negdeg(src).
func MultipoleToLocal(src *LaurentSeries2d, zsrc complex128, dst *LaurentSeries2d, zdst complex128) {
	zdMzs := zdst - zsrc

	taylorTranslate(src, dst, zdMzs)

	if src.negdeg <= 0 {
		return
	}
	if src.negdeg > dst.posdeg {
		warnPrecision()
	}

	invZdMzs := 1 / zdMzs
	powI := complex(1, 0) // (-invZdMzs)^i
	for i := 0; i <= dst.posdeg; i++ {
		var sum complex128
		powK := invZdMzs // invZdMzs^k
		for k := 1; k <= src.negdeg; k++ {
			sum += complex(tables.C(i+k-1, k-1), 0) * src.Term(-k) * powK
			powK *= invZdMzs
		}
		dst.AddTerm(i, sum*powI)
		powI *= -invZdMzs
	}
}
