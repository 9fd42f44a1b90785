package tables

import "math"

// harmonicNorm is the normalization table used when *evaluating* Y_l^m,
// distinct from Alpha (used in the translation formulas). Ported from
// aran_spherical_harmonic's generator:
//
//	norm(l,0) = sqrt((2l+1)/4*pi)
//	norm(l,m) = norm(l,m-1) / sqrt((l-m+1)*(l+m))
var harmonicNorm = NewTriBuffer(harmonicNormGenerator, 8)

func harmonicNormGenerator(l, m int, buf *TriBuffer) float64 {
	if m == 0 {
		return math.Sqrt(float64(2*l+1) / (4 * math.Pi))
	}
	return buf.GetUnsafe(l, m-1) / math.Sqrt(float64((l-m+1)*(l+m)))
}

// HarmonicNorm returns the Y_l^m evaluation normalization constant.
func HarmonicNorm(l, m int) float64 {
	return harmonicNorm.Get(l, m)
}

// SphSym applies the Hermitian symmetry Y_l^{-m} = (-1)^m * conj(Y_l^m)
// (and, by extension, any coefficient array respecting that symmetry) —
// the "_sph_sym" utility of spec.md §4.2.2.
func SphSym(v complex128, m int) complex128 {
	v = complex(real(v), -imag(v))
	if m%2 != 0 {
		v = -v
	}
	return v
}

// HarmonicTable holds Y_l^m(theta,phi) for 0<=m<=l<=Lmax at one point,
// i.e. the non-negative-order half of the full spherical harmonic; the
// negative-order half is recovered on demand via SphSym.
type HarmonicTable struct {
	Lmax int
	leg  *Legendre
	expp complex128
}

// NewHarmonicTable evaluates Y_l^m(theta,phi) for 0<=m<=l<=lmax given
// cos(theta), sin(theta) and exp(i*phi) (matching
// aran_spherical_harmonic_evaluate_multiple_internal's signature).
func NewHarmonicTable(lmax int, cost, sint float64, expp complex128) *HarmonicTable {
	return &HarmonicTable{Lmax: lmax, leg: NewLegendre(lmax, cost, math.Abs(sint)), expp: expp}
}

// At returns Y_l^m(theta,phi) for 0<=m<=l<=Lmax. Negative m is obtained
// by the caller via SphSym.
func (h *HarmonicTable) At(l, m int) complex128 {
	p := h.leg.At(l, m)
	norm := HarmonicNorm(l, m)
	phase := cpow(h.expp, m)
	return complex(p*norm, 0) * phase
}

// cpow raises z to a non-negative integer power by repeated squaring.
func cpow(z complex128, n int) complex128 {
	result := complex(1, 0)
	base := z
	for n > 0 {
		if n&1 == 1 {
			result *= base
		}
		base *= base
		n >>= 1
	}
	return result
}

// EvaluateHarmonic evaluates Y_l^m(theta,phi) for any integer m (negative
// included) at a single point, without retaining a table.
func EvaluateHarmonic(l, m int, theta, phi float64) complex128 {
	mm := m
	neg := false
	if mm < 0 {
		mm = -mm
		neg = true
	}
	expp := complex(math.Cos(phi), math.Sin(phi))
	ht := NewHarmonicTable(l, math.Cos(theta), math.Sin(theta), expp)
	v := ht.At(l, mm)
	if neg {
		v = SphSym(v, mm)
	}
	return v
}
